package handlers

import (
	"net/http"

	"billledger/internal/common"
	"billledger/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// LifecycleHandlers exposes bill status transitions
type LifecycleHandlers struct {
	lifecycleService services.LifecycleServiceInterface
}

func NewLifecycleHandlers(lifecycleService services.LifecycleServiceInterface) *LifecycleHandlers {
	return &LifecycleHandlers{lifecycleService: lifecycleService}
}

type approveRequest struct {
	ApproverID string `json:"approver_id"`
}

type bulkRequest struct {
	BillIDs    []uuid.UUID `json:"bill_ids"`
	ApproverID string      `json:"approver_id,omitempty"`
}

// Submit handles POST /bills/:id/submit
func (h *LifecycleHandlers) Submit(c echo.Context) error {
	billID, err := pathUUID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	bill, err := h.lifecycleService.Submit(c.Request().Context(), billID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, bill)
}

// Approve handles POST /bills/:id/approve
func (h *LifecycleHandlers) Approve(c echo.Context) error {
	billID, err := pathUUID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	var req approveRequest
	if err := bindBody(c, &req); err != nil {
		return common.SendError(c, err)
	}
	bill, err := h.lifecycleService.Approve(c.Request().Context(), billID, req.ApproverID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, bill)
}

// Cancel handles POST /bills/:id/cancel
func (h *LifecycleHandlers) Cancel(c echo.Context) error {
	billID, err := pathUUID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	bill, err := h.lifecycleService.Cancel(c.Request().Context(), billID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, bill)
}

// BulkApprove handles POST /bills/bulk/approve
func (h *LifecycleHandlers) BulkApprove(c echo.Context) error {
	var req bulkRequest
	if err := bindBody(c, &req); err != nil {
		return common.SendError(c, err)
	}
	result, err := h.lifecycleService.BulkApprove(c.Request().Context(), req.BillIDs, req.ApproverID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// BulkCancel handles POST /bills/bulk/cancel
func (h *LifecycleHandlers) BulkCancel(c echo.Context) error {
	var req bulkRequest
	if err := bindBody(c, &req); err != nil {
		return common.SendError(c, err)
	}
	result, err := h.lifecycleService.BulkCancel(c.Request().Context(), req.BillIDs)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
