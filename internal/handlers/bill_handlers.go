package handlers

import (
	"net/http"
	"strings"

	"billledger/internal/common"
	"billledger/internal/models"
	"billledger/internal/services"

	"github.com/labstack/echo/v4"
)

// BillHandlers handles HTTP requests for bills and their payments
type BillHandlers struct {
	billService    services.BillServiceInterface
	paymentService services.PaymentServiceInterface
}

// NewBillHandlers creates a new bill handlers instance
func NewBillHandlers(billService services.BillServiceInterface, paymentService services.PaymentServiceInterface) *BillHandlers {
	return &BillHandlers{
		billService:    billService,
		paymentService: paymentService,
	}
}

// CreateBill handles POST /bills
func (h *BillHandlers) CreateBill(c echo.Context) error {
	var req models.CreateBillRequest
	if err := bindBody(c, &req); err != nil {
		return common.SendError(c, err)
	}

	bill, err := h.billService.CreateBill(c.Request().Context(), &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, bill)
}

// GetBill handles GET /bills/:id
func (h *BillHandlers) GetBill(c echo.Context) error {
	billID, err := pathUUID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	bill, err := h.billService.GetBill(c.Request().Context(), billID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, bill)
}

// ListBills handles GET /bills?status=&bill_type=&counterparty=&from=&to=&limit=&offset=
func (h *BillHandlers) ListBills(c echo.Context) error {
	var (
		filter models.BillFilter
		err    error
	)
	if s := strings.TrimSpace(c.QueryParam("status")); s != "" {
		status := models.BillStatus(s)
		filter.Status = &status
	}
	if t := strings.TrimSpace(c.QueryParam("bill_type")); t != "" {
		billType := models.BillType(t)
		filter.BillType = &billType
	}
	filter.Counterparty = strings.TrimSpace(c.QueryParam("counterparty"))
	if filter.FromDate, err = queryDate(c, "from"); err != nil {
		return common.SendError(c, err)
	}
	if filter.ToDate, err = queryDate(c, "to"); err != nil {
		return common.SendError(c, err)
	}
	if filter.Limit, err = queryInt(c, "limit", 0); err != nil {
		return common.SendError(c, err)
	}
	if filter.Offset, err = queryInt(c, "offset", 0); err != nil {
		return common.SendError(c, err)
	}

	bills, err := h.billService.ListBills(c.Request().Context(), filter)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"bills":  bills,
		"count":  len(bills),
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// UpdateBill handles PATCH /bills/:id
func (h *BillHandlers) UpdateBill(c echo.Context) error {
	billID, err := pathUUID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	var req models.UpdateBillRequest
	if err := bindBody(c, &req); err != nil {
		return common.SendError(c, err)
	}

	bill, err := h.billService.UpdateBill(c.Request().Context(), billID, &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, bill)
}

// DeleteBill handles DELETE /bills/:id
func (h *BillHandlers) DeleteBill(c echo.Context) error {
	billID, err := pathUUID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	if err := h.billService.DeleteBill(c.Request().Context(), billID); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DuplicateBill handles POST /bills/:id/duplicate
func (h *BillHandlers) DuplicateBill(c echo.Context) error {
	billID, err := pathUUID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	bill, err := h.billService.DuplicateBill(c.Request().Context(), billID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, bill)
}

// AddPayment handles POST /bills/:id/payments. The bill id in the path wins
// over any bill_id in the body.
func (h *BillHandlers) AddPayment(c echo.Context) error {
	billID, err := pathUUID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	var req models.AddPaymentRequest
	if err := bindBody(c, &req); err != nil {
		return common.SendError(c, err)
	}
	req.BillID = billID

	bill, err := h.paymentService.AddPayment(c.Request().Context(), &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, bill)
}

// ListPayments handles GET /bills/:id/payments
func (h *BillHandlers) ListPayments(c echo.Context) error {
	billID, err := pathUUID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	payments, err := h.paymentService.ListPayments(c.Request().Context(), billID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"bill_id":  billID,
		"payments": payments,
	})
}
