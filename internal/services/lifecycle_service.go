package services

import (
	"context"
	"strings"

	"billledger/internal/caching"
	"billledger/internal/common"
	"billledger/internal/lifecycle"
	"billledger/internal/logger"
	"billledger/internal/metrics"
	"billledger/internal/models"
	"billledger/internal/repositories"

	"github.com/google/uuid"
)

// maxBulkItems caps a single bulk request
const maxBulkItems = 500

// LifecycleServiceInterface moves bills through submit, approve and cancel
type LifecycleServiceInterface interface {
	Submit(ctx context.Context, billID uuid.UUID) (*models.BillView, error)
	Approve(ctx context.Context, billID uuid.UUID, approverID string) (*models.BillView, error)
	Cancel(ctx context.Context, billID uuid.UUID) (*models.BillView, error)
	BulkApprove(ctx context.Context, billIDs []uuid.UUID, approverID string) (*models.BulkOperationResult, error)
	BulkCancel(ctx context.Context, billIDs []uuid.UUID) (*models.BulkOperationResult, error)
}

type lifecycleService struct {
	ledgerDeps
	repo repositories.BillRepository
}

// NewLifecycleService creates a new lifecycle service
func NewLifecycleService(repo repositories.BillRepository, cache caching.BillCache, m *metrics.Metrics) LifecycleServiceInterface {
	return &lifecycleService{
		ledgerDeps: newLedgerDeps(cache, m, logger.WithComponent("lifecycle")),
		repo:       repo,
	}
}

func (s *lifecycleService) Submit(ctx context.Context, billID uuid.UUID) (*models.BillView, error) {
	return s.transition(ctx, "submit", billID, lifecycle.EventSubmit, nil)
}

func (s *lifecycleService) Approve(ctx context.Context, billID uuid.UUID, approverID string) (*models.BillView, error) {
	approver := strings.TrimSpace(approverID)
	if approver == "" {
		return nil, s.reject("approve", billID, common.FieldValidation("approver_id", "approver_id is required"))
	}
	return s.transition(ctx, "approve", billID, lifecycle.EventApprove, func(bill *models.Bill) {
		at := s.now()
		bill.ApprovedBy = &approver
		bill.ApprovedAt = &at
	})
}

func (s *lifecycleService) Cancel(ctx context.Context, billID uuid.UUID) (*models.BillView, error) {
	return s.transition(ctx, "cancel", billID, lifecycle.EventCancel, nil)
}

// transition applies ev under the bill's row lock; mutate runs only once the
// transition has been accepted.
func (s *lifecycleService) transition(ctx context.Context, operation string, billID uuid.UUID, ev lifecycle.Event, mutate func(*models.Bill)) (*models.BillView, error) {
	var (
		updated *models.Bill
		from    models.BillStatus
	)
	err := s.repo.InTx(ctx, func(repo repositories.BillRepository) error {
		bill, err := repo.GetForUpdate(ctx, billID)
		if err != nil {
			return err
		}
		next, err := lifecycle.Transition(bill.Status, ev)
		if err != nil {
			return err
		}
		from = bill.Status
		bill.Status = next
		if mutate != nil {
			mutate(bill)
		}
		bill.UpdatedAt = s.now()
		if err := repo.Update(ctx, bill); err != nil {
			return err
		}
		updated = bill
		return nil
	})
	if err != nil {
		return nil, s.reject(operation, billID, err)
	}

	s.invalidate(ctx, billID)
	s.metrics.Transitions.WithLabelValues(string(updated.Status)).Inc()
	s.log.Info().Str("bill_id", billID.String()).Str("bill_number", updated.BillNumber).
		Str("from", string(from)).Str("to", string(updated.Status)).Msg("Bill status changed")
	return models.NewBillView(updated, s.now()), nil
}

func (s *lifecycleService) BulkApprove(ctx context.Context, billIDs []uuid.UUID, approverID string) (*models.BulkOperationResult, error) {
	if strings.TrimSpace(approverID) == "" {
		return nil, common.FieldValidation("approver_id", "approver_id is required")
	}
	return s.bulk(ctx, "approve", billIDs, func(id uuid.UUID) error {
		_, err := s.Approve(ctx, id, approverID)
		return err
	})
}

func (s *lifecycleService) BulkCancel(ctx context.Context, billIDs []uuid.UUID) (*models.BulkOperationResult, error) {
	return s.bulk(ctx, "cancel", billIDs, func(id uuid.UUID) error {
		_, err := s.Cancel(ctx, id)
		return err
	})
}

// bulk runs op for every id independently; one failure never stops the batch
func (s *lifecycleService) bulk(ctx context.Context, operation string, billIDs []uuid.UUID, op func(uuid.UUID) error) (*models.BulkOperationResult, error) {
	if len(billIDs) == 0 {
		return nil, common.FieldValidation("bill_ids", "at least one bill id is required")
	}
	if len(billIDs) > maxBulkItems {
		return nil, common.FieldValidation("bill_ids", "cannot process more than %d bills at once", maxBulkItems)
	}

	result := &models.BulkOperationResult{
		OperationID: uuid.New().String(),
		Operation:   operation,
		TotalItems:  len(billIDs),
		StartTime:   s.now(),
		Items:       make([]models.BulkOperationItem, 0, len(billIDs)),
	}
	for i, id := range billIDs {
		item := models.BulkOperationItem{ItemIndex: i, ItemID: id.String(), Status: "success"}
		if err := op(id); err != nil {
			msg := err.Error()
			item.Status = "failed"
			item.Error = &msg
			result.FailedItems++
			result.Errors = append(result.Errors, models.BulkOperationError{
				ItemIndex: i,
				ItemID:    id.String(),
				Kind:      string(common.KindOf(err)),
				Error:     msg,
			})
		} else {
			result.ProcessedItems++
		}
		result.Items = append(result.Items, item)
	}
	result.Finish(s.now())

	s.log.Info().Str("operation", operation).Str("operation_id", result.OperationID).
		Int("processed", result.ProcessedItems).Int("failed", result.FailedItems).Msg("Bulk operation finished")
	return result, nil
}
