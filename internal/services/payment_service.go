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
	"billledger/internal/tax"

	"github.com/google/uuid"
)

// PaymentServiceInterface records payments against bills
type PaymentServiceInterface interface {
	AddPayment(ctx context.Context, req *models.AddPaymentRequest) (*models.BillView, error)
	ListPayments(ctx context.Context, billID uuid.UUID) ([]models.Payment, error)
}

type paymentService struct {
	ledgerDeps
	repo repositories.BillRepository
}

// NewPaymentService creates a new payment service
func NewPaymentService(repo repositories.BillRepository, cache caching.BillCache, m *metrics.Metrics) PaymentServiceInterface {
	return &paymentService{
		ledgerDeps: newLedgerDeps(cache, m, logger.WithComponent("payments")),
		repo:       repo,
	}
}

func validatePayment(req *models.AddPaymentRequest) error {
	if req == nil {
		return common.Validation("request body is required")
	}
	if req.BillID == uuid.Nil {
		return common.FieldValidation("bill_id", "bill_id is required")
	}
	if err := common.ValidateRequiredString(req.PaymentReference, "payment_reference"); err != nil {
		return err
	}
	if err := common.ValidateOptionalString(&req.PaymentReference, "payment_reference", maxTextLength); err != nil {
		return err
	}
	if !req.PaidAmount.IsPositive() {
		return common.FieldValidation("paid_amount", "paid_amount must be greater than zero")
	}
	if !req.PaidAmount.Equal(tax.Round(req.PaidAmount)) {
		return common.FieldValidation("paid_amount", "paid_amount cannot have more than two decimal places")
	}
	if req.PaymentDate.IsZero() {
		return common.FieldValidation("payment_date", "payment_date is required")
	}
	if !req.PaymentMethod.Valid() {
		return common.FieldValidation("payment_method", "unknown payment method %q", req.PaymentMethod)
	}
	if err := common.ValidateOptionalString(req.TransactionID, "transaction_id", maxTextLength); err != nil {
		return err
	}
	return common.ValidateOptionalString(req.Notes, "notes", 1000)
}

// AddPayment appends a payment and moves the bill to partially_paid or paid.
// The bill row stays locked from the balance check until commit, so
// concurrent payments against one bill are applied one at a time.
func (s *paymentService) AddPayment(ctx context.Context, req *models.AddPaymentRequest) (*models.BillView, error) {
	if err := validatePayment(req); err != nil {
		var billID uuid.UUID
		if req != nil {
			billID = req.BillID
		}
		return nil, s.reject("add_payment", billID, err)
	}

	var (
		updated *models.Bill
		from    models.BillStatus
	)
	err := s.repo.InTx(ctx, func(repo repositories.BillRepository) error {
		bill, err := repo.GetForUpdate(ctx, req.BillID)
		if err != nil {
			return err
		}
		if err := lifecycle.CanAcceptPayment(bill.Status); err != nil {
			return err
		}

		paid := bill.AmountPaid().Add(req.PaidAmount)
		if paid.GreaterThan(bill.TotalAmount) {
			return common.FieldValidation("paid_amount", "payment of %s exceeds the balance due of %s",
				req.PaidAmount.StringFixed(2), bill.BalanceDue().StringFixed(2))
		}

		payment := models.Payment{
			ID:               uuid.New(),
			BillID:           bill.ID,
			PaymentReference: strings.TrimSpace(req.PaymentReference),
			PaidAmount:       req.PaidAmount,
			PaymentDate:      req.PaymentDate,
			PaymentMethod:    req.PaymentMethod,
			TransactionID:    req.TransactionID,
			Notes:            req.Notes,
			CreatedAt:        s.now(),
		}
		if err := repo.AddPayment(ctx, &payment); err != nil {
			return err
		}

		ev, _ := lifecycle.PaymentEvent(paid, bill.TotalAmount)
		next, err := lifecycle.Transition(bill.Status, ev)
		if err != nil {
			return err
		}
		from = bill.Status
		bill.Status = next
		bill.UpdatedAt = s.now()
		if err := repo.Update(ctx, bill); err != nil {
			return err
		}

		bill.Payments = append(bill.Payments, payment)
		updated = bill
		return nil
	})
	if err != nil {
		return nil, s.reject("add_payment", req.BillID, err)
	}

	s.invalidate(ctx, updated.ID)
	s.metrics.PaymentsRecorded.Inc()
	s.metrics.AmountCollected.Add(req.PaidAmount.InexactFloat64())
	if from != updated.Status {
		s.metrics.Transitions.WithLabelValues(string(updated.Status)).Inc()
	}
	s.log.Info().Str("bill_id", updated.ID.String()).Str("bill_number", updated.BillNumber).
		Str("paid_amount", req.PaidAmount.StringFixed(2)).Str("status", string(updated.Status)).Msg("Payment recorded")
	return models.NewBillView(updated, s.now()), nil
}

func (s *paymentService) ListPayments(ctx context.Context, billID uuid.UUID) ([]models.Payment, error) {
	bill, err := s.repo.GetByID(ctx, billID)
	if err != nil {
		return nil, s.reject("list_payments", billID, err)
	}
	return bill.Payments, nil
}
