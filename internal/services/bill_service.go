package services

import (
	"context"
	"fmt"
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
	"github.com/shopspring/decimal"
)

// maxCopyAttempts bounds the COPY-<n>-k numbering search when duplicating
const maxCopyAttempts = 100

// BillServiceInterface owns creation, editing, deletion and duplication of bills
type BillServiceInterface interface {
	CreateBill(ctx context.Context, req *models.CreateBillRequest) (*models.BillView, error)
	GetBill(ctx context.Context, billID uuid.UUID) (*models.BillView, error)
	ListBills(ctx context.Context, filter models.BillFilter) ([]*models.BillView, error)
	UpdateBill(ctx context.Context, billID uuid.UUID, req *models.UpdateBillRequest) (*models.BillView, error)
	DeleteBill(ctx context.Context, billID uuid.UUID) error
	DuplicateBill(ctx context.Context, billID uuid.UUID) (*models.BillView, error)
}

type billService struct {
	ledgerDeps
	repo repositories.BillRepository
}

// NewBillService creates a new bill service
func NewBillService(repo repositories.BillRepository, cache caching.BillCache, m *metrics.Metrics) BillServiceInterface {
	return &billService{
		ledgerDeps: newLedgerDeps(cache, m, logger.WithComponent("bills")),
		repo:       repo,
	}
}

func (s *billService) CreateBill(ctx context.Context, req *models.CreateBillRequest) (*models.BillView, error) {
	bill, err := s.buildBill(ctx, req)
	if err != nil {
		return nil, s.reject("create_bill", uuid.Nil, err)
	}

	if err := s.repo.Create(ctx, bill); err != nil {
		return nil, s.reject("create_bill", bill.ID, err)
	}

	s.metrics.BillsCreated.Inc()
	s.log.Info().Str("bill_id", bill.ID.String()).Str("bill_number", bill.BillNumber).
		Str("total_amount", bill.TotalAmount.StringFixed(2)).Str("status", string(bill.Status)).Msg("Bill created")
	return models.NewBillView(bill, s.now()), nil
}

func (s *billService) buildBill(ctx context.Context, req *models.CreateBillRequest) (*models.Bill, error) {
	if req == nil {
		return nil, common.Validation("request body is required")
	}
	number := strings.TrimSpace(req.BillNumber)
	if err := common.ValidateRequiredString(number, "bill_number"); err != nil {
		return nil, err
	}
	if len(number) > maxBillNumberLength {
		return nil, common.FieldValidation("bill_number", "bill_number cannot exceed %d characters", maxBillNumberLength)
	}
	if err := validateHeader(req.BillType, req.Counterparty, req.BillDate, req.DueDate, req.ReferenceNumber); err != nil {
		return nil, err
	}
	status, err := lifecycle.InitialStatus(req.InitialStatus)
	if err != nil {
		return nil, err
	}

	discount, tds := decimal.Zero, decimal.Zero
	if req.DiscountAmount != nil {
		discount = *req.DiscountAmount
	}
	if req.TDSAmount != nil {
		tds = *req.TDSAmount
	}
	res, err := tax.Calculate(req.LineItems, discount, tds)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, common.Conflict("bill number %s already exists", number)
	}

	bill := &models.Bill{
		ID:              uuid.New(),
		BillNumber:      number,
		BillType:        req.BillType,
		Counterparty:    req.Counterparty,
		BillDate:        req.BillDate,
		DueDate:         req.DueDate,
		ReferenceNumber: req.ReferenceNumber,
		Status:          status,
		LineItems:       newLineItems(req.LineItems),
		Payments:        []models.Payment{},
		CreatedAt:       s.now(),
		UpdatedAt:       s.now(),
	}
	tax.Apply(bill, res)
	return bill, nil
}

func (s *billService) GetBill(ctx context.Context, billID uuid.UUID) (*models.BillView, error) {
	cached, err := s.cache.GetBill(ctx, billID)
	if err != nil {
		s.log.Warn().Err(err).Str("bill_id", billID.String()).Msg("Bill cache read failed")
	}
	if cached != nil {
		return models.NewBillView(cached, s.now()), nil
	}

	// the version must be read before storage so a write landing in between
	// makes SetBill a no-op
	version, verr := s.cache.Version(ctx, billID)
	if verr != nil {
		s.log.Warn().Err(verr).Str("bill_id", billID.String()).Msg("Bill cache version read failed")
	}

	bill, err := s.repo.GetByID(ctx, billID)
	if err != nil {
		return nil, s.reject("get_bill", billID, err)
	}
	if verr == nil {
		if err := s.cache.SetBill(ctx, bill, version); err != nil {
			s.log.Warn().Err(err).Str("bill_id", billID.String()).Msg("Bill cache write failed")
		}
	}
	return models.NewBillView(bill, s.now()), nil
}

func (s *billService) ListBills(ctx context.Context, filter models.BillFilter) ([]*models.BillView, error) {
	limit, offset, err := common.ValidatePaginationParams(filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	filter.Limit, filter.Offset = limit, offset

	if filter.Status != nil && !filter.Status.Valid() {
		return nil, common.FieldValidation("status", "unknown status %q", *filter.Status)
	}
	if filter.Status != nil && *filter.Status == models.BillStatusOverdue {
		return nil, common.FieldValidation("status", "overdue is derived; use the overdue report")
	}
	if filter.BillType != nil && !filter.BillType.Valid() {
		return nil, common.FieldValidation("bill_type", "unknown bill type %q", *filter.BillType)
	}
	if filter.FromDate != nil && filter.ToDate != nil {
		if err := common.ValidateDateRange(*filter.FromDate, *filter.ToDate); err != nil {
			return nil, err
		}
	}

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, s.reject("list_bills", uuid.Nil, err)
	}

	asOf := s.now()
	views := make([]*models.BillView, 0, len(rows))
	for _, row := range rows {
		views = append(views, row.View(asOf))
	}
	return views, nil
}

// UpdateBill applies a typed patch under the bill's row lock. Totals are
// re-derived whenever line items, discount or TDS change.
func (s *billService) UpdateBill(ctx context.Context, billID uuid.UUID, req *models.UpdateBillRequest) (*models.BillView, error) {
	if req == nil {
		return nil, common.Validation("request body is required")
	}

	var updated *models.Bill
	err := s.repo.InTx(ctx, func(repo repositories.BillRepository) error {
		bill, err := repo.GetForUpdate(ctx, billID)
		if err != nil {
			return err
		}
		if err := lifecycle.CanEdit(bill.Status); err != nil {
			return err
		}

		applyHeaderPatch(bill, req)
		if err := validateHeader(bill.BillType, bill.Counterparty, bill.BillDate, bill.DueDate, bill.ReferenceNumber); err != nil {
			return err
		}

		if req.ChangesTotals() {
			if err := recompute(bill, req); err != nil {
				return err
			}
		}

		bill.UpdatedAt = s.now()
		if err := repo.Update(ctx, bill); err != nil {
			return err
		}
		if req.LineItems != nil {
			if err := repo.ReplaceLineItems(ctx, bill.ID, bill.LineItems); err != nil {
				return err
			}
		}
		updated = bill
		return nil
	})
	if err != nil {
		return nil, s.reject("update_bill", billID, err)
	}

	s.invalidate(ctx, billID)
	s.log.Info().Str("bill_id", billID.String()).Str("bill_number", updated.BillNumber).
		Bool("totals_changed", req.ChangesTotals()).Msg("Bill updated")
	return models.NewBillView(updated, s.now()), nil
}

func applyHeaderPatch(bill *models.Bill, req *models.UpdateBillRequest) {
	if req.BillType != nil {
		bill.BillType = *req.BillType
	}
	if req.BillDate != nil {
		bill.BillDate = *req.BillDate
	}
	if req.DueDate != nil {
		bill.DueDate = *req.DueDate
	}
	setOptional(&bill.ReferenceNumber, req.ReferenceNumber)
	if p := req.Counterparty; p != nil {
		cp := &bill.Counterparty
		setString(&cp.Name, p.Name)
		setOptional(&cp.TaxID, p.TaxID)
		setOptional(&cp.Email, p.Email)
		setOptional(&cp.Phone, p.Phone)
		if a := p.Address; a != nil {
			setString(&cp.Address.Street, a.Street)
			setString(&cp.Address.City, a.City)
			setString(&cp.Address.State, a.State)
			setString(&cp.Address.Pincode, a.Pincode)
			setString(&cp.Address.Country, a.Country)
		}
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// setOptional treats an empty string as a request to clear the field
func setOptional(dst **string, v *string) {
	if v == nil {
		return
	}
	if *v == "" {
		*dst = nil
		return
	}
	s := *v
	*dst = &s
}

// recompute re-derives every monetary field and, for bills that already
// carry payments, the payment status.
func recompute(bill *models.Bill, req *models.UpdateBillRequest) error {
	discount, tds := bill.DiscountAmount, bill.TDSAmount
	if req.DiscountAmount != nil {
		discount = *req.DiscountAmount
	}
	if req.TDSAmount != nil {
		tds = *req.TDSAmount
	}

	inputs := tax.Inputs(bill.LineItems)
	if req.LineItems != nil {
		inputs = *req.LineItems
	}
	res, err := tax.Calculate(inputs, discount, tds)
	if err != nil {
		return err
	}
	if req.LineItems != nil {
		bill.LineItems = newLineItems(inputs)
	}
	tax.Apply(bill, res)

	paid := bill.AmountPaid()
	if bill.TotalAmount.LessThan(paid) {
		return common.FieldValidation("total_amount", "new total %s is below the %s already paid",
			bill.TotalAmount.StringFixed(2), paid.StringFixed(2))
	}
	if ev, ok := lifecycle.PaymentEvent(paid, bill.TotalAmount); ok {
		next, err := lifecycle.Transition(bill.Status, ev)
		if err != nil {
			return err
		}
		bill.Status = next
	}
	return nil
}

func (s *billService) DeleteBill(ctx context.Context, billID uuid.UUID) error {
	var number string
	err := s.repo.InTx(ctx, func(repo repositories.BillRepository) error {
		bill, err := repo.GetForUpdate(ctx, billID)
		if err != nil {
			return err
		}
		if err := lifecycle.CanDelete(bill.Status); err != nil {
			return err
		}
		if len(bill.Payments) > 0 {
			return common.InvalidState("bill %s has recorded payments and cannot be deleted", bill.BillNumber)
		}
		number = bill.BillNumber
		return repo.Delete(ctx, billID)
	})
	if err != nil {
		return s.reject("delete_bill", billID, err)
	}

	s.invalidate(ctx, billID)
	s.log.Info().Str("bill_id", billID.String()).Str("bill_number", number).Msg("Bill deleted")
	return nil
}

// DuplicateBill copies a bill's header and line items into a fresh draft
// dated today. Payments and approval are never carried over.
func (s *billService) DuplicateBill(ctx context.Context, billID uuid.UUID) (*models.BillView, error) {
	src, err := s.repo.GetByID(ctx, billID)
	if err != nil {
		return nil, s.reject("duplicate_bill", billID, err)
	}

	number, err := s.copyNumber(ctx, src.BillNumber)
	if err != nil {
		return nil, s.reject("duplicate_bill", billID, err)
	}

	inputs := tax.Inputs(src.LineItems)
	res, err := tax.Calculate(inputs, src.DiscountAmount, src.TDSAmount)
	if err != nil {
		return nil, s.reject("duplicate_bill", billID, err)
	}

	today := s.today()
	term := src.DueDate.Sub(src.BillDate)
	if term < 0 {
		term = 0
	}
	dup := &models.Bill{
		ID:              uuid.New(),
		BillNumber:      number,
		BillType:        src.BillType,
		Counterparty:    src.Counterparty,
		BillDate:        today,
		DueDate:         today.Add(term),
		ReferenceNumber: src.ReferenceNumber,
		Status:          models.BillStatusDraft,
		LineItems:       newLineItems(inputs),
		Payments:        []models.Payment{},
		CreatedAt:       s.now(),
		UpdatedAt:       s.now(),
	}
	tax.Apply(dup, res)

	if err := s.repo.Create(ctx, dup); err != nil {
		return nil, s.reject("duplicate_bill", billID, err)
	}

	s.metrics.BillsCreated.Inc()
	s.log.Info().Str("bill_id", dup.ID.String()).Str("bill_number", dup.BillNumber).
		Str("source_bill_id", src.ID.String()).Msg("Bill duplicated")
	return models.NewBillView(dup, s.now()), nil
}

// copyNumber finds the first free number of COPY-<n>, COPY-<n>-2, COPY-<n>-3...
func (s *billService) copyNumber(ctx context.Context, original string) (string, error) {
	base := "COPY-" + original
	for i := 1; i <= maxCopyAttempts; i++ {
		candidate := base
		if i > 1 {
			candidate = fmt.Sprintf("%s-%d", base, i)
		}
		if len(candidate) > maxBillNumberLength {
			return "", common.FieldValidation("bill_number", "copy number for %s exceeds %d characters", original, maxBillNumberLength)
		}
		exists, err := s.repo.ExistsByNumber(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", common.Conflict("no free copy number for %s after %d attempts", original, maxCopyAttempts)
}
