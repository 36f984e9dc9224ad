package services

import (
	"context"
	"strings"
	"time"

	"billledger/internal/caching"
	"billledger/internal/common"
	"billledger/internal/metrics"
	"billledger/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	maxBillNumberLength = 50
	maxTextLength       = 255
)

// ledgerDeps is shared by every service that writes the ledger
type ledgerDeps struct {
	cache   caching.BillCache
	metrics *metrics.Metrics
	log     zerolog.Logger
	now     func() time.Time
}

func newLedgerDeps(cache caching.BillCache, m *metrics.Metrics, log zerolog.Logger) ledgerDeps {
	if cache == nil {
		cache = caching.NoopBillCache{}
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return ledgerDeps{cache: cache, metrics: m, log: log, now: time.Now}
}

// reject records a refused operation and returns err unchanged
func (d *ledgerDeps) reject(operation string, billID uuid.UUID, err error) error {
	kind := common.KindOf(err)
	d.metrics.Rejections.WithLabelValues(operation, string(kind)).Inc()
	if kind == common.KindInternal {
		d.log.Error().Err(err).Str("operation", operation).Str("bill_id", billID.String()).Msg("Ledger operation failed")
		return common.SecureErrorMessage(operation, err)
	}
	d.log.Warn().Err(err).Str("operation", operation).Str("bill_id", billID.String()).Str("kind", string(kind)).Msg("Ledger operation rejected")
	return err
}

// invalidate drops a cached bill; failures only cost a stale read until TTL
func (d *ledgerDeps) invalidate(ctx context.Context, billID uuid.UUID) {
	if err := d.cache.InvalidateBill(ctx, billID); err != nil {
		d.log.Warn().Err(err).Str("bill_id", billID.String()).Msg("Failed to invalidate cached bill")
	}
}

func (d *ledgerDeps) today() time.Time {
	return models.CalendarDay(d.now())
}

// validateHeader checks the caller supplied, non-monetary part of a bill
func validateHeader(billType models.BillType, cp models.Counterparty, billDate, dueDate time.Time, reference *string) error {
	if !billType.Valid() {
		return common.FieldValidation("bill_type", "unknown bill type %q", billType)
	}
	if err := validateCounterparty(cp); err != nil {
		return err
	}
	if billDate.IsZero() {
		return common.FieldValidation("bill_date", "bill_date is required")
	}
	if dueDate.IsZero() {
		return common.FieldValidation("due_date", "due_date is required")
	}
	if dueDate.Before(billDate) {
		return common.FieldValidation("due_date", "due_date cannot be before bill_date")
	}
	return common.ValidateOptionalString(reference, "reference_number", maxTextLength)
}

func validateCounterparty(cp models.Counterparty) error {
	if err := common.ValidateRequiredString(cp.Name, "counterparty.name"); err != nil {
		return err
	}
	if cp.TaxID != nil {
		if err := common.ValidateGSTIN(*cp.TaxID, "counterparty.tax_id"); err != nil {
			return err
		}
	}
	if err := common.ValidateEmail(cp.Email, "counterparty.email"); err != nil {
		return err
	}
	if err := common.ValidateOptionalString(cp.Phone, "counterparty.phone", 20); err != nil {
		return err
	}

	addr := cp.Address
	required := []struct{ value, field string }{
		{addr.Street, "counterparty.address.street"},
		{addr.City, "counterparty.address.city"},
		{addr.State, "counterparty.address.state"},
		{addr.Pincode, "counterparty.address.pincode"},
		{addr.Country, "counterparty.address.country"},
	}
	for _, r := range required {
		if err := common.ValidateRequiredString(r.value, r.field); err != nil {
			return err
		}
	}
	if isIndia(addr.Country) {
		return common.ValidatePincode(addr.Pincode, "counterparty.address.pincode")
	}
	return nil
}

func isIndia(country string) bool {
	c := strings.ToLower(strings.TrimSpace(country))
	return c == "india" || c == "in"
}

// newLineItems gives each input a fresh identity; amounts are filled by tax.Apply
func newLineItems(inputs []models.LineItemInput) []models.LineItem {
	items := make([]models.LineItem, 0, len(inputs))
	for i, in := range inputs {
		items = append(items, models.LineItem{
			ID:          uuid.New(),
			Position:    i + 1,
			Description: strings.TrimSpace(in.Description),
			HSNCode:     in.HSNCode,
			Quantity:    in.Quantity,
			Unit:        in.Unit,
			Rate:        in.Rate,
			GSTRate:     in.GSTRate,
		})
	}
	return items
}
