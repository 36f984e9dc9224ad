package services

import (
	"context"
	"time"

	"billledger/internal/common"
	"billledger/internal/logger"
	"billledger/internal/models"
	"billledger/internal/repositories"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ReportServiceInterface produces read-only ledger reports. Nothing here is
// cached; every call aggregates the current ledger.
type ReportServiceInterface interface {
	GSTReport(ctx context.Context, from, to time.Time) (*models.GSTReport, error)
	OverdueBills(ctx context.Context) ([]models.OverdueBill, error)
	MonthlyAnalytics(ctx context.Context, year int) (*models.MonthlyAnalytics, error)
	StatusBreakdown(ctx context.Context) ([]models.BreakdownRow, error)
	VendorBreakdown(ctx context.Context, from, to time.Time) ([]models.BreakdownRow, error)
}

type reportService struct {
	repo repositories.ReportRepository
	log  zerolog.Logger
	now  func() time.Time
}

// NewReportService creates a new report service
func NewReportService(repo repositories.ReportRepository) ReportServiceInterface {
	return &reportService{
		repo: repo,
		log:  logger.WithComponent("reports"),
		now:  time.Now,
	}
}

func (s *reportService) GSTReport(ctx context.Context, from, to time.Time) (*models.GSTReport, error) {
	if err := common.ValidateDateRange(from, to); err != nil {
		return nil, err
	}

	rows, err := s.repo.GSTRows(ctx, from, to)
	if err != nil {
		s.log.Error().Err(err).Time("from", from).Time("to", to).Msg("GST report query failed")
		return nil, common.SecureErrorMessage("build gst report", err)
	}

	totals := models.GSTTotals{
		TaxableAmount: decimal.Zero,
		CGST:          decimal.Zero,
		SGST:          decimal.Zero,
		IGST:          decimal.Zero,
		CESS:          decimal.Zero,
		TotalAmount:   decimal.Zero,
	}
	for _, r := range rows {
		totals.TaxableAmount = totals.TaxableAmount.Add(r.TaxableAmount)
		totals.CGST = totals.CGST.Add(r.CGST)
		totals.SGST = totals.SGST.Add(r.SGST)
		totals.IGST = totals.IGST.Add(r.IGST)
		totals.CESS = totals.CESS.Add(r.CESS)
		totals.TotalAmount = totals.TotalAmount.Add(r.TotalAmount)
	}
	totals.TotalTax = totals.CGST.Add(totals.SGST).Add(totals.IGST).Add(totals.CESS)

	return &models.GSTReport{
		FromDate:    from,
		ToDate:      to,
		Rows:        rows,
		Totals:      totals,
		GeneratedAt: s.now(),
	}, nil
}

func (s *reportService) OverdueBills(ctx context.Context) ([]models.OverdueBill, error) {
	today := models.CalendarDay(s.now())
	bills, err := s.repo.Overdue(ctx, today)
	if err != nil {
		s.log.Error().Err(err).Msg("Overdue query failed")
		return nil, common.SecureErrorMessage("list overdue bills", err)
	}

	for i := range bills {
		b := &bills[i]
		b.BalanceDue = b.TotalAmount.Sub(b.AmountPaid)
		if b.BalanceDue.IsNegative() {
			b.BalanceDue = decimal.Zero
		}
		b.DaysOverdue = int(today.Sub(models.CalendarDay(b.DueDate)).Hours() / 24)
	}
	return bills, nil
}

// MonthlyAnalytics always returns twelve buckets, zero-filled for months
// without bills.
func (s *reportService) MonthlyAnalytics(ctx context.Context, year int) (*models.MonthlyAnalytics, error) {
	if err := common.ValidateYear(year); err != nil {
		return nil, err
	}

	found, err := s.repo.MonthlyTotals(ctx, year)
	if err != nil {
		s.log.Error().Err(err).Int("year", year).Msg("Monthly analytics query failed")
		return nil, common.SecureErrorMessage("build monthly analytics", err)
	}

	months := make([]models.MonthlyBucket, 12)
	for i := range months {
		months[i] = models.MonthlyBucket{Month: i + 1, TotalAmount: decimal.Zero}
	}
	for _, b := range found {
		if b.Month >= 1 && b.Month <= 12 {
			months[b.Month-1] = b
		}
	}
	return &models.MonthlyAnalytics{Year: year, Months: months}, nil
}

func (s *reportService) StatusBreakdown(ctx context.Context) ([]models.BreakdownRow, error) {
	rows, err := s.repo.StatusBreakdown(ctx, models.CalendarDay(s.now()))
	if err != nil {
		s.log.Error().Err(err).Msg("Status breakdown query failed")
		return nil, common.SecureErrorMessage("build status breakdown", err)
	}
	return rows, nil
}

func (s *reportService) VendorBreakdown(ctx context.Context, from, to time.Time) ([]models.BreakdownRow, error) {
	if err := common.ValidateDateRange(from, to); err != nil {
		return nil, err
	}
	rows, err := s.repo.VendorBreakdown(ctx, from, to)
	if err != nil {
		s.log.Error().Err(err).Msg("Vendor breakdown query failed")
		return nil, common.SecureErrorMessage("build vendor breakdown", err)
	}
	return rows, nil
}
