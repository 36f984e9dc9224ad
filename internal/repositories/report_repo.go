package repositories

import (
	"context"
	"time"

	"billledger/internal/models"
)

// ReportRepository runs read-only aggregation queries over the ledger
type ReportRepository interface {
	GSTRows(ctx context.Context, from, to time.Time) ([]models.GSTReportRow, error)
	Overdue(ctx context.Context, asOf time.Time) ([]models.OverdueBill, error)
	MonthlyTotals(ctx context.Context, year int) ([]models.MonthlyBucket, error)
	StatusBreakdown(ctx context.Context, asOf time.Time) ([]models.BreakdownRow, error)
	VendorBreakdown(ctx context.Context, from, to time.Time) ([]models.BreakdownRow, error)
}

type reportRepo struct {
	db Database
}

func NewReportRepo(db Database) ReportRepository {
	return &reportRepo{db: db}
}

// GSTRows returns the per-bill tax breakdown for bills dated within
// [from, to], cancelled bills excluded.
func (r *reportRepo) GSTRows(ctx context.Context, from, to time.Time) ([]models.GSTReportRow, error) {
	query := `
		SELECT id, bill_number, bill_type, bill_date, party_name, party_tax_id,
			subtotal, cgst_amount, sgst_amount, igst_amount, cess_amount, total_amount, status
		FROM bills
		WHERE bill_date BETWEEN $1 AND $2 AND status <> 'cancelled'
		ORDER BY bill_date ASC, bill_number ASC
	`
	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reportRows := []models.GSTReportRow{}
	for rows.Next() {
		row := models.GSTReportRow{}
		if err := rows.Scan(&row.BillID, &row.BillNumber, &row.BillType, &row.BillDate, &row.CounterpartyName, &row.CounterpartyTax,
			&row.TaxableAmount, &row.CGST, &row.SGST, &row.IGST, &row.CESS, &row.TotalAmount, &row.Status); err != nil {
			return nil, err
		}
		reportRows = append(reportRows, row)
	}
	return reportRows, rows.Err()
}

// Overdue lists bills whose due date falls before asOf and whose stored
// status is still open. Balance and day counts are left to the caller.
func (r *reportRepo) Overdue(ctx context.Context, asOf time.Time) ([]models.OverdueBill, error) {
	query := `
		SELECT b.id, b.bill_number, b.party_name, b.due_date, b.status, b.total_amount,
			COALESCE(SUM(p.paid_amount), 0) AS amount_paid
		FROM bills b
		LEFT JOIN bill_payments p ON p.bill_id = b.id
		WHERE b.due_date < $1::date AND b.status IN ('pending', 'approved', 'partially_paid') AND b.total_amount > 0
		GROUP BY b.id
		ORDER BY b.due_date ASC, b.bill_number ASC
	`
	rows, err := r.db.Query(ctx, query, models.CalendarDay(asOf))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bills := []models.OverdueBill{}
	for rows.Next() {
		var o models.OverdueBill
		if err := rows.Scan(&o.BillID, &o.BillNumber, &o.CounterpartyName, &o.DueDate, &o.Status, &o.TotalAmount, &o.AmountPaid); err != nil {
			return nil, err
		}
		bills = append(bills, o)
	}
	return bills, rows.Err()
}

// MonthlyTotals returns one bucket per month that has bills; empty months are
// absent.
func (r *reportRepo) MonthlyTotals(ctx context.Context, year int) ([]models.MonthlyBucket, error) {
	query := `
		SELECT EXTRACT(MONTH FROM bill_date)::int AS month, COUNT(*)::int, COALESCE(SUM(total_amount), 0)
		FROM bills
		WHERE EXTRACT(YEAR FROM bill_date)::int = $1 AND status <> 'cancelled'
		GROUP BY month
		ORDER BY month ASC
	`
	rows, err := r.db.Query(ctx, query, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	buckets := []models.MonthlyBucket{}
	for rows.Next() {
		var b models.MonthlyBucket
		if err := rows.Scan(&b.Month, &b.Count, &b.TotalAmount); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// StatusBreakdown groups every bill by its effective status on asOf
func (r *reportRepo) StatusBreakdown(ctx context.Context, asOf time.Time) ([]models.BreakdownRow, error) {
	query := `
		SELECT CASE
				WHEN status IN ('pending', 'approved', 'partially_paid') AND due_date < $1::date AND total_amount > 0 THEN 'overdue'
				ELSE status
			END AS effective_status,
			COUNT(*)::int, COALESCE(SUM(total_amount), 0)
		FROM bills
		GROUP BY effective_status
		ORDER BY effective_status ASC
	`
	return r.breakdown(ctx, query, models.CalendarDay(asOf))
}

// VendorBreakdown groups non-cancelled bills dated within [from, to] by
// counterparty name.
func (r *reportRepo) VendorBreakdown(ctx context.Context, from, to time.Time) ([]models.BreakdownRow, error) {
	query := `
		SELECT party_name, COUNT(*)::int, COALESCE(SUM(total_amount), 0) AS total
		FROM bills
		WHERE bill_date BETWEEN $1 AND $2 AND status <> 'cancelled'
		GROUP BY party_name
		ORDER BY total DESC, party_name ASC
	`
	return r.breakdown(ctx, query, from, to)
}

func (r *reportRepo) breakdown(ctx context.Context, query string, args ...any) ([]models.BreakdownRow, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []models.BreakdownRow{}
	for rows.Next() {
		var row models.BreakdownRow
		if err := rows.Scan(&row.Key, &row.Count, &row.TotalAmount); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
