package repositories

import (
	"context"
	"testing"
	"time"

	"billledger/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReportRepo(t *testing.T) (pgxmock.PgxPoolIface, ReportRepository) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock, NewReportRepo(mock)
}

func TestReportRepo_GSTRowsExcludesCancelled(t *testing.T) {
	mock, repo := newReportRepo(t)
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`WHERE bill_date BETWEEN \$1 AND \$2 AND status <> 'cancelled'`).
		WithArgs(from, to).
		WillReturnRows(pgxmock.NewRows([]string{"id", "bill_number", "bill_type", "bill_date", "party_name", "party_tax_id",
			"subtotal", "cgst_amount", "sgst_amount", "igst_amount", "cess_amount", "total_amount", "status"}).
			AddRow(uuid.New(), "BILL-001", models.BillTypeSales, from, "Acme", (*string)(nil),
				decimal.RequireFromString("200"), decimal.RequireFromString("18"), decimal.RequireFromString("18"),
				decimal.Zero, decimal.Zero, decimal.RequireFromString("236"), models.BillStatusPaid))

	rows, err := repo.GSTRows(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].CGST.Equal(decimal.RequireFromString("18")))
}

func TestReportRepo_OverdueSumsPayments(t *testing.T) {
	mock, repo := newReportRepo(t)
	asOf := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`LEFT JOIN bill_payments p ON p.bill_id = b.id WHERE b.due_date < \$1::date AND b.status IN \('pending', 'approved', 'partially_paid'\) AND b.total_amount > 0`).
		WithArgs(asOf).
		WillReturnRows(pgxmock.NewRows([]string{"id", "bill_number", "party_name", "due_date", "status", "total_amount", "amount_paid"}).
			AddRow(uuid.New(), "BILL-002", "Acme", asOf.AddDate(0, 0, -10), models.BillStatusPartiallyPaid,
				decimal.RequireFromString("236"), decimal.RequireFromString("100")))

	bills, err := repo.Overdue(context.Background(), asOf)
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.True(t, bills[0].AmountPaid.Equal(decimal.RequireFromString("100")))
}

func TestReportRepo_OverdueNormalisesToUTCDay(t *testing.T) {
	mock, repo := newReportRepo(t)
	kolkata := time.FixedZone("IST", 5*60*60+30*60)
	asOf := time.Date(2024, 5, 1, 2, 0, 0, 0, kolkata)

	mock.ExpectQuery(`WHERE b.due_date < \$1::date`).
		WithArgs(time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "bill_number", "party_name", "due_date", "status", "total_amount", "amount_paid"}))

	bills, err := repo.Overdue(context.Background(), asOf)
	require.NoError(t, err)
	assert.Empty(t, bills)
}

func TestReportRepo_MonthlyTotals(t *testing.T) {
	mock, repo := newReportRepo(t)

	mock.ExpectQuery(`WHERE EXTRACT\(YEAR FROM bill_date\)::int = \$1 AND status <> 'cancelled'`).
		WithArgs(2024).
		WillReturnRows(pgxmock.NewRows([]string{"month", "count", "sum"}).
			AddRow(3, 2, decimal.RequireFromString("472")).
			AddRow(7, 1, decimal.RequireFromString("118")))

	buckets, err := repo.MonthlyTotals(context.Background(), 2024)
	require.NoError(t, err)
	assert.Len(t, buckets, 2)
	assert.Equal(t, 7, buckets[1].Month)
}

func TestReportRepo_StatusBreakdownDerivesOverdue(t *testing.T) {
	mock, repo := newReportRepo(t)
	asOf := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`THEN 'overdue' ELSE status END AS effective_status`).
		WithArgs(asOf).
		WillReturnRows(pgxmock.NewRows([]string{"effective_status", "count", "sum"}).
			AddRow("overdue", 1, decimal.RequireFromString("236")).
			AddRow("paid", 3, decimal.RequireFromString("708")))

	rows, err := repo.StatusBreakdown(context.Background(), asOf)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "overdue", rows[0].Key)
}

func TestReportRepo_VendorBreakdown(t *testing.T) {
	mock, repo := newReportRepo(t)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`GROUP BY party_name`).
		WithArgs(from, to).
		WillReturnRows(pgxmock.NewRows([]string{"party_name", "count", "total"}).
			AddRow("Acme", 4, decimal.RequireFromString("944")))

	rows, err := repo.VendorBreakdown(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, []models.BreakdownRow{{Key: "Acme", Count: 4, TotalAmount: decimal.RequireFromString("944")}}, rows)
}
