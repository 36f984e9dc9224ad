package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	"billledger/internal/models"
	"billledger/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// TestDB holds the database connection for testing
type TestDB struct {
	Pool *pgxpool.Pool
}

// SetupTestDB connects to TEST_DATABASE_URL, applies migrations and empties
// the ledger tables. The test is skipped when the variable is unset.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping Postgres integration test")
	}

	if err := database.Migrate(connString); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := database.NewPool(ctx, connString)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	db := &TestDB{Pool: pool}
	db.Truncate(t)
	t.Cleanup(func() {
		db.Truncate(t)
		pool.Close()
	})
	return db
}

// Truncate removes every bill, line item and payment
func (db *TestDB) Truncate(t *testing.T) {
	t.Helper()
	_, err := db.Pool.Exec(context.Background(), `TRUNCATE bill_payments, bill_line_items, bills`)
	if err != nil {
		t.Fatalf("Failed to truncate ledger tables: %v", err)
	}
}

// NewCreateBillRequest returns a valid purchase bill request totalling 236.00:
// two units at 100.00 with 18% GST.
func NewCreateBillRequest(billNumber string, billDate time.Time) *models.CreateBillRequest {
	gstin := "27AAPFU0939F1ZV"
	return &models.CreateBillRequest{
		BillNumber: billNumber,
		BillType:   models.BillTypePurchase,
		Counterparty: models.Counterparty{
			Name:  "Shree Traders",
			TaxID: &gstin,
			Address: models.Address{
				Street:  "12 Market Yard",
				City:    "Pune",
				State:   "Maharashtra",
				Pincode: "411037",
				Country: "India",
			},
		},
		BillDate: billDate,
		DueDate:  billDate.AddDate(0, 0, 30),
		LineItems: []models.LineItemInput{
			{
				Description: "Hybrid tomato seeds",
				Quantity:    decimal.NewFromInt(2),
				Unit:        "kg",
				Rate:        decimal.NewFromInt(100),
				GSTRate:     decimal.NewFromInt(18),
			},
		},
	}
}

// UniqueBillNumber avoids collisions between tests sharing a database
func UniqueBillNumber(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}
