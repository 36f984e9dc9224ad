package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GSTReportRow represents a row in GST reporting
type GSTReportRow struct {
	BillID           uuid.UUID       `json:"bill_id"`
	BillNumber       string          `json:"bill_number"`
	BillType         BillType        `json:"bill_type"`
	BillDate         time.Time       `json:"bill_date"`
	CounterpartyName string          `json:"counterparty_name"`
	CounterpartyTax  *string         `json:"counterparty_tax_id,omitempty"`
	TaxableAmount    decimal.Decimal `json:"taxable_amount"`
	CGST             decimal.Decimal `json:"cgst"`
	SGST             decimal.Decimal `json:"sgst"`
	IGST             decimal.Decimal `json:"igst"`
	CESS             decimal.Decimal `json:"cess"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	Status           BillStatus      `json:"status"`
}

type GSTTotals struct {
	TaxableAmount decimal.Decimal `json:"taxable_amount"`
	CGST          decimal.Decimal `json:"cgst"`
	SGST          decimal.Decimal `json:"sgst"`
	IGST          decimal.Decimal `json:"igst"`
	CESS          decimal.Decimal `json:"cess"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

type GSTReport struct {
	FromDate    time.Time      `json:"from_date"`
	ToDate      time.Time      `json:"to_date"`
	Rows        []GSTReportRow `json:"rows"`
	Totals      GSTTotals      `json:"totals"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// MonthlyBucket aggregates non-cancelled bills issued in one calendar month
type MonthlyBucket struct {
	Month       int             `json:"month"`
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type MonthlyAnalytics struct {
	Year   int             `json:"year"`
	Months []MonthlyBucket `json:"months"`
}

// BreakdownRow is a count/amount pair keyed by status or counterparty name
type BreakdownRow struct {
	Key         string          `json:"key"`
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// OverdueBill is one entry of the overdue listing
type OverdueBill struct {
	BillID           uuid.UUID       `json:"bill_id"`
	BillNumber       string          `json:"bill_number"`
	CounterpartyName string          `json:"counterparty_name"`
	DueDate          time.Time       `json:"due_date"`
	Status           BillStatus      `json:"status"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	AmountPaid       decimal.Decimal `json:"amount_paid"`
	BalanceDue       decimal.Decimal `json:"balance_due"`
	DaysOverdue      int             `json:"days_overdue"`
}
