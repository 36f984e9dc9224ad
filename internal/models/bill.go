package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BillType string

const (
	BillTypePurchase   BillType = "purchase"
	BillTypeSales      BillType = "sales"
	BillTypeService    BillType = "service"
	BillTypeDebitNote  BillType = "debit_note"
	BillTypeCreditNote BillType = "credit_note"
)

// Valid reports whether t is one of the known bill types
func (t BillType) Valid() bool {
	switch t {
	case BillTypePurchase, BillTypeSales, BillTypeService, BillTypeDebitNote, BillTypeCreditNote:
		return true
	}
	return false
}

type BillStatus string

const (
	BillStatusDraft         BillStatus = "draft"
	BillStatusPending       BillStatus = "pending"
	BillStatusApproved      BillStatus = "approved"
	BillStatusPaid          BillStatus = "paid"
	BillStatusPartiallyPaid BillStatus = "partially_paid"
	BillStatusOverdue       BillStatus = "overdue"
	BillStatusCancelled     BillStatus = "cancelled"
)

// Valid reports whether s is a known status value
func (s BillStatus) Valid() bool {
	switch s {
	case BillStatusDraft, BillStatusPending, BillStatusApproved, BillStatusPaid,
		BillStatusPartiallyPaid, BillStatusOverdue, BillStatusCancelled:
		return true
	}
	return false
}

// Terminal statuses accept no further monetary or line item changes
func (s BillStatus) Terminal() bool {
	return s == BillStatusPaid || s == BillStatusCancelled
}

// OverdueEligible lists the stored statuses that read as overdue once the due date passes
var OverdueEligible = []BillStatus{BillStatusPending, BillStatusApproved, BillStatusPartiallyPaid}

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCheque       PaymentMethod = "cheque"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodUPI          PaymentMethod = "upi"
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodDebitCard    PaymentMethod = "debit_card"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCheque, PaymentMethodBankTransfer,
		PaymentMethodUPI, PaymentMethodCreditCard, PaymentMethodDebitCard:
		return true
	}
	return false
}

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Country string `json:"country"`
}

// Counterparty is the vendor or customer named on a bill
type Counterparty struct {
	Name    string  `json:"name"`
	TaxID   *string `json:"tax_id,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address Address `json:"address"`
}

// Bill is the aggregate root of the ledger. Monetary fields are derived by the
// tax calculator and are never taken from callers directly.
type Bill struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	BillNumber      string          `json:"bill_number" db:"bill_number"`
	BillType        BillType        `json:"bill_type" db:"bill_type"`
	Counterparty    Counterparty    `json:"counterparty"`
	BillDate        time.Time       `json:"bill_date" db:"bill_date"`
	DueDate         time.Time       `json:"due_date" db:"due_date"`
	ReferenceNumber *string         `json:"reference_number,omitempty" db:"reference_number"`
	Subtotal        decimal.Decimal `json:"subtotal" db:"subtotal"`
	CGSTAmount      decimal.Decimal `json:"cgst_amount" db:"cgst_amount"`
	SGSTAmount      decimal.Decimal `json:"sgst_amount" db:"sgst_amount"`
	IGSTAmount      decimal.Decimal `json:"igst_amount" db:"igst_amount"`
	CESSAmount      decimal.Decimal `json:"cess_amount" db:"cess_amount"`
	DiscountAmount  decimal.Decimal `json:"discount_amount" db:"discount_amount"`
	TDSAmount       decimal.Decimal `json:"tds_amount" db:"tds_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount" db:"total_amount"`
	Status          BillStatus      `json:"status" db:"status"`
	ApprovedBy      *string         `json:"approved_by,omitempty" db:"approved_by"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty" db:"approved_at"`
	LineItems       []LineItem      `json:"line_items"`
	Payments        []Payment       `json:"payments"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// LineItem belongs to exactly one bill and is deleted with it
type LineItem struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	BillID      uuid.UUID       `json:"bill_id" db:"bill_id"`
	Position    int             `json:"position" db:"position"`
	Description string          `json:"description" db:"description"`
	HSNCode     *string         `json:"hsn_code,omitempty" db:"hsn_code"`
	Quantity    decimal.Decimal `json:"quantity" db:"quantity"`
	Unit        string          `json:"unit" db:"unit"`
	Rate        decimal.Decimal `json:"rate" db:"rate"`
	GSTRate     decimal.Decimal `json:"gst_rate" db:"gst_rate"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	CGST        decimal.Decimal `json:"cgst" db:"cgst"`
	SGST        decimal.Decimal `json:"sgst" db:"sgst"`
	IGST        decimal.Decimal `json:"igst" db:"igst"`
	CESS        decimal.Decimal `json:"cess" db:"cess"`
	Total       decimal.Decimal `json:"total" db:"total"`
}

// Payment is an immutable financial record; it outlives nothing but also
// never disappears with its bill.
type Payment struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	BillID           uuid.UUID       `json:"bill_id" db:"bill_id"`
	PaymentReference string          `json:"payment_reference" db:"payment_reference"`
	PaidAmount       decimal.Decimal `json:"paid_amount" db:"paid_amount"`
	PaymentDate      time.Time       `json:"payment_date" db:"payment_date"`
	PaymentMethod    PaymentMethod   `json:"payment_method" db:"payment_method"`
	TransactionID    *string         `json:"transaction_id,omitempty" db:"transaction_id"`
	Notes            *string         `json:"notes,omitempty" db:"notes"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}

// AmountPaid sums the recorded payments
func (b *Bill) AmountPaid() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range b.Payments {
		sum = sum.Add(p.PaidAmount)
	}
	return sum
}

// BalanceDue is the outstanding amount, never below zero
func (b *Bill) BalanceDue() decimal.Decimal {
	balance := b.TotalAmount.Sub(b.AmountPaid())
	if balance.IsNegative() {
		return decimal.Zero
	}
	return balance
}

// EffectiveStatus derives overdue at read time; overdue is never stored.
// A zero-total bill owes nothing and so never reads as overdue.
func (b *Bill) EffectiveStatus(asOf time.Time) BillStatus {
	if b.TotalAmount.IsPositive() && IsOverdue(b.Status, b.DueDate, asOf) {
		return BillStatusOverdue
	}
	return b.Status
}

// IsOverdue reports whether a bill with the given stored status and due date
// counts as overdue on asOf (due date strictly before the asOf calendar day).
func IsOverdue(status BillStatus, dueDate, asOf time.Time) bool {
	eligible := false
	for _, s := range OverdueEligible {
		if s == status {
			eligible = true
			break
		}
	}
	if !eligible {
		return false
	}
	return CalendarDay(dueDate).Before(CalendarDay(asOf))
}

// CalendarDay is the ledger day containing t. Ledger days are UTC calendar
// days whatever the server's local zone.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// BillView is the representation returned to callers
type BillView struct {
	*Bill
	AmountPaid      decimal.Decimal `json:"amount_paid"`
	BalanceDue      decimal.Decimal `json:"balance_due"`
	EffectiveStatus BillStatus      `json:"effective_status"`
}

// NewBillView decorates a bill with its derived payment figures
func NewBillView(b *Bill, asOf time.Time) *BillView {
	return newBillView(b, b.AmountPaid(), asOf)
}

// BillListRow is a bill header as listed: no line items or payments, only
// the payment total.
type BillListRow struct {
	Bill       *Bill
	AmountPaid decimal.Decimal
}

// View decorates a listed bill the same way NewBillView does
func (r BillListRow) View(asOf time.Time) *BillView {
	return newBillView(r.Bill, r.AmountPaid, asOf)
}

func newBillView(b *Bill, paid decimal.Decimal, asOf time.Time) *BillView {
	balance := b.TotalAmount.Sub(paid)
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	return &BillView{
		Bill:            b,
		AmountPaid:      paid,
		BalanceDue:      balance,
		EffectiveStatus: b.EffectiveStatus(asOf),
	}
}
