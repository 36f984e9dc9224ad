package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItemInput carries the raw, caller-supplied part of a line item
type LineItemInput struct {
	Description string          `json:"description"`
	HSNCode     *string         `json:"hsn_code,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	Rate        decimal.Decimal `json:"rate"`
	GSTRate     decimal.Decimal `json:"gst_rate"`
}

type CreateBillRequest struct {
	BillNumber      string           `json:"bill_number"`
	BillType        BillType         `json:"bill_type"`
	Counterparty    Counterparty     `json:"counterparty"`
	BillDate        time.Time        `json:"bill_date"`
	DueDate         time.Time        `json:"due_date"`
	ReferenceNumber *string          `json:"reference_number,omitempty"`
	DiscountAmount  *decimal.Decimal `json:"discount_amount,omitempty"`
	TDSAmount       *decimal.Decimal `json:"tds_amount,omitempty"`
	LineItems       []LineItemInput  `json:"line_items"`
	InitialStatus   *BillStatus      `json:"initial_status,omitempty"`
}

// AddressPatch updates individual address fields
type AddressPatch struct {
	Street  *string `json:"street,omitempty"`
	City    *string `json:"city,omitempty"`
	State   *string `json:"state,omitempty"`
	Pincode *string `json:"pincode,omitempty"`
	Country *string `json:"country,omitempty"`
}

type CounterpartyPatch struct {
	Name    *string       `json:"name,omitempty"`
	TaxID   *string       `json:"tax_id,omitempty"`
	Email   *string       `json:"email,omitempty"`
	Phone   *string       `json:"phone,omitempty"`
	Address *AddressPatch `json:"address,omitempty"`
}

// UpdateBillRequest is a typed partial update. Bill number and status are not
// patchable; status moves only through lifecycle operations.
type UpdateBillRequest struct {
	BillType        *BillType          `json:"bill_type,omitempty"`
	Counterparty    *CounterpartyPatch `json:"counterparty,omitempty"`
	BillDate        *time.Time         `json:"bill_date,omitempty"`
	DueDate         *time.Time         `json:"due_date,omitempty"`
	ReferenceNumber *string            `json:"reference_number,omitempty"`
	DiscountAmount  *decimal.Decimal   `json:"discount_amount,omitempty"`
	TDSAmount       *decimal.Decimal   `json:"tds_amount,omitempty"`
	LineItems       *[]LineItemInput   `json:"line_items,omitempty"`
}

// ChangesTotals reports whether applying the patch requires a tax recompute
func (r *UpdateBillRequest) ChangesTotals() bool {
	return r.LineItems != nil || r.DiscountAmount != nil || r.TDSAmount != nil
}

type AddPaymentRequest struct {
	BillID           uuid.UUID       `json:"bill_id"`
	PaymentReference string          `json:"payment_reference"`
	PaidAmount       decimal.Decimal `json:"paid_amount"`
	PaymentDate      time.Time       `json:"payment_date"`
	PaymentMethod    PaymentMethod   `json:"payment_method"`
	TransactionID    *string         `json:"transaction_id,omitempty"`
	Notes            *string         `json:"notes,omitempty"`
}

// BillFilter narrows bill listings
type BillFilter struct {
	Status       *BillStatus `json:"status,omitempty"`
	BillType     *BillType   `json:"bill_type,omitempty"`
	Counterparty string      `json:"counterparty,omitempty"`
	FromDate     *time.Time  `json:"from_date,omitempty"`
	ToDate       *time.Time  `json:"to_date,omitempty"`
	Limit        int         `json:"limit"`
	Offset       int         `json:"offset"`
}
