// Package tax derives line and bill level GST amounts from raw line items.
//
// All amounts are fixed point with two decimal places. Each line is rounded
// half-up once per component, and bill totals are sums of the rounded line
// components, so a bill always reconciles with its lines.
//
// Only intra-state supply is computed: GST is split evenly into CGST and SGST
// and IGST/CESS stay zero.
package tax

import (
	"strconv"

	"billledger/internal/common"
	"billledger/internal/models"

	"github.com/shopspring/decimal"
)

const (
	moneyPlaces    = 2
	quantityPlaces = 3
)

var (
	hundred    = decimal.NewFromInt(100)
	two        = decimal.NewFromInt(2)
	maxGSTRate = decimal.NewFromInt(28)
)

// LineResult holds the derived amounts for one line item
type LineResult struct {
	Amount decimal.Decimal
	CGST   decimal.Decimal
	SGST   decimal.Decimal
	IGST   decimal.Decimal
	CESS   decimal.Decimal
	Total  decimal.Decimal
}

// Result holds per-line and aggregate amounts for a bill
type Result struct {
	Lines       []LineResult
	Subtotal    decimal.Decimal
	CGST        decimal.Decimal
	SGST        decimal.Decimal
	IGST        decimal.Decimal
	CESS        decimal.Decimal
	Discount    decimal.Decimal
	TDS         decimal.Decimal
	TotalAmount decimal.Decimal
}

// TotalTax is the sum of every GST component
func (r Result) TotalTax() decimal.Decimal {
	return r.CGST.Add(r.SGST).Add(r.IGST).Add(r.CESS)
}

// Round applies the ledger rounding policy (half-up, two places)
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}

// ValidateLine checks the raw inputs of a single line item. Inputs may not
// carry more decimal places than the ledger stores, so line amounts always
// recompute identically from stored rows.
func ValidateLine(index int, item models.LineItemInput) error {
	field := func(name string) string {
		return "line_items[" + strconv.Itoa(index) + "]." + name
	}
	if err := common.ValidateRequiredString(item.Description, field("description")); err != nil {
		return err
	}
	if !item.Quantity.IsPositive() {
		return common.FieldValidation(field("quantity"), "quantity must be greater than zero")
	}
	if !hasPlaces(item.Quantity, quantityPlaces) {
		return common.FieldValidation(field("quantity"), "quantity cannot have more than three decimal places")
	}
	if item.Rate.IsNegative() {
		return common.FieldValidation(field("rate"), "rate cannot be negative")
	}
	if !hasPlaces(item.Rate, moneyPlaces) {
		return common.FieldValidation(field("rate"), "rate cannot have more than two decimal places")
	}
	if item.GSTRate.IsNegative() || item.GSTRate.GreaterThan(maxGSTRate) {
		return common.FieldValidation(field("gst_rate"), "gst rate must be between 0 and 28")
	}
	if !hasPlaces(item.GSTRate, moneyPlaces) {
		return common.FieldValidation(field("gst_rate"), "gst rate cannot have more than two decimal places")
	}
	return nil
}

func hasPlaces(v decimal.Decimal, places int32) bool {
	return v.Equal(v.Truncate(places))
}

// CalculateLine derives the tax split for one line item
func CalculateLine(item models.LineItemInput) LineResult {
	amount := Round(item.Quantity.Mul(item.Rate))
	// amount * rate / 100 / 2, rounded once
	half := Round(amount.Mul(item.GSTRate).Div(hundred).Div(two))
	// TODO: route inter-state supplies to IGST once the counterparty state is compared with the business state.
	igst := decimal.Zero
	cess := decimal.Zero
	return LineResult{
		Amount: amount,
		CGST:   half,
		SGST:   half,
		IGST:   igst,
		CESS:   cess,
		Total:  amount.Add(half).Add(half).Add(igst).Add(cess),
	}
}

// Calculate validates the inputs and derives all bill amounts. It is pure:
// identical inputs always produce identical results.
func Calculate(items []models.LineItemInput, discount, tds decimal.Decimal) (Result, error) {
	if len(items) == 0 {
		return Result{}, common.FieldValidation("line_items", "at least one line item is required")
	}
	if discount.IsNegative() {
		return Result{}, common.FieldValidation("discount_amount", "discount amount cannot be negative")
	}
	if tds.IsNegative() {
		return Result{}, common.FieldValidation("tds_amount", "tds amount cannot be negative")
	}

	res := Result{
		Lines:    make([]LineResult, 0, len(items)),
		Subtotal: decimal.Zero,
		CGST:     decimal.Zero,
		SGST:     decimal.Zero,
		IGST:     decimal.Zero,
		CESS:     decimal.Zero,
		Discount: Round(discount),
		TDS:      Round(tds),
	}
	for i, item := range items {
		if err := ValidateLine(i, item); err != nil {
			return Result{}, err
		}
		line := CalculateLine(item)
		res.Lines = append(res.Lines, line)
		res.Subtotal = res.Subtotal.Add(line.Amount)
		res.CGST = res.CGST.Add(line.CGST)
		res.SGST = res.SGST.Add(line.SGST)
		res.IGST = res.IGST.Add(line.IGST)
		res.CESS = res.CESS.Add(line.CESS)
	}

	res.TotalAmount = res.Subtotal.Add(res.TotalTax()).Sub(res.Discount).Sub(res.TDS)
	if res.TotalAmount.IsNegative() {
		return Result{}, common.FieldValidation("total_amount", "computed total amount %s is negative", res.TotalAmount.StringFixed(moneyPlaces))
	}
	return res, nil
}

// Apply writes a calculation result onto a bill and its line items. The bill
// must already hold one line item per result line, in the same order.
func Apply(bill *models.Bill, res Result) {
	bill.Subtotal = res.Subtotal
	bill.CGSTAmount = res.CGST
	bill.SGSTAmount = res.SGST
	bill.IGSTAmount = res.IGST
	bill.CESSAmount = res.CESS
	bill.DiscountAmount = res.Discount
	bill.TDSAmount = res.TDS
	bill.TotalAmount = res.TotalAmount
	for i := range bill.LineItems {
		if i >= len(res.Lines) {
			break
		}
		line := res.Lines[i]
		bill.LineItems[i].Amount = line.Amount
		bill.LineItems[i].CGST = line.CGST
		bill.LineItems[i].SGST = line.SGST
		bill.LineItems[i].IGST = line.IGST
		bill.LineItems[i].CESS = line.CESS
		bill.LineItems[i].Total = line.Total
	}
}

// Inputs recovers the raw inputs of a bill's stored line items
func Inputs(items []models.LineItem) []models.LineItemInput {
	inputs := make([]models.LineItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, models.LineItemInput{
			Description: item.Description,
			HSNCode:     item.HSNCode,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			Rate:        item.Rate,
			GSTRate:     item.GSTRate,
		})
	}
	return inputs
}
