package tax

import (
	"testing"

	"billledger/internal/common"
	"billledger/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func item(qty, rate, gst string) models.LineItemInput {
	return models.LineItemInput{
		Description: "Widget",
		Quantity:    d(qty),
		Unit:        "pcs",
		Rate:        d(rate),
		GSTRate:     d(gst),
	}
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, label string) {
	t.Helper()
	assert.Equal(t, want, got.StringFixed(2), label)
}

func TestCalculate_SingleLine(t *testing.T) {
	res, err := Calculate([]models.LineItemInput{item("2", "100", "18")}, decimal.Zero, decimal.Zero)
	require.NoError(t, err)

	assertMoney(t, "200.00", res.Subtotal, "subtotal")
	assertMoney(t, "18.00", res.CGST, "cgst")
	assertMoney(t, "18.00", res.SGST, "sgst")
	assertMoney(t, "0.00", res.IGST, "igst")
	assertMoney(t, "0.00", res.CESS, "cess")
	assertMoney(t, "236.00", res.TotalAmount, "total")
	require.Len(t, res.Lines, 1)
	assertMoney(t, "236.00", res.Lines[0].Total, "line total")
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name      string
		items     []models.LineItemInput
		discount  string
		tds       string
		wantSub   string
		wantCGST  string
		wantTotal string
	}{
		{
			name:      "split rounds half up",
			items:     []models.LineItemInput{item("1", "1", "5")},
			discount:  "0",
			tds:       "0",
			wantSub:   "1.00",
			wantCGST:  "0.03",
			wantTotal: "1.06",
		},
		{
			name:      "fractional quantity",
			items:     []models.LineItemInput{item("3", "10.10", "18")},
			discount:  "0",
			tds:       "0",
			wantSub:   "30.30",
			wantCGST:  "2.73",
			wantTotal: "35.76",
		},
		{
			name:      "discount and tds subtract from total",
			items:     []models.LineItemInput{item("2", "100", "18"), item("1", "50", "0")},
			discount:  "10",
			tds:       "5.50",
			wantSub:   "250.00",
			wantCGST:  "18.00",
			wantTotal: "270.50",
		},
		{
			name:      "zero rate item",
			items:     []models.LineItemInput{item("4", "0", "12")},
			discount:  "0",
			tds:       "0",
			wantSub:   "0.00",
			wantCGST:  "0.00",
			wantTotal: "0.00",
		},
		{
			name:      "maximum gst rate",
			items:     []models.LineItemInput{item("1", "1000", "28")},
			discount:  "0",
			tds:       "0",
			wantSub:   "1000.00",
			wantCGST:  "140.00",
			wantTotal: "1280.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Calculate(tt.items, d(tt.discount), d(tt.tds))
			require.NoError(t, err)
			assertMoney(t, tt.wantSub, res.Subtotal, "subtotal")
			assertMoney(t, tt.wantCGST, res.CGST, "cgst")
			assertMoney(t, tt.wantCGST, res.SGST, "sgst")
			assertMoney(t, tt.wantTotal, res.TotalAmount, "total")

			// total reconciles with its components
			recomputed := res.Subtotal.Add(res.CGST).Add(res.SGST).Add(res.IGST).Add(res.CESS).Sub(res.Discount).Sub(res.TDS)
			assert.True(t, recomputed.Equal(res.TotalAmount))

			for _, line := range res.Lines {
				assert.True(t, line.Amount.Add(line.CGST).Add(line.SGST).Add(line.IGST).Add(line.CESS).Equal(line.Total))
			}
		})
	}
}

func TestCalculate_Idempotent(t *testing.T) {
	items := []models.LineItemInput{item("7", "13.37", "12"), item("0.5", "99.99", "5")}

	first, err := Calculate(items, d("1.11"), d("2.22"))
	require.NoError(t, err)
	second, err := Calculate(items, d("1.11"), d("2.22"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCalculate_ValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		items    []models.LineItemInput
		discount string
		tds      string
		field    string
	}{
		{"no items", nil, "0", "0", "line_items"},
		{"zero quantity", []models.LineItemInput{item("0", "10", "5")}, "0", "0", "line_items[0].quantity"},
		{"negative quantity", []models.LineItemInput{item("-1", "10", "5")}, "0", "0", "line_items[0].quantity"},
		{"negative rate", []models.LineItemInput{item("1", "-10", "5")}, "0", "0", "line_items[0].rate"},
		{"gst above 28", []models.LineItemInput{item("1", "10", "28.01")}, "0", "0", "line_items[0].gst_rate"},
		{"negative gst", []models.LineItemInput{item("1", "10", "-1")}, "0", "0", "line_items[0].gst_rate"},
		{"quantity beyond three places", []models.LineItemInput{item("1.0005", "10", "5")}, "0", "0", "line_items[0].quantity"},
		{"rate beyond two places", []models.LineItemInput{item("3", "0.335", "18")}, "0", "0", "line_items[0].rate"},
		{"gst rate beyond two places", []models.LineItemInput{item("1", "10", "12.125")}, "0", "0", "line_items[0].gst_rate"},
		{"negative discount", []models.LineItemInput{item("1", "10", "5")}, "-1", "0", "discount_amount"},
		{"negative tds", []models.LineItemInput{item("1", "10", "5")}, "0", "-1", "tds_amount"},
		{"negative total", []models.LineItemInput{item("1", "10", "0")}, "8", "3", "total_amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Calculate(tt.items, d(tt.discount), d(tt.tds))
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrValidation)

			var le *common.LedgerError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, tt.field, le.Field)
		})
	}
}

func TestCalculate_StoredPrecisionRecomputesIdentically(t *testing.T) {
	items := []models.LineItemInput{item("2.125", "0.34", "18"), item("0.001", "999.99", "12.5")}
	first, err := Calculate(items, d("0.10"), decimal.Zero)
	require.NoError(t, err)

	bill := &models.Bill{LineItems: make([]models.LineItem, len(items))}
	for i, in := range items {
		bill.LineItems[i] = models.LineItem{
			Description: in.Description,
			Quantity:    in.Quantity.Round(quantityPlaces),
			Unit:        in.Unit,
			Rate:        in.Rate.Round(moneyPlaces),
			GSTRate:     in.GSTRate.Round(moneyPlaces),
		}
	}
	second, err := Calculate(Inputs(bill.LineItems), d("0.10"), decimal.Zero)
	require.NoError(t, err)

	assertMoney(t, first.TotalAmount.StringFixed(2), second.TotalAmount, "recomputed total")
	assertMoney(t, first.Subtotal.StringFixed(2), second.Subtotal, "recomputed subtotal")
}

func TestCalculate_MissingDescription(t *testing.T) {
	in := item("1", "10", "5")
	in.Description = "  "

	_, err := Calculate([]models.LineItemInput{in}, decimal.Zero, decimal.Zero)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestApply(t *testing.T) {
	inputs := []models.LineItemInput{item("2", "100", "18"), item("1", "10", "5")}
	res, err := Calculate(inputs, decimal.Zero, d("6"))
	require.NoError(t, err)

	bill := &models.Bill{LineItems: make([]models.LineItem, 2)}
	Apply(bill, res)

	assertMoney(t, "210.00", bill.Subtotal, "subtotal")
	assertMoney(t, "18.25", bill.CGSTAmount, "cgst")
	assertMoney(t, "6.00", bill.TDSAmount, "tds")
	assertMoney(t, "240.50", bill.TotalAmount, "total")
	assertMoney(t, "10.50", bill.LineItems[1].Total, "second line total")
}

func TestInputs_RoundTrip(t *testing.T) {
	hsn := "8471"
	items := []models.LineItem{{Description: "Laptop", HSNCode: &hsn, Quantity: d("1"), Unit: "pcs", Rate: d("50000"), GSTRate: d("18")}}

	inputs := Inputs(items)
	require.Len(t, inputs, 1)
	assert.Equal(t, "Laptop", inputs[0].Description)
	assert.Equal(t, &hsn, inputs[0].HSNCode)
	assert.True(t, inputs[0].Rate.Equal(d("50000")))
}
