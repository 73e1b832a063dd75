package note

import (
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// Totals holds the derived amounts of a delivery note at full precision.
// Rounding happens only when the amounts are formatted for display.
type Totals struct {
	SubTotal     float64 `json:"subTotal"`
	VATAmount    float64 `json:"vatAmount"`
	TotalWithVAT float64 `json:"totalWithVat"`
}

// MarshalJSON writes non-finite amounts as null.
func (t Totals) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		SubTotal     *float64 `json:"subTotal"`
		VATAmount    *float64 `json:"vatAmount"`
		TotalWithVAT *float64 `json:"totalWithVat"`
	}{jsonAmount(t.SubTotal), jsonAmount(t.VATAmount), jsonAmount(t.TotalWithVAT)})
}

func jsonAmount(v float64) *float64 {
	if !isFinite(v) {
		return nil
	}
	return &v
}

// FormattedTotals holds the display strings of [Totals], fixed to two decimals.
type FormattedTotals struct {
	SubTotal     string `json:"subTotal"`
	VATAmount    string `json:"vatAmount"`
	TotalWithVAT string `json:"totalWithVat"`
}

// ComputeTotals derives the subtotal, VAT amount and total of n.
//
//	subTotal     = Σ quantity × unitPrice
//	vatAmount    = subTotal × vatRate / 100
//	totalWithVat = subTotal + vatAmount
//
// An empty item list yields zero for all three amounts.
func ComputeTotals(n DeliveryNote) Totals {
	var sub float64
	for _, it := range n.Items {
		sub += LineTotal(it)
	}
	vat := sub * (n.VATRate / 100)
	return Totals{
		SubTotal:     sub,
		VATAmount:    vat,
		TotalWithVAT: sub + vat,
	}
}

// LineTotal returns quantity × unitPrice for one item.
func LineTotal(it LineItem) float64 {
	return it.Quantity * it.UnitPrice
}

// Formatted returns the display form of t.
func (t Totals) Formatted() FormattedTotals {
	return FormattedTotals{
		SubTotal:     FormatAmount(t.SubTotal),
		VATAmount:    FormatAmount(t.VATAmount),
		TotalWithVAT: FormatAmount(t.TotalWithVAT),
	}
}

// FormatAmount renders a currency amount with exactly two decimals,
// rounding half away from zero (15.9594 → "15.96", 0.125 → "0.13").
// Amounts that overflowed to ±Inf render as "+Inf" or "-Inf".
func FormatAmount(v float64) string {
	if !isFinite(v) {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

// FormatNumber renders a quantity or rate in its shortest form
// (1 → "1", 2.5 → "2.5").
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
