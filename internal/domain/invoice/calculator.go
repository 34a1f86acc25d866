package invoice

import (
	"github.com/billing/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Totals holds the derived money fields of an invoice
type Totals struct {
	Subtotal   decimal.Decimal
	TaxAmount  decimal.Decimal
	GrandTotal decimal.Decimal
}

// Line is the quantity and rate of one invoice line
type Line struct {
	Quantity decimal.Decimal
	Rate     decimal.Decimal
}

// LineTotal returns quantity x rate rounded to money precision
func LineTotal(quantity, rate decimal.Decimal) decimal.Decimal {
	return shared.RoundMoney(quantity.Mul(rate))
}

// CalculateTotals computes subtotal, tax and grand total from the lines.
// The grand total is clamped at zero when the discount exceeds subtotal plus tax.
func CalculateTotals(lines []Line, taxRate, discount decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(LineTotal(l.Quantity, l.Rate))
	}

	taxAmount := decimal.Zero
	if taxRate.IsPositive() {
		taxAmount = shared.RoundMoney(subtotal.Mul(taxRate).Div(hundred))
	}

	grandTotal := subtotal.Add(taxAmount).Sub(discount)
	if grandTotal.IsNegative() {
		grandTotal = decimal.Zero
	}

	return Totals{
		Subtotal:   shared.RoundMoney(subtotal),
		TaxAmount:  taxAmount,
		GrandTotal: shared.RoundMoney(grandTotal),
	}
}

// LinesOf extracts calculator lines from items
func LinesOf(items []Item) []Line {
	lines := make([]Line, len(items))
	for i := range items {
		lines[i] = Line{Quantity: items[i].Quantity, Rate: items[i].Rate}
	}
	return lines
}
