package documents

import (
	"github.com/shopspring/decimal"
)

// ComputeTotals derives {subtotal, tax, total} from line items and a tax
// percentage. Missing or negative-free inputs coerce to zero; the function is
// pure and never fails, so editors can call it on every change.
//
// Accumulation runs on decimals and rounds half-up to two minor-unit digits at
// the aggregate, so long item lists do not drift the way float64 sums do.
func ComputeTotals(lines []LineItem, taxPct float64) Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		qty := decimal.NewFromFloat(line.Qty)
		rate := decimal.NewFromFloat(line.Rate)
		subtotal = subtotal.Add(qty.Mul(rate))
	}
	subtotal = subtotal.Round(2)

	tax := subtotal.Mul(decimal.NewFromFloat(taxPct)).Div(decimal.NewFromInt(100)).Round(2)
	total := subtotal.Add(tax)

	sub, _ := subtotal.Float64()
	taxOut, _ := tax.Float64()
	tot, _ := total.Float64()
	return Totals{Subtotal: sub, Tax: taxOut, Total: tot}
}
