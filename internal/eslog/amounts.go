package eslog

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Amounts is the VAT split of an invoice total.
type Amounts struct {
	Total decimal.Decimal
	Base  decimal.Decimal
	Tax   decimal.Decimal
	Rate  decimal.Decimal
}

// ComputeAmounts splits a VAT-inclusive total. The base is rounded to cents
// first and the tax is what remains, also rounded to cents, so base + tax
// always reproduces the total.
func ComputeAmounts(total, rate decimal.Decimal) Amounts {
	divisor := decimal.NewFromInt(1).Add(rate.Div(hundred))

	base := total
	if !divisor.IsZero() {
		base = total.Div(divisor).Round(2)
	}

	return Amounts{
		Total: total,
		Base:  base,
		Tax:   total.Sub(base).Round(2),
		Rate:  rate,
	}
}

func formatMoney(d decimal.Decimal) string { return d.StringFixed(2) }
func formatUnitPrice(d decimal.Decimal) string { return d.StringFixed(4) }
func formatPercent(d decimal.Decimal) string { return d.StringFixed(0) }
