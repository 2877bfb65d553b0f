package lineitem

import (
	"github.com/google/uuid"
	"github.com/sangkips/lineform-api/pkg/numeric"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// RateTable maps a currency code to its multiplier against the base currency
type RateTable interface {
	Rate(code string) decimal.Decimal
}

// Rates is a plain RateTable. Unknown codes and non-positive values count as 1.
type Rates map[string]decimal.Decimal

func (r Rates) Rate(code string) decimal.Decimal {
	if v, ok := r[code]; ok && v.IsPositive() {
		return v
	}
	return one
}

// Breakdown holds every intermediate value of a line total
type Breakdown struct {
	Subtotal        decimal.Decimal
	Tax             decimal.Decimal
	SubtotalWithTax decimal.Decimal
	Discount        decimal.Decimal
	Total           decimal.Decimal
}

// Calculate prices one entry. Tax is applied first and a percent discount is
// taken from the tax-inclusive subtotal. The total never drops below zero.
func Calculate(e Entry, cfg Config, rates RateTable) Breakdown {
	if !cfg.RequirePrice {
		return Breakdown{}
	}

	var b Breakdown
	b.Subtotal = numeric.Parse(e.Quantity).
		Mul(numeric.Parse(e.UnitPrice)).
		Mul(rates.Rate(e.Currency))

	if e.TaxMode.IsPercent() {
		b.Tax = numeric.Percent(b.Subtotal, numeric.Parse(e.TaxPercent))
	} else {
		b.Tax = numeric.Parse(e.TaxAmount)
	}
	b.SubtotalWithTax = b.Subtotal.Add(b.Tax)

	if e.DiscountMode.IsPercent() {
		b.Discount = numeric.Percent(b.SubtotalWithTax, numeric.Parse(e.DiscountPercent))
	} else {
		b.Discount = numeric.Parse(e.DiscountAmount)
	}

	b.Total = decimal.Max(decimal.Zero, b.SubtotalWithTax.Sub(b.Discount))
	return b
}

// CalcTotal returns the unrounded total of one entry in base currency
func CalcTotal(e Entry, cfg Config, rates RateTable) decimal.Decimal {
	return Calculate(e, cfg, rates).Total
}

// Summary aggregates line totals per group and overall
type Summary struct {
	Lines  map[uuid.UUID]decimal.Decimal
	Groups map[string]decimal.Decimal
	Grand  decimal.Decimal
}

// Summarize computes every line, group and grand total without rounding
func Summarize(groups []Group, cfg Config, rates RateTable) Summary {
	s := Summary{
		Lines:  make(map[uuid.UUID]decimal.Decimal),
		Groups: make(map[string]decimal.Decimal, len(groups)),
		Grand:  decimal.Zero,
	}
	for _, g := range groups {
		groupTotal := decimal.Zero
		for _, e := range g.Entries {
			total := CalcTotal(e, cfg, rates)
			s.Lines[e.ID] = total
			groupTotal = groupTotal.Add(total)
		}
		s.Groups[g.ID] = groupTotal
		s.Grand = s.Grand.Add(groupTotal)
	}
	return s
}
