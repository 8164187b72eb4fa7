// Package money holds the single rounding policy for presentation.
//
// Domain packages keep full decimal precision. Rounding happens here, and only
// when a value leaves the process (JSON views, CLI output, notification text).
package money

import (
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits shown for currency and kWh.
const Places = 2

// Symbol prefixes every formatted currency amount.
const Symbol = "₹"

// Round applies banker's rounding to two places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(Places)
}

// Float converts a rounded amount for JSON encoding.
func Float(d decimal.Decimal) float64 {
	return Round(d).InexactFloat64()
}

// Format renders an amount with grouping, e.g. ₹4,839.00.
func Format(d decimal.Decimal) string {
	return Symbol + humanize.FormatFloat("#,###.##", Float(d))
}

// FormatWhole renders an amount rounded to whole currency units, e.g. ₹2,847.
func FormatWhole(d decimal.Decimal) string {
	return Symbol + humanize.FormatFloat("#,###.", d.RoundBank(0).InexactFloat64())
}

// FormatKWh renders an energy quantity, e.g. 12.5 kWh.
func FormatKWh(d decimal.Decimal) string {
	return humanize.FtoaWithDigits(Float(d), Places) + " kWh"
}
