// Package money holds the currency arithmetic shared by the calculation packages.
//
// Amounts are decimal.Decimal values with two implied decimal places. Nothing in here uses
// floating point, so totals never drift the way float sums do.
package money

import (
	"github.com/shopspring/decimal"
)

// Tolerance is the smallest difference between two amounts that is considered a real change.
var Tolerance = decimal.New(1, -2)

var hundred = decimal.NewFromInt(100)

// Sum adds up the given amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Round rounds an amount to whole cents (half away from zero).
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// Percentage returns used/total*100 rounded to two places, or zero when total is not positive.
func Percentage(used, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return used.Div(total).Mul(hundred).Round(2)
}

// PercentOf returns percent% of amount rounded to cents.
func PercentOf(amount, percent decimal.Decimal) decimal.Decimal {
	return Round(amount.Mul(percent).Div(hundred))
}

// Differs reports whether a and b are further apart than tolerance.
func Differs(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().GreaterThan(tolerance)
}

// NonNegative clamps negative amounts to zero.
func NonNegative(amount decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}
