// Package money provides the decimal helpers used for currency amounts.
//
// All comparisons between amounts go through a single absolute tolerance so that
// values which differ only by rounding noise are treated as equal.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned by Parse for malformed or non-positive input.
var ErrInvalidAmount = errors.New("amount must be a positive decimal number")

// Tolerance is the absolute difference (0.01) under which two amounts are equal.
var Tolerance = decimal.New(1, -2)

// Zero is the zero amount.
var Zero = decimal.Zero

// ApproxEqual reports whether |a - b| <= Tolerance.
func ApproxEqual(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}

// Exceeds reports whether amount is more than limit plus Tolerance.
func Exceeds(amount, limit decimal.Decimal) bool {
	return amount.GreaterThan(limit.Add(Tolerance))
}

// Cleared reports whether an outstanding amount is within Tolerance of nothing.
func Cleared(remaining decimal.Decimal) bool {
	return !remaining.GreaterThan(Tolerance)
}

// Round rounds to two decimal places (half away from zero).
func Round(a decimal.Decimal) decimal.Decimal {
	return a.Round(2)
}

// Sum adds the given amounts. Sum() is zero.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Parse converts a user-supplied string into a positive amount.
// Both "12.34" and "12,34" are accepted.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// Format renders an amount with two decimals for messages and exports.
func Format(a decimal.Decimal) string {
	return a.StringFixed(2)
}
