// Package mathutil provides common decimal currency helpers.
package mathutil

import (
	"github.com/magnatepoint/goal-projection/pkg/constants"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(constants.PercentageMultiplier)

// Round rounds a value to two decimals, i.e. to represent real currency.
// The engine never rounds internally; this is for presentation and comparisons
// in tests.
func Round(val decimal.Decimal) decimal.Decimal {
	return val.Round(constants.DecimalPlaces)
}

// Min returns the minimum of two decimal values
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Max returns the maximum of two decimal values
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// ClampZero returns val, or zero when val is negative.
func ClampZero(val decimal.Decimal) decimal.Decimal {
	return Max(val, decimal.Zero)
}

// CeilDiv returns ceil(numerator / denominator) for a non-negative numerator
// and a positive denominator. The quotient is computed exactly, so no rounding
// of a repeating fraction can push the result across an integer boundary. The
// result is left as a decimal since it can exceed the int64 range.
func CeilDiv(numerator, denominator decimal.Decimal) decimal.Decimal {
	q, r := numerator.QuoRem(denominator, 0)
	if r.IsPositive() {
		return q.Add(decimal.NewFromInt(1))
	}
	return q
}

// CalculatePercentage calculates what percentage value is of total
func CalculatePercentage(value, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return value.Div(total).Mul(hundred)
}

// ApplyPercentage applies a whole-number percentage to a value
func ApplyPercentage(value decimal.Decimal, percentage int) decimal.Decimal {
	return value.Mul(decimal.NewFromInt(int64(percentage))).Div(hundred)
}

// MustParse parses a decimal string and panics on error.
// This is intended for use in tests where the value is known to be valid.
func MustParse(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Ptr returns a pointer to a copy of d.
func Ptr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
