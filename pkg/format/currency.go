// Package format renders projection values for display.
package format

import (
	"math"
	"time"

	"github.com/magnatepoint/goal-projection/pkg/constants"
	"github.com/magnatepoint/goal-projection/pkg/datetime"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NotAvailable is shown in place of a value the engine could not project.
const NotAvailable = "n/a"

var (
	printer = message.NewPrinter(language.English)

	// Whole parts above this no longer fit an int64 and are printed without grouping.
	maxGroupedWhole = decimal.NewFromInt(math.MaxInt64)
)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount decimal.Decimal) string {
	if amount.Round(constants.DecimalPlaces).IsNegative() {
		return "-$" + NumericCurrency(amount.Abs())
	}
	return "$" + NumericCurrency(amount.Abs())
}

// NumericCurrency returns amount rounded to cents with thousands separators and no symbol (e.g., "1,234.56").
func NumericCurrency(amount decimal.Decimal) string {
	rounded := amount.Round(constants.DecimalPlaces)
	if rounded.IsZero() {
		return rounded.Abs().StringFixed(constants.DecimalPlaces)
	}
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}

	whole := rounded.Truncate(0)
	if whole.GreaterThan(maxGroupedWhole) {
		return sign + rounded.StringFixed(constants.DecimalPlaces)
	}
	fixed := rounded.StringFixed(constants.DecimalPlaces)
	return sign + printer.Sprintf("%d", whole.IntPart()) + fixed[len(fixed)-constants.DecimalPlaces-1:]
}

// OptionalCurrency formats amount, or NotAvailable when it is nil.
func OptionalCurrency(amount *decimal.Decimal) string {
	if amount == nil {
		return NotAvailable
	}
	return Currency(*amount)
}

// Date formats a nullable date, or NotAvailable when it is nil.
func Date(t *time.Time) string {
	if t == nil {
		return NotAvailable
	}
	return datetime.Format(*t)
}

// Percent renders a percentage with one decimal place (e.g., "25.0%").
func Percent(pct decimal.Decimal) string {
	return pct.StringFixed(1) + "%"
}
