// Package format renders money, percentages and year counts for display.
package format

import (
	"strings"

	"github.com/iwvelando/project-appraisal/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// NotANumber is shown in place of an amount that is NaN or infinite.
const NotANumber = "n/a"

// Currency returns amount rounded to decimals places with thousands
// separators followed by the unit (e.g., "-1,383,857,262 VND").
func Currency(amount float64, unit string, decimals int32) string {
	formatted := NumericCurrency(amount, decimals)
	if unit == "" || formatted == NotANumber {
		return formatted
	}
	return formatted + " " + unit
}

// NumericCurrency returns the grouped number without a unit (e.g., "-1,234.56").
func NumericCurrency(amount float64, decimals int32) string {
	if !mathutil.IsFinite(amount) {
		return NotANumber
	}
	if decimals < 0 {
		decimals = 0
	}
	rounded := decimal.NewFromFloat(amount).Round(decimals)

	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}
	return sign + groupThousands(rounded.StringFixed(decimals))
}

func groupThousands(formatted string) string {
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	if len(parts) == 2 {
		return intPart + "." + parts[1]
	}
	return intPart
}
