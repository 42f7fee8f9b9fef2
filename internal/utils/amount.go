package utils

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var amountPattern = regexp.MustCompile(`\d[\d,]*(\.\d+)?`)

// ParseAmount extracts the first number from strings such as "$5,000" or
// "3000-4000 USD". ok is false when no number is present.
func ParseAmount(s string) (decimal.Decimal, bool) {
	m := amountPattern.FindString(s)
	if m == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(m, ",", ""))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
