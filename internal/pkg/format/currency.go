package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency renders amounts as "<value> <symbol>", grouping the integer part in threes.
// It is a plain value, safe to copy and share.
type Currency struct {
	Symbol    string
	Precision int32
	Decimal   string
	Thousands string
}

// Kr is the format used for all report output: 1 234 567.89 Kr
var Kr = Currency{
	Symbol:    "Kr",
	Precision: 2,
	Decimal:   ".",
	Thousands: " ",
}

func (c Currency) Format(amount decimal.Decimal) string {
	fixed := amount.Abs().StringFixed(c.Precision)

	intPart, fracPart := fixed, ""
	if i := strings.IndexByte(fixed, '.'); i >= 0 {
		intPart, fracPart = fixed[:i], fixed[i+1:]
	}

	var b strings.Builder
	if amount.Round(c.Precision).IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(c.Thousands)
		}
		b.WriteRune(r)
	}
	if fracPart != "" {
		b.WriteString(c.Decimal)
		b.WriteString(fracPart)
	}
	if c.Symbol != "" {
		b.WriteByte(' ')
		b.WriteString(c.Symbol)
	}
	return b.String()
}
