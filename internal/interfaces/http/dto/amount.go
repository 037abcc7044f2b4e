package dto

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatAmount renders an amount for display: rounded half away from zero to
// two places, with English digit grouping. Example: 1234567.125 -> "1,234,567.13"
func FormatAmount(d decimal.Decimal) string {
	rounded := d.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}

	intPart, fracPart, _ := strings.Cut(rounded.StringFixed(2), ".")
	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		// Beyond int64 the integer part is shown ungrouped
		return sign + intPart + "." + fracPart
	}

	p := message.NewPrinter(language.English)
	return sign + p.Sprintf("%d", whole) + "." + fracPart
}
