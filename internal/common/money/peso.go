// internal/common/money/peso.go
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatPeso renders an amount as ₱75,000 or ₱1,234.50. Centavos are shown
// only when non-zero.
func FormatPeso(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	whole := d.Truncate(0)
	out := sign + "₱" + groupThousands(whole.String())
	if !d.Sub(whole).IsZero() {
		out += d.StringFixed(2)[len(whole.String()):]
	}
	return out
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Peso formats a float amount.
func Peso(amount float64) string {
	return FormatPeso(decimal.NewFromFloat(amount))
}
