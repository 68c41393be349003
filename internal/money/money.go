package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidMoney = errors.New("invalid money amount")
)

var hundred = decimal.NewFromInt(100)

// OrZero coerces a nullable column into a usable amount. NULL becomes zero.
func OrZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}

// Parse reads user-entered amounts ("12.50", "1,200.00"). Anything that is not
// a number coerces to zero rather than failing; callers that need a strict
// parse should validate before calling.
func Parse(s string) decimal.Decimal {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Positive rejects zero and negative amounts.
func Positive(d decimal.Decimal) error {
	if !d.IsPositive() {
		return fmt.Errorf("%w: must be greater than zero", ErrInvalidMoney)
	}
	return nil
}

// Sum folds a slice of amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Round2 rounds to cents for presentation.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Format renders a two-decimal amount with thousands separators: -1,234.50
func Format(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	s := d.StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")
	return sign + withCommas(whole) + "." + frac
}

// Cents converts to an integer number of cents, rounding half away from zero.
func Cents(d decimal.Decimal) int64 {
	return d.Mul(hundred).Round(0).IntPart()
}

func withCommas(digits string) string {
	l := len(digits)
	b := make([]byte, 0, l+l/3)
	for i := 0; i < l; i++ {
		b = append(b, digits[i])
		rem := l - i - 1
		if rem > 0 && rem%3 == 0 {
			b = append(b, ',')
		}
	}
	return string(b)
}
