package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrZero(t *testing.T) {
	assert.True(t, OrZero(decimal.NullDecimal{}).IsZero())
	assert.Equal(t, "2.5", OrZero(decimal.NewNullDecimal(decimal.RequireFromString("2.5"))).String())
}

func TestParse(t *testing.T) {
	tests := map[string]string{
		"12.50":    "12.5",
		" 1,200 ":  "1200",
		"":         "0",
		"abc":      "0",
		"-3":       "-3",
		"0.000001": "0.000001",
	}
	for in, want := range tests {
		assert.Equal(t, want, Parse(in).String(), "input %q", in)
	}
}

func TestPositive(t *testing.T) {
	assert.NoError(t, Positive(decimal.RequireFromString("0.01")))
	assert.ErrorIs(t, Positive(decimal.Zero), ErrInvalidMoney)
	assert.ErrorIs(t, Positive(decimal.NewFromInt(-5)), ErrInvalidMoney)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "0.00", Format(decimal.Zero))
	assert.Equal(t, "999.90", Format(decimal.RequireFromString("999.9")))
	assert.Equal(t, "1,234.50", Format(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "-1,000,000.00", Format(decimal.NewFromInt(-1000000)))
}

func TestSumAndCents(t *testing.T) {
	total := Sum(decimal.RequireFromString("0.1"), decimal.RequireFromString("0.2"))
	assert.True(t, total.Equal(decimal.RequireFromString("0.3")))
	assert.Equal(t, int64(30), Cents(total))
	assert.Equal(t, int64(0), Cents(Sum()))
}
