// Package progress derives completion percentages for budgets and savings goals.
package progress

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrNonPositiveContribution = errors.New("contribution must be greater than zero")

var (
	hundred = decimal.NewFromInt(100)
)

// Percent is numerator/denominator*100, or 0 when the denominator is not
// positive. The result is not clamped and may exceed 100.
func Percent(numerator, denominator decimal.Decimal) decimal.Decimal {
	if !denominator.IsPositive() {
		return decimal.Zero
	}
	return numerator.Div(denominator).Mul(hundred)
}

// Clamped caps a percentage at 100 for progress bars.
func Clamped(percent decimal.Decimal) decimal.Decimal {
	return decimal.Min(hundred, percent)
}

// Reached reports numerator >= denominator.
func Reached(numerator, denominator decimal.Decimal) bool {
	return numerator.GreaterThanOrEqual(denominator)
}

// Contribute adds amount to saved. Non-positive amounts are rejected and
// saved is returned unchanged.
func Contribute(saved, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return saved, ErrNonPositiveContribution
	}
	return saved.Add(amount), nil
}

// Summary is the percent view the handlers serialize.
type Summary struct {
	Percent    decimal.Decimal `json:"percent"`
	BarPercent decimal.Decimal `json:"bar_percent"`
	Reached    bool            `json:"reached"`
}

func Of(numerator, denominator decimal.Decimal) Summary {
	p := Percent(numerator, denominator)
	return Summary{
		Percent:    p.Round(2),
		BarPercent: Clamped(p).Round(2),
		Reached:    Reached(numerator, denominator),
	}
}
