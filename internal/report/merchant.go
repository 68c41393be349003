package report

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	UnknownMerchant = "unknown"
	NoMerchant      = "N/A"
)

// TopMerchant picks the most frequent merchant name. Blank names count as
// UnknownMerchant; an empty input yields NoMerchant.
func TopMerchant(merchants []*string) string {
	g := Group(merchants,
		func(m *string) string {
			if m == nil {
				return UnknownMerchant
			}
			if name := strings.TrimSpace(*m); name != "" {
				return name
			}
			return UnknownMerchant
		},
		func(*string) decimal.Decimal { return decimal.Zero },
	)
	if top, ok := g.MostFrequent(); ok {
		return top
	}
	return NoMerchant
}
