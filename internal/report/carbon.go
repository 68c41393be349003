package report

import (
	"github.com/shopspring/decimal"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/money"
)

// CarbonRecord is the slice of an expense the carbon report needs.
type CarbonRecord struct {
	CategoryID   *int64
	CategoryName *string
	CarbonKg     decimal.NullDecimal
}

type CategoryCarbon struct {
	CategoryID   int64           `json:"category_id"`
	CategoryName *string         `json:"category_name,omitempty"`
	CarbonKg     decimal.Decimal `json:"carbon_kg"`
	Count        int             `json:"count"`
}

// Carbon sums carbon kg per category, heaviest first. Expenses without a
// category land in category 0.
func Carbon(records []CarbonRecord) (decimal.Decimal, []CategoryCarbon) {
	names := map[int64]*string{}
	g := Group(records,
		func(r CarbonRecord) int64 {
			var id int64
			if r.CategoryID != nil {
				id = *r.CategoryID
			}
			if _, seen := names[id]; !seen {
				names[id] = r.CategoryName
			}
			return id
		},
		func(r CarbonRecord) decimal.Decimal { return money.OrZero(r.CarbonKg) },
	)

	sorted := g.SortedByAmount()
	out := make([]CategoryCarbon, 0, len(sorted))
	for _, b := range sorted {
		out = append(out, CategoryCarbon{
			CategoryID:   b.Key,
			CategoryName: names[b.Key],
			CarbonKg:     b.Amount,
			Count:        b.Count,
		})
	}
	return g.Total, out
}
