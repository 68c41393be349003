package budget

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/expense"
)

// Budget is a spending limit for one category in one calendar month.
// SpentAmount is maintained by the database from the owner's expenses.
type Budget struct {
	ID          int64                `json:"id"`
	UserID      uuid.UUID            `json:"user_id"`
	CategoryID  int64                `json:"category_id"`
	Month       int                  `json:"month"`
	Year        int                  `json:"year"`
	LimitAmount decimal.Decimal      `json:"limit_amount"`
	SpentAmount decimal.Decimal      `json:"spent_amount"`
	Category    *expense.CategoryRef `json:"category,omitempty"`
}

// View adds the derived percentages to a budget row.
type View struct {
	Budget
	PercentUsed decimal.Decimal `json:"percent_used"`
	BarPercent  decimal.Decimal `json:"bar_percent"`
}

type Totals struct {
	TotalLimit  decimal.Decimal `json:"total_limit"`
	TotalSpent  decimal.Decimal `json:"total_spent"`
	PercentUsed decimal.Decimal `json:"percent_used"`
}

type UpsertRequest struct {
	CategoryID  int64           `json:"categoryId"`
	LimitAmount decimal.Decimal `json:"limitAmount"`
	Month       *int            `json:"month"`
	Year        *int            `json:"year"`
}

type Patch struct {
	LimitAmount *decimal.Decimal `json:"limitAmount"`
	CategoryID  *int64           `json:"categoryId"`
	Month       *int             `json:"month"`
	Year        *int             `json:"year"`
}

func (p Patch) empty() bool {
	return p.LimitAmount == nil && p.CategoryID == nil && p.Month == nil && p.Year == nil
}
