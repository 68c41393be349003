package income

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/api"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/expense"
)

type Income struct {
	ID          int64                `json:"id"`
	UserID      uuid.UUID            `json:"user_id"`
	Amount      decimal.Decimal      `json:"amount"`
	CategoryID  *int64               `json:"category_id"`
	Source      *string              `json:"source"`
	Description *string              `json:"description"`
	CreatedAt   time.Time            `json:"created_at"`
	Category    *expense.CategoryRef `json:"category"`
}

// CreateRequest mirrors the POST body. ReceivedAt lands in created_at.
type CreateRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	CategoryID  *int64          `json:"categoryId"`
	Source      *string         `json:"source"`
	Description *string         `json:"description"`
	ReceivedAt  *time.Time      `json:"receivedAt"`
}

type Patch struct {
	Amount      *decimal.Decimal  `json:"amount"`
	CategoryID  api.Field[int64]  `json:"categoryId"`
	Source      api.Field[string] `json:"source"`
	Description api.Field[string] `json:"description"`
	ReceivedAt  *time.Time        `json:"receivedAt"`
}

func (p Patch) empty() bool {
	return p.Amount == nil && !p.CategoryID.Set && !p.Source.Set && !p.Description.Set && p.ReceivedAt == nil
}

var sortColumns = map[string]string{
	"created_at": "i.created_at",
	"amount":     "i.amount",
}

type Filter struct {
	CategoryID *int64
	Start      *time.Time
	End        *time.Time
	SortBy     string
	Ascending  bool
	Page       api.Page
}

// Pagination uses pageSize where expenses use limit.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type Summary struct {
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Count       int64           `json:"count"`
}

// Receipt is a stored response for a replayed Idempotency-Key.
type Receipt struct {
	RequestHash string
	Status      int
	Body        []byte
}

func newPagination(page api.Page, total int64) Pagination {
	p := api.NewPagination(page, total)
	return Pagination{Page: p.Page, PageSize: p.Limit, Total: p.Total, TotalPages: p.TotalPages}
}
