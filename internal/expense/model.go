package expense

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/api"
)

// CategoryRef is the category embedded in expense responses.
type CategoryRef struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Color *string `json:"color"`
	Icon  *string `json:"icon"`
}

type Expense struct {
	ID            int64               `json:"id"`
	UserID        uuid.UUID           `json:"user_id"`
	Amount        decimal.Decimal     `json:"amount"`
	CategoryID    *int64              `json:"category_id"`
	Merchant      *string             `json:"merchant"`
	Description   *string             `json:"description"`
	TransportType *string             `json:"transport_type"`
	CarbonKg      decimal.NullDecimal `json:"carbon_kg"`
	CreatedAt     time.Time           `json:"created_at"`
	Category      *CategoryRef        `json:"category"`
}

type CreateRequest struct {
	Amount        decimal.Decimal  `json:"amount"`
	CategoryID    *int64           `json:"categoryId"`
	Merchant      *string          `json:"merchant"`
	Description   *string          `json:"description"`
	TransportType *string          `json:"transportType"`
	CarbonKg      *decimal.Decimal `json:"carbonKg"`
	CreatedAt     *time.Time       `json:"createdAt"`
}

type Patch struct {
	Amount        *decimal.Decimal  `json:"amount"`
	CategoryID    api.Field[int64]  `json:"categoryId"`
	Merchant      api.Field[string] `json:"merchant"`
	Description   api.Field[string] `json:"description"`
	TransportType api.Field[string] `json:"transportType"`
	CarbonKg      *decimal.Decimal  `json:"carbonKg"`
	CreatedAt     *time.Time        `json:"createdAt"`
}

func (p Patch) empty() bool {
	return p.Amount == nil && !p.CategoryID.Set && !p.Merchant.Set && !p.Description.Set &&
		!p.TransportType.Set && p.CarbonKg == nil && p.CreatedAt == nil
}

// Sort columns accepted by the list endpoint.
var sortColumns = map[string]string{
	"created_at": "e.created_at",
	"amount":     "e.amount",
	"merchant":   "e.merchant",
}

type Filter struct {
	CategoryID *int64
	Start      *time.Time
	End        *time.Time
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
	Search     string
	SortBy     string
	Ascending  bool
	Page       api.Page
}

type Summary struct {
	TotalAmount decimal.Decimal `json:"totalAmount"`
	AvgAmount   decimal.Decimal `json:"avgAmount"`
	Count       int64           `json:"count"`
}
