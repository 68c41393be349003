package recommendation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TTL is how long generated recommendations stay visible.
const TTL = 7 * 24 * time.Hour

var focuses = map[string]bool{"savings": true, "eco": true, "transport": true, "health": true}

type Recommendation struct {
	ID               int64           `json:"id"`
	UserID           uuid.UUID       `json:"user_id"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Category         string          `json:"category"`
	PotentialSavings decimal.Decimal `json:"potential_savings"`
	CarbonReduction  decimal.Decimal `json:"carbon_reduction"`
	ActionSteps      []string        `json:"action_steps"`
	Priority         string          `json:"priority"`
	Seen             bool            `json:"seen"`
	CreatedAt        time.Time       `json:"created_at"`
	ExpiresAt        *time.Time      `json:"expires_at"`
}

type SeenRequest struct {
	Seen *bool `json:"seen"`
}
