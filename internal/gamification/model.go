package gamification

import (
	"time"

	"github.com/shopspring/decimal"
)

type Achievement struct {
	ID          int64  `json:"id"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Points      int    `json:"points"`
}

type Unlock struct {
	AchievementID int64
	UnlockedAt    time.Time
}

type AchievementView struct {
	Achievement
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlockedAt"`
	Progress   int        `json:"progress"`
}

type PointStats struct {
	Total      int64           `json:"total"`
	Unlocked   int64           `json:"unlocked"`
	Percentage decimal.Decimal `json:"percentage"`
}

type Stats struct {
	Total    int        `json:"total"`
	Unlocked int        `json:"unlocked"`
	Points   PointStats `json:"points"`
}

type Unlocked struct {
	Slug          string `json:"slug"`
	AchievementID int64  `json:"achievementId"`
}
