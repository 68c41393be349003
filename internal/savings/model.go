package savings

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/progress"
)

type Goal struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	SavedAmount  decimal.Decimal `json:"saved_amount"`
	Deadline     *time.Time      `json:"deadline"`
	CreatedAt    time.Time       `json:"created_at"`
}

// View is a goal with its completion state.
type View struct {
	Goal
	Progress   decimal.Decimal `json:"progress"`
	BarPercent decimal.Decimal `json:"bar_percent"`
	Reached    bool            `json:"reached"`
}

func ViewOf(g Goal) View {
	p := progress.Of(g.SavedAmount, g.TargetAmount)
	return View{Goal: g, Progress: p.Percent, BarPercent: p.BarPercent, Reached: p.Reached}
}

type CreateRequest struct {
	Name         string          `json:"name"`
	TargetAmount decimal.Decimal `json:"targetAmount"`
	Deadline     *time.Time      `json:"deadline"`
}

type ContributeRequest struct {
	GoalID    int64           `json:"goalId"`
	AddAmount decimal.Decimal `json:"addAmount"`
}

type Patch struct {
	Name         *string          `json:"name"`
	TargetAmount *decimal.Decimal `json:"targetAmount"`
	Deadline     *time.Time       `json:"deadline"`
}

func (p Patch) empty() bool {
	return p.Name == nil && p.TargetAmount == nil && p.Deadline == nil
}
