package subscription

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/api"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/expense"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/schedule"
)

// Subscription is a recurring charge. NextChargeAt is StartDate advanced by
// one cadence step unless the client pinned it explicitly.
type Subscription struct {
	ID           int64                `json:"id"`
	UserID       uuid.UUID            `json:"user_id"`
	Amount       decimal.Decimal      `json:"amount"`
	Merchant     *string              `json:"merchant"`
	Description  *string              `json:"description"`
	CategoryID   *int64               `json:"category_id"`
	EveryN       int                  `json:"every_n"`
	Unit         schedule.Unit        `json:"unit"`
	StartDate    time.Time            `json:"start_date"`
	NextChargeAt time.Time            `json:"next_charge_at"`
	Active       bool                 `json:"active"`
	CreatedAt    time.Time            `json:"created_at"`
	Category     *expense.CategoryRef `json:"category"`
}

type CreateRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Merchant    *string         `json:"merchant"`
	Description *string         `json:"description"`
	CategoryID  *int64          `json:"categoryId"`
	EveryN      *int            `json:"everyN"`
	Unit        string          `json:"unit"`
	StartDate   *time.Time      `json:"startDate"`
	Active      *bool           `json:"active"`
}

// New is a validated subscription ready to insert.
type New struct {
	Amount       decimal.Decimal
	Merchant     *string
	Description  *string
	CategoryID   *int64
	EveryN       int
	Unit         schedule.Unit
	StartDate    time.Time
	NextChargeAt time.Time
	Active       bool
}

type Patch struct {
	Amount       *decimal.Decimal  `json:"amount"`
	Merchant     api.Field[string] `json:"merchant"`
	Description  api.Field[string] `json:"description"`
	CategoryID   api.Field[int64]  `json:"categoryId"`
	EveryN       *int              `json:"everyN"`
	Unit         *string           `json:"unit"`
	StartDate    *time.Time        `json:"startDate"`
	NextChargeAt *time.Time        `json:"nextChargeAt"`
	Active       *bool             `json:"active"`
}

func (p Patch) empty() bool {
	return p.Amount == nil && !p.Merchant.Set && !p.Description.Set && !p.CategoryID.Set &&
		p.EveryN == nil && p.Unit == nil && p.StartDate == nil && p.NextChargeAt == nil && p.Active == nil
}

func (p Patch) reschedules() bool {
	return p.StartDate != nil || p.EveryN != nil || p.Unit != nil
}

// Schedule is the cadence part of a subscription, written as one unit.
type Schedule struct {
	StartDate    time.Time
	EveryN       int
	Unit         schedule.Unit
	NextChargeAt time.Time
}

// Reschedule merges the cadence fields of p over current. The next charge is
// recomputed from the start date unless p pins it.
func Reschedule(current Subscription, p Patch) Schedule {
	s := Schedule{StartDate: current.StartDate, EveryN: current.EveryN, Unit: current.Unit, NextChargeAt: current.NextChargeAt}
	if p.StartDate != nil {
		s.StartDate = *p.StartDate
	}
	if p.EveryN != nil {
		s.EveryN = *p.EveryN
	}
	if p.Unit != nil {
		if u, err := schedule.ParseUnit(*p.Unit); err == nil {
			s.Unit = u
		}
	}
	switch {
	case p.NextChargeAt != nil:
		s.NextChargeAt = *p.NextChargeAt
	case p.reschedules():
		s.NextChargeAt = schedule.Next(s.StartDate, s.EveryN, s.Unit)
	}
	return s
}
