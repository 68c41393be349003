package gamification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/apperr"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/auth"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/progress"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/report"
)

type Store interface {
	Catalog(ctx context.Context) ([]Achievement, error)
	Unlocks(ctx context.Context, scope auth.Scope) ([]Unlock, error)
	HasAnyExpense(ctx context.Context, scope auth.Scope) (bool, error)
	ExpensesSince(ctx context.Context, scope auth.Scope, since time.Time) ([]ExpenseMark, error)
	// Unlock records one ledger row. inserted is false when the row existed.
	Unlock(ctx context.Context, scope auth.Scope, achievementID int64, at time.Time) (inserted bool, err error)
}

// Notifier is told about new unlocks. Failures never reach the caller.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, text string)
}

type Service struct {
	Store    Store
	Notifier Notifier
	Now      func() time.Time
	Location *time.Location
}

func NewService(store Store, notifier Notifier, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{Store: store, Notifier: notifier, Now: time.Now, Location: loc}
}

func (s *Service) now() time.Time {
	return s.Now().In(s.Location)
}

func (s *Service) snapshot(ctx context.Context, scope auth.Scope, now time.Time) (Snapshot, error) {
	hasAny, err := s.Store.HasAnyExpense(ctx, scope)
	if err != nil {
		return Snapshot{}, err
	}
	recent, err := s.Store.ExpensesSince(ctx, scope, WindowStart(now))
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{HasAnyExpense: hasAny, Recent: recent}, nil
}

// Check evaluates every rule and records the newly satisfied ones.
func (s *Service) Check(ctx context.Context, scope auth.Scope) ([]Unlocked, error) {
	now := s.now()

	snap, err := s.snapshot(ctx, scope, now)
	if err != nil {
		return nil, err
	}
	catalog, err := s.Store.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	unlocks, err := s.Store.Unlocks(ctx, scope)
	if err != nil {
		return nil, err
	}

	bySlug := make(map[string]Achievement, len(catalog))
	slugByID := make(map[int64]string, len(catalog))
	for _, a := range catalog {
		bySlug[a.Slug] = a
		slugByID[a.ID] = a.Slug
	}
	done := make(map[string]bool, len(unlocks))
	for _, u := range unlocks {
		done[slugByID[u.AchievementID]] = true
	}

	out := make([]Unlocked, 0)
	var titles []string
	for _, slug := range Evaluate(now, snap, done) {
		a, ok := bySlug[slug]
		if !ok {
			continue
		}
		inserted, err := s.Store.Unlock(ctx, scope, a.ID, now)
		if err != nil {
			if apperr.IsUniqueViolation(err) {
				continue
			}
			return nil, err
		}
		if !inserted {
			continue
		}
		out = append(out, Unlocked{Slug: slug, AchievementID: a.ID})
		titles = append(titles, a.Title)
	}

	if len(out) > 0 {
		logx.WithContext(ctx).Infow("achievements unlocked",
			logx.Field("user_id", scope.UserID.String()),
			logx.Field("count", len(out)),
		)
		if s.Notifier != nil {
			s.Notifier.Notify(ctx, scope.UserID, fmt.Sprintf("New achievement unlocked: %s", strings.Join(titles, ", ")))
		}
	}
	return out, nil
}

// List returns the catalog with the caller's unlock state and progress.
func (s *Service) List(ctx context.Context, scope auth.Scope) ([]AchievementView, Stats, error) {
	now := s.now()

	catalog, err := s.Store.Catalog(ctx)
	if err != nil {
		return nil, Stats{}, err
	}
	unlocks, err := s.Store.Unlocks(ctx, scope)
	if err != nil {
		return nil, Stats{}, err
	}
	snap, err := s.snapshot(ctx, scope, now)
	if err != nil {
		return nil, Stats{}, err
	}

	at := make(map[int64]time.Time, len(unlocks))
	for _, u := range unlocks {
		at[u.AchievementID] = u.UnlockedAt
	}

	views := make([]AchievementView, 0, len(catalog))
	for _, a := range catalog {
		v := AchievementView{Achievement: a}
		if t, ok := at[a.ID]; ok {
			t := t
			v.Unlocked = true
			v.UnlockedAt = &t
		}
		v.Progress = Progress(a.Slug, v.Unlocked, now, snap)
		views = append(views, v)
	}

	return views, statsOf(views, len(unlocks)), nil
}

func statsOf(views []AchievementView, unlockedCount int) Stats {
	points := report.Group(views,
		func(v AchievementView) bool { return v.Unlocked },
		func(v AchievementView) decimal.Decimal { return decimal.NewFromInt(int64(v.Points)) },
	)
	unlocked := points.Get(true).Amount

	return Stats{
		Total:    len(views),
		Unlocked: unlockedCount,
		Points: PointStats{
			Total:      points.Total.IntPart(),
			Unlocked:   unlocked.IntPart(),
			Percentage: progress.Percent(unlocked, points.Total).Round(2),
		},
	}
}
