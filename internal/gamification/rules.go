// Package gamification evaluates achievement rules against a user's recent
// expenses and keeps the per-user unlock ledger.
package gamification

import (
	"math"
	"time"
)

const (
	SlugFirstExpense = "first-expense"
	SlugWeekStreak   = "week-streak"
	SlugEcoWarrior   = "eco-warrior"
)

const (
	streakDays   = 7
	ecoThreshold = 3
)

// ExpenseMark is the slice of an expense the rules look at.
type ExpenseMark struct {
	CreatedAt     time.Time
	TransportType *string
}

// Snapshot is the evaluation input: whether the user ever recorded an expense
// and the expenses inside the trailing window.
type Snapshot struct {
	HasAnyExpense bool
	Recent        []ExpenseMark
}

// WindowStart is local midnight six days before now, so the window covers
// today plus the six previous calendar days.
func WindowStart(now time.Time) time.Time {
	d := now.AddDate(0, 0, -(streakDays - 1))
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, now.Location())
}

func inWindow(now time.Time, recent []ExpenseMark) []ExpenseMark {
	start := WindowStart(now)
	out := make([]ExpenseMark, 0, len(recent))
	for _, e := range recent {
		if e.CreatedAt.Before(start) || e.CreatedAt.After(now) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// DistinctDays counts calendar days, in now's location, with at least one
// expense inside the window.
func DistinctDays(now time.Time, recent []ExpenseMark) int {
	days := map[string]struct{}{}
	for _, e := range inWindow(now, recent) {
		days[e.CreatedAt.In(now.Location()).Format("2006-01-02")] = struct{}{}
	}
	return len(days)
}

// EcoCount counts tagged transport expenses inside the window.
func EcoCount(now time.Time, recent []ExpenseMark) int {
	n := 0
	for _, e := range inWindow(now, recent) {
		if e.TransportType != nil {
			n++
		}
	}
	return n
}

// Satisfied lists every rule the snapshot meets, in a fixed order.
func Satisfied(now time.Time, s Snapshot) []string {
	var out []string
	if s.HasAnyExpense {
		out = append(out, SlugFirstExpense)
	}
	if DistinctDays(now, s.Recent) >= streakDays {
		out = append(out, SlugWeekStreak)
	}
	if EcoCount(now, s.Recent) >= ecoThreshold {
		out = append(out, SlugEcoWarrior)
	}
	return out
}

// Evaluate returns the satisfied slugs that are not in the ledger yet.
func Evaluate(now time.Time, s Snapshot, unlocked map[string]bool) []string {
	var out []string
	for _, slug := range Satisfied(now, s) {
		if !unlocked[slug] {
			out = append(out, slug)
		}
	}
	return out
}

// Progress is the 0..100 completion shown next to an achievement.
func Progress(slug string, unlocked bool, now time.Time, s Snapshot) int {
	switch slug {
	case SlugFirstExpense:
		if s.HasAnyExpense {
			return 100
		}
		return 0
	case SlugWeekStreak:
		days := DistinctDays(now, s.Recent)
		if days > streakDays {
			days = streakDays
		}
		return int(math.Round(float64(days) / streakDays * 100))
	default:
		if unlocked {
			return 100
		}
		return 0
	}
}
