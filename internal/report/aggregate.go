// Package report folds already-filtered record sets into grouped sums.
package report

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Bucket is one group of an aggregation.
type Bucket[K comparable] struct {
	Key    K
	Count  int
	Amount decimal.Decimal
}

// Groups keeps buckets in the order their keys were first seen.
type Groups[K comparable] struct {
	Buckets []Bucket[K]
	Total   decimal.Decimal
	Count   int

	index map[K]int
}

func NewGroups[K comparable]() *Groups[K] {
	return &Groups[K]{Total: decimal.Zero, index: map[K]int{}}
}

// Add folds one record into its bucket.
func (g *Groups[K]) Add(key K, amount decimal.Decimal) {
	i, ok := g.index[key]
	if !ok {
		i = len(g.Buckets)
		g.index[key] = i
		g.Buckets = append(g.Buckets, Bucket[K]{Key: key, Amount: decimal.Zero})
	}
	g.Buckets[i].Count++
	g.Buckets[i].Amount = g.Buckets[i].Amount.Add(amount)
	g.Total = g.Total.Add(amount)
	g.Count++
}

// Get returns the bucket for key, or a zero bucket.
func (g *Groups[K]) Get(key K) Bucket[K] {
	if i, ok := g.index[key]; ok {
		return g.Buckets[i]
	}
	return Bucket[K]{Key: key, Amount: decimal.Zero}
}

// Group aggregates records by keyFn, summing amountFn.
func Group[R any, K comparable](records []R, keyFn func(R) K, amountFn func(R) decimal.Decimal) *Groups[K] {
	g := NewGroups[K]()
	for _, r := range records {
		g.Add(keyFn(r), amountFn(r))
	}
	return g
}

// SortedByAmount returns a copy of the buckets, largest amount first. Ties keep
// first-seen order.
func (g *Groups[K]) SortedByAmount() []Bucket[K] {
	out := make([]Bucket[K], len(g.Buckets))
	copy(out, g.Buckets)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.GreaterThan(out[j].Amount)
	})
	return out
}

// MostFrequent returns the key with the highest count. Ties go to the key
// seen first. ok is false when nothing was aggregated.
func (g *Groups[K]) MostFrequent() (key K, ok bool) {
	best := -1
	for i, b := range g.Buckets {
		if best < 0 || b.Count > g.Buckets[best].Count {
			best = i
		}
	}
	if best < 0 {
		return key, false
	}
	return g.Buckets[best].Key, true
}
