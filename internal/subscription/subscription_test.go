package subscription

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/api/apitest"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/apperr"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/auth"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/schedule"
)

type memStore struct {
	next   int64
	rows   map[int64]Subscription
	active *bool
	gets   int
}

func newMemStore() *memStore { return &memStore{rows: map[int64]Subscription{}} }

func (m *memStore) List(_ context.Context, _ auth.Scope, active *bool) ([]Subscription, error) {
	m.active = active
	out := []Subscription{}
	for id := int64(1); id <= m.next; id++ {
		if s, ok := m.rows[id]; ok && (active == nil || s.Active == *active) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) Get(_ context.Context, _ auth.Scope, id int64) (Subscription, error) {
	m.gets++
	s, ok := m.rows[id]
	if !ok {
		return Subscription{}, apperr.NotFound("subscription not found")
	}
	return s, nil
}

func (m *memStore) Create(_ context.Context, _ auth.Scope, n New) (Subscription, error) {
	m.next++
	s := Subscription{
		ID: m.next, Amount: n.Amount, Merchant: n.Merchant, EveryN: n.EveryN, Unit: n.Unit,
		StartDate: n.StartDate, NextChargeAt: n.NextChargeAt, Active: n.Active,
	}
	m.rows[s.ID] = s
	return s, nil
}

func (m *memStore) Update(_ context.Context, _ auth.Scope, id int64, p Patch, next *Schedule) (Subscription, error) {
	s, ok := m.rows[id]
	if !ok {
		return Subscription{}, apperr.NotFound("subscription not found")
	}
	if p.Amount != nil {
		s.Amount = *p.Amount
	}
	if p.Active != nil {
		s.Active = *p.Active
	}
	if p.Merchant.Set {
		s.Merchant = p.Merchant.Ptr()
	}
	if next != nil {
		s.StartDate, s.EveryN, s.Unit, s.NextChargeAt = next.StartDate, next.EveryN, next.Unit, next.NextChargeAt
	}
	m.rows[id] = s
	return s, nil
}

func (m *memStore) Delete(_ context.Context, _ auth.Scope, id int64) error {
	if _, ok := m.rows[id]; !ok {
		return apperr.NotFound("subscription not found")
	}
	delete(m.rows, id)
	return nil
}

var fixedNow = time.Date(2024, 5, 10, 8, 30, 0, 0, time.UTC)

func setup() (*fiber.App, *memStore) {
	store := newMemStore()
	h := NewHandler(store)
	h.Now = func() time.Time { return fixedNow }
	app := apitest.NewApp(auth.Identity{}, func(r fiber.Router) {
		r.Get("/subscriptions", h.List)
		r.Post("/subscriptions", h.Create)
		r.Patch("/subscriptions/:id", h.Update)
		r.Delete("/subscriptions/:id", h.Delete)
	})
	return app, store
}

func TestCreateClampsMonthEnd(t *testing.T) {
	app, store := setup()

	status, body := apitest.Do(t, app, http.MethodPost, "/api/subscriptions",
		`{"amount":9.99,"merchant":"Spotify","unit":"month","startDate":"2024-01-31T00:00:00Z"}`)
	require.Equal(t, http.StatusCreated, status)
	s := store.rows[1]
	assert.Equal(t, 1, s.EveryN)
	assert.True(t, s.Active)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), s.NextChargeAt)
	assert.Equal(t, "2024-02-29T00:00:00Z", body["data"].(map[string]any)["next_charge_at"])

	_, _ = apitest.Do(t, app, http.MethodPost, "/api/subscriptions",
		`{"amount":5,"unit":"month","startDate":"2023-01-31T00:00:00Z"}`)
	assert.Equal(t, time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC), store.rows[2].NextChargeAt)
}

func TestCreateDefaultsStartToNow(t *testing.T) {
	app, store := setup()

	status, _ := apitest.Do(t, app, http.MethodPost, "/api/subscriptions",
		`{"amount":1200,"everyN":2,"unit":" Week ","active":false}`)
	require.Equal(t, http.StatusCreated, status)
	s := store.rows[1]
	assert.Equal(t, fixedNow, s.StartDate)
	assert.Equal(t, schedule.Week, s.Unit)
	assert.Equal(t, fixedNow.AddDate(0, 0, 14), s.NextChargeAt)
	assert.False(t, s.Active)
}

func TestCreateValidation(t *testing.T) {
	app, _ := setup()

	status, body := apitest.Do(t, app, http.MethodPost, "/api/subscriptions",
		`{"amount":0,"everyN":0,"unit":"fortnight"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.ElementsMatch(t, []string{"amount", "everyN", "unit"}, apitest.Details(body))
}

func TestListActiveFilter(t *testing.T) {
	app, store := setup()
	store.rows[1] = Subscription{ID: 1, Active: true, Amount: decimal.NewFromInt(1)}
	store.rows[2] = Subscription{ID: 2, Active: false, Amount: decimal.NewFromInt(2)}
	store.next = 2

	status, body := apitest.Do(t, app, http.MethodGet, "/api/subscriptions?active=false", nil)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, store.active)
	assert.False(t, *store.active)
	assert.Len(t, body["data"], 1)

	_, body = apitest.Do(t, app, http.MethodGet, "/api/subscriptions", nil)
	assert.Nil(t, store.active)
	assert.Len(t, body["data"], 2)

	status, _ = apitest.Do(t, app, http.MethodGet, "/api/subscriptions?active=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestReschedule(t *testing.T) {
	current := Subscription{
		StartDate:    time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		EveryN:       1,
		Unit:         schedule.Month,
		NextChargeAt: time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
	}
	three := 3
	year := "year"
	pinned := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	start := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		patch Patch
		want  time.Time
	}{
		{"every n", Patch{EveryN: &three}, time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)},
		{"unit", Patch{Unit: &year}, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"start clamps", Patch{StartDate: &start}, time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)},
		{"pinned wins", Patch{EveryN: &three, NextChargeAt: &pinned}, pinned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reschedule(current, tt.patch).NextChargeAt)
		})
	}
}

func TestUpdate(t *testing.T) {
	app, store := setup()
	store.rows[1] = Subscription{
		ID: 1, Amount: decimal.NewFromInt(10), EveryN: 1, Unit: schedule.Month, Active: true,
		StartDate:    time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		NextChargeAt: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
	}
	store.next = 1

	status, _ := apitest.Do(t, app, http.MethodPatch, "/api/subscriptions/1", `{"active":false}`)
	require.Equal(t, http.StatusOK, status)
	assert.Zero(t, store.gets)
	assert.False(t, store.rows[1].Active)

	status, body := apitest.Do(t, app, http.MethodPatch, "/api/subscriptions/1", `{"everyN":2}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, store.gets)
	assert.Equal(t, "2024-03-31T00:00:00Z", body["data"].(map[string]any)["next_charge_at"])

	status, body = apitest.Do(t, app, http.MethodPatch, "/api/subscriptions/1", `{"unit":"hour"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, []string{"unit"}, apitest.Details(body))

	status, _ = apitest.Do(t, app, http.MethodPatch, "/api/subscriptions/9", `{"everyN":2}`)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = apitest.Do(t, app, http.MethodDelete, "/api/subscriptions/1", nil)
	assert.Equal(t, http.StatusOK, status)
}
