package income

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/api"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/api/apitest"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/apperr"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/auth"
)

type fakeStore struct {
	rows     []Income
	total    int64
	filter   Filter
	created  []CreateRequest
	patched  Patch
	receipts map[string]Receipt
}

func newFakeStore() *fakeStore {
	return &fakeStore{receipts: map[string]Receipt{}}
}

func (f *fakeStore) List(_ context.Context, _ auth.Scope, flt Filter) ([]Income, int64, error) {
	f.filter = flt
	return f.rows, f.total, nil
}

func (f *fakeStore) Create(_ context.Context, scope auth.Scope, req CreateRequest) (Income, error) {
	f.created = append(f.created, req)
	in := Income{ID: int64(len(f.created)), UserID: scope.UserID, Amount: req.Amount, Source: req.Source, CreatedAt: time.Now()}
	if req.ReceivedAt != nil {
		in.CreatedAt = *req.ReceivedAt
	}
	return in, nil
}

func (f *fakeStore) Update(_ context.Context, _ auth.Scope, id int64, p Patch) (Income, error) {
	if id != 1 {
		return Income{}, apperr.NotFound("income not found")
	}
	f.patched = p
	return Income{ID: 1, Amount: decimal.NewFromInt(100), Source: p.Source.Ptr()}, nil
}

func (f *fakeStore) Delete(_ context.Context, _ auth.Scope, id int64) error {
	if id != 1 {
		return apperr.NotFound("income not found")
	}
	return nil
}

func (f *fakeStore) Receipt(_ context.Context, _ auth.Scope, key string) (*Receipt, error) {
	r, ok := f.receipts[key]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (f *fakeStore) Remember(_ context.Context, _ auth.Scope, key string, r Receipt) error {
	f.receipts[key] = r
	return nil
}

func setup() (*fiber.App, *fakeStore) {
	store := newFakeStore()
	h := NewHandler(store, time.UTC)
	app := apitest.NewApp(auth.Identity{}, func(r fiber.Router) {
		r.Get("/incomes", h.List)
		r.Post("/incomes", h.Create)
		r.Patch("/incomes/:id", h.Update)
		r.Delete("/incomes/:id", h.Delete)
	})
	return app, store
}

func TestListFiltersAndPagination(t *testing.T) {
	app, store := setup()
	store.rows = []Income{{ID: 1, Amount: decimal.RequireFromString("1500.50")}, {ID: 2, Amount: decimal.RequireFromString("200")}}
	store.total = 21

	status, body := apitest.Do(t, app, http.MethodGet,
		"/api/incomes?start=2024-05-01T00:00:00Z&end=2024-05-31T23:59:59Z&categoryId=4&sort=amount&order=asc&page=2&pageSize=10", nil)
	require.Equal(t, http.StatusOK, status)

	f := store.filter
	assert.Equal(t, api.Page{Number: 2, Limit: 10}, f.Page)
	assert.Equal(t, int64(4), *f.CategoryID)
	assert.Equal(t, time.Date(2024, 5, 31, 23, 59, 59, 0, time.UTC), *f.End)
	assert.Equal(t, "amount", f.SortBy)
	assert.True(t, f.Ascending)

	pg := body["pagination"].(map[string]any)
	assert.EqualValues(t, 2, pg["page"])
	assert.EqualValues(t, 10, pg["pageSize"])
	assert.EqualValues(t, 21, pg["total"])
	assert.EqualValues(t, 3, pg["totalPages"])
	assert.NotContains(t, pg, "limit")

	sum := body["summary"].(map[string]any)
	assert.Equal(t, "1700.5", sum["totalAmount"])
	assert.EqualValues(t, 21, sum["count"])
}

func TestListDefaults(t *testing.T) {
	app, store := setup()

	status, body := apitest.Do(t, app, http.MethodGet, "/api/incomes", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, api.Page{Number: 1, Limit: 20}, store.filter.Page)
	assert.Equal(t, "created_at", store.filter.SortBy)
	assert.False(t, store.filter.Ascending)
	assert.Equal(t, []any{}, body["data"])

	for _, q := range []string{"sort=source", "order=sideways", "start=ayer", "pageSize=0"} {
		status, _ := apitest.Do(t, app, http.MethodGet, "/api/incomes?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, status, q)
	}
}

func TestCreate(t *testing.T) {
	app, store := setup()

	status, body := apitest.Do(t, app, http.MethodPost, "/api/incomes",
		`{"amount":250000,"source":"  Sueldo ","receivedAt":"2024-05-02T12:00:00Z"}`)
	require.Equal(t, http.StatusCreated, status)
	req := store.created[0]
	assert.Equal(t, "Sueldo", *req.Source)
	assert.Equal(t, time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC), *req.ReceivedAt)
	assert.Equal(t, "Sueldo", body["data"].(map[string]any)["source"])

	status, body = apitest.Do(t, app, http.MethodPost, "/api/incomes", map[string]any{
		"amount":      -3,
		"categoryId":  0,
		"description": strings.Repeat("d", 501),
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.ElementsMatch(t, []string{"amount", "categoryId", "description"}, apitest.Details(body))
}

func post(t *testing.T, app *fiber.App, key, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/incomes", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+apitest.Token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(idempotencyHeader, key)
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return res.StatusCode, out
}

func TestCreateReplaysIdempotencyKey(t *testing.T) {
	app, store := setup()

	status, first := post(t, app, "k-1", `{"amount":100}`)
	require.Equal(t, http.StatusCreated, status)

	status, second := post(t, app, "k-1", `{"amount":100}`)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, first, second)
	assert.Len(t, store.created, 1)

	status, body := post(t, app, "k-1", `{"amount":999}`)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, false, body["success"])

	status, _ = post(t, app, "k-2", `{"amount":999}`)
	assert.Equal(t, http.StatusCreated, status)
	assert.Len(t, store.created, 2)
}

func TestUpdateAndDelete(t *testing.T) {
	app, store := setup()

	status, body := apitest.Do(t, app, http.MethodPatch, "/api/incomes/1", `{"source":"Freelance","description":null}`)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, store.patched.Description.Null)
	assert.Equal(t, "Freelance", body["data"].(map[string]any)["source"])

	status, body = apitest.Do(t, app, http.MethodPatch, "/api/incomes/1", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, []string{"body"}, apitest.Details(body))

	status, _ = apitest.Do(t, app, http.MethodPatch, "/api/incomes/9", `{"amount":1}`)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = apitest.Do(t, app, http.MethodDelete, "/api/incomes/1", nil)
	assert.Equal(t, http.StatusOK, status)
	status, body = apitest.Do(t, app, http.MethodDelete, "/api/incomes/9", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "income not found", body["error"])
}
