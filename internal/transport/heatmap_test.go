package transport

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
	"github.com/ishantswami13-crypto/greenledger-backend/internal/auth"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/report"
)

type fakeStore struct {
	from    time.Time
	records []report.TransportRecord
}

func (f *fakeStore) Since(_ context.Context, _ auth.Scope, from time.Time) ([]report.TransportRecord, error) {
	f.from = from
	return f.records, nil
}

func TestWindowStart(t *testing.T) {
	now := time.Date(2024, 5, 31, 17, 45, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 24, 0, 0, 0, 0, time.UTC), WindowStart(now, 7))
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), WindowStart(now, 90))
}

func TestHeatmapHandler(t *testing.T) {
	bus := "bus"
	store := &fakeStore{records: []report.TransportRecord{
		{Amount: decimal.NewNullDecimal(decimal.NewFromInt(500)), CreatedAt: time.Date(2024, 5, 27, 8, 15, 0, 0, time.UTC), TransportType: &bus},
		{Amount: decimal.NewNullDecimal(decimal.NewFromInt(250)), CreatedAt: time.Date(2024, 5, 27, 8, 50, 0, 0, time.UTC), TransportType: &bus},
	}}
	h := NewHandler(store, time.UTC)
	h.Now = func() time.Time { return time.Date(2024, 5, 31, 12, 0, 0, 0, time.UTC) }

	app := apitest.NewApp(auth.Identity{}, func(r fiber.Router) {
		r.Get("/transport/heatmap", h.Heatmap)
	})

	status, body := apitest.Do(t, app, http.MethodGet, "/api/transport/heatmap", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), store.from)

	data := body["data"].(map[string]any)
	assert.Equal(t, "30d", data["period"])
	totals := data["totals"].(map[string]any)
	assert.Equal(t, "750", totals["totalAmount"])
	assert.EqualValues(t, 2, totals["totalCount"])
	assert.Len(t, data["heatmap"], 7)

	status, body = apitest.Do(t, app, http.MethodGet, "/api/transport/heatmap?period=7d", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, time.Date(2024, 5, 24, 0, 0, 0, 0, time.UTC), store.from)
	assert.Equal(t, "7d", body["data"].(map[string]any)["period"])

	status, body = apitest.Do(t, app, http.MethodGet, "/api/transport/heatmap?period=1y", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, []string{"period"}, apitest.Details(body))
}
