// Package transport serves the transport spending heatmap.
package transport

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/api"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/apperr"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/auth"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/report"
)

const DefaultPeriod = "30d"

var periodDays = map[string]int{"7d": 7, "30d": 30, "90d": 90}

type Store interface {
	// Since returns the caller's expenses with a transport type created at or after from.
	Since(ctx context.Context, scope auth.Scope, from time.Time) ([]report.TransportRecord, error)
}

type Repository struct {
	Pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Pool: pool}
}

func (r *Repository) Since(ctx context.Context, scope auth.Scope, from time.Time) ([]report.TransportRecord, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT amount, created_at, transport_type
		FROM expenses
		WHERE user_id = $1 AND created_at >= $2 AND transport_type IS NOT NULL
	`, scope.UserID, from)
	if err != nil {
		return nil, apperr.FromDB(err, "expenses", "")
	}
	defer rows.Close()

	out := make([]report.TransportRecord, 0)
	for rows.Next() {
		var rec report.TransportRecord
		if err := rows.Scan(&rec.Amount, &rec.CreatedAt, &rec.TransportType); err != nil {
			return nil, apperr.FromDB(err, "expenses", "")
		}
		out = append(out, rec)
	}
	return out, apperr.FromDB(rows.Err(), "expenses", "")
}

// WindowStart is local midnight days before now.
func WindowStart(now time.Time, days int) time.Time {
	y, m, d := now.AddDate(0, 0, -days).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

type Handler struct {
	Store    Store
	Location *time.Location
	Now      func() time.Time
}

func NewHandler(store Store, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{Store: store, Location: loc, Now: time.Now}
}

func (h *Handler) Heatmap(c *fiber.Ctx) error {
	scope, err := auth.ScopeFrom(c)
	if err != nil {
		return err
	}

	period := c.Query("period", DefaultPeriod)
	days, ok := periodDays[period]
	if !ok {
		return apperr.Validation("invalid query", apperr.FieldError{Field: "period", Message: "must be one of 7d, 30d, 90d"})
	}

	from := WindowStart(h.Now().In(h.Location), days)
	records, err := h.Store.Since(c.UserContext(), scope, from)
	if err != nil {
		return err
	}
	return api.OK(c, fiber.Map{"data": report.TransportHeatmap(period, records, h.Location)})
}
