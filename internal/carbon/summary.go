package carbon

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/api"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/apperr"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/auth"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/report"
)

type Store interface {
	Records(ctx context.Context, scope auth.Scope, from, to time.Time) ([]report.CarbonRecord, error)
}

type Repository struct {
	Pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Pool: pool}
}

// Records returns carbon rows created in [from, to).
func (r *Repository) Records(ctx context.Context, scope auth.Scope, from, to time.Time) ([]report.CarbonRecord, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT e.category_id, c.name, e.carbon_kg
		FROM expenses e
		LEFT JOIN categories c ON c.id = e.category_id AND c.user_id = e.user_id
		WHERE e.user_id = $1 AND e.created_at >= $2 AND e.created_at < $3
		ORDER BY e.created_at ASC
	`, scope.UserID, from, to)
	if err != nil {
		return nil, apperr.FromDB(err, "expenses", "")
	}
	defer rows.Close()

	out := make([]report.CarbonRecord, 0)
	for rows.Next() {
		var rec report.CarbonRecord
		if err := rows.Scan(&rec.CategoryID, &rec.CategoryName, &rec.CarbonKg); err != nil {
			return nil, apperr.FromDB(err, "expenses", "")
		}
		out = append(out, rec)
	}
	return out, apperr.FromDB(rows.Err(), "expenses", "")
}

type Summary struct {
	TotalKg     decimal.Decimal         `json:"total_kg"`
	ByCategory  []report.CategoryCarbon `json:"by_category"`
	Month       int                     `json:"month"`
	Year        int                     `json:"year"`
	Equivalents Equivalents             `json:"equivalents"`
}

// Summarize builds the monthly summary for the caller.
func Summarize(ctx context.Context, store Store, scope auth.Scope, month, year int, loc *time.Location) (Summary, error) {
	from, to := api.MonthRange(month, year, loc)
	records, err := store.Records(ctx, scope, from, to)
	if err != nil {
		return Summary{}, err
	}
	total, by := report.Carbon(records)
	return Summary{
		TotalKg:     total,
		ByCategory:  by,
		Month:       month,
		Year:        year,
		Equivalents: EquivalentsOf(total),
	}, nil
}

type Handler struct {
	Store    Store
	Location *time.Location
	Now      func() time.Time
}

func NewHandler(store Store, loc *time.Location) *Handler {
	return &Handler{Store: store, Location: loc, Now: time.Now}
}

func (h *Handler) Summary(c *fiber.Ctx) error {
	scope, err := auth.ScopeFrom(c)
	if err != nil {
		return err
	}
	month, year, err := api.Period(c, h.Now().In(h.Location))
	if err != nil {
		return err
	}

	s, err := Summarize(c.UserContext(), h.Store, scope, month, year, h.Location)
	if err != nil {
		return err
	}
	return api.OK(c, fiber.Map{"summary": s})
}
