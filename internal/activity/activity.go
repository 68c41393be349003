// Package activity summarizes a user's recent spending for assistant prompts.
package activity

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/apperr"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/auth"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/money"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/report"
)

const (
	WindowDays = 30
	MaxRecords = 500
)

type Record struct {
	Amount        decimal.NullDecimal
	CarbonKg      decimal.NullDecimal
	Merchant      *string
	TransportType *string
	CreatedAt     time.Time
}

type Store interface {
	// Recent returns at most limit expenses created at or after since, newest first.
	Recent(ctx context.Context, scope auth.Scope, since time.Time, limit int) ([]Record, error)
}

type Repository struct {
	Pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Pool: pool}
}

func (r *Repository) Recent(ctx context.Context, scope auth.Scope, since time.Time, limit int) ([]Record, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT amount, carbon_kg, merchant, transport_type, created_at
		FROM expenses
		WHERE user_id = $1 AND created_at >= $2
		ORDER BY created_at DESC
		LIMIT $3
	`, scope.UserID, since, limit)
	if err != nil {
		return nil, apperr.FromDB(err, "expenses", "")
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.Amount, &rec.CarbonKg, &rec.Merchant, &rec.TransportType, &rec.CreatedAt); err != nil {
			return nil, apperr.FromDB(err, "expenses", "")
		}
		out = append(out, rec)
	}
	return out, apperr.FromDB(rows.Err(), "expenses", "")
}

// Summary is the trailing-window context handed to the assistant.
type Summary struct {
	TotalAmount decimal.Decimal
	TotalCarbon decimal.Decimal
	Count       int
	TopMerchant string
}

func Summarize(records []Record) Summary {
	amounts := make([]decimal.Decimal, 0, len(records))
	carbon := make([]decimal.Decimal, 0, len(records))
	merchants := make([]*string, 0, len(records))
	for _, r := range records {
		amounts = append(amounts, money.OrZero(r.Amount))
		carbon = append(carbon, money.OrZero(r.CarbonKg))
		merchants = append(merchants, r.Merchant)
	}
	return Summary{
		TotalAmount: money.Sum(amounts...),
		TotalCarbon: money.Sum(carbon...),
		Count:       len(records),
		TopMerchant: report.TopMerchant(merchants),
	}
}

// Load reads the last WindowDays of activity before now and summarizes it.
func Load(ctx context.Context, store Store, scope auth.Scope, now time.Time) (Summary, error) {
	records, err := store.Recent(ctx, scope, now.AddDate(0, 0, -WindowDays), MaxRecords)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(records), nil
}
