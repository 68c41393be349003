// Package reports builds the monthly PDF statement.
package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/api"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/apperr"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/auth"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/budget"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/carbon"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/report"
)

// MaxLines caps the expense table.
const MaxLines = 200

type Line struct {
	CreatedAt time.Time
	Merchant  *string
	Category  *string
	Amount    decimal.Decimal
	CarbonKg  decimal.NullDecimal
}

type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

type Store interface {
	Totals(ctx context.Context, scope auth.Scope, from, to time.Time) (Totals, error)
	// Lines returns up to limit expenses in [from, to), newest first, and
	// whether more exist.
	Lines(ctx context.Context, scope auth.Scope, from, to time.Time, limit int) ([]Line, bool, error)
}

type Repository struct {
	Pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Pool: pool}
}

func (r *Repository) Totals(ctx context.Context, scope auth.Scope, from, to time.Time) (Totals, error) {
	var t Totals
	err := r.Pool.QueryRow(ctx, `
		SELECT
		  (SELECT COALESCE(SUM(amount), 0) FROM incomes
		    WHERE user_id = $1 AND created_at >= $2 AND created_at < $3),
		  (SELECT COALESCE(SUM(amount), 0) FROM expenses
		    WHERE user_id = $1 AND created_at >= $2 AND created_at < $3)
	`, scope.UserID, from, to).Scan(&t.Income, &t.Expense)
	if err != nil {
		return Totals{}, apperr.FromDB(err, "expenses", "")
	}
	return t, nil
}

func (r *Repository) Lines(ctx context.Context, scope auth.Scope, from, to time.Time, limit int) ([]Line, bool, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT e.created_at, e.merchant, c.name, e.amount, e.carbon_kg
		FROM expenses e
		LEFT JOIN categories c ON c.id = e.category_id AND c.user_id = e.user_id
		WHERE e.user_id = $1 AND e.created_at >= $2 AND e.created_at < $3
		ORDER BY e.created_at DESC
		LIMIT $4
	`, scope.UserID, from, to, limit+1)
	if err != nil {
		return nil, false, apperr.FromDB(err, "expenses", "")
	}
	defer rows.Close()

	out := make([]Line, 0)
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.CreatedAt, &l.Merchant, &l.Category, &l.Amount, &l.CarbonKg); err != nil {
			return nil, false, apperr.FromDB(err, "expenses", "")
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, false, apperr.FromDB(err, "expenses", "")
	}
	if len(out) > limit {
		return out[:limit], true, nil
	}
	return out, false, nil
}

// Statement is everything printed for one month.
type Statement struct {
	Month, Year int
	UserID      string
	GeneratedAt time.Time

	Totals    Totals
	CarbonKg  decimal.Decimal
	Carbon    []report.CategoryCarbon
	Budgets   []budget.View
	Lines     []Line
	Truncated bool
}

func (s Statement) Balance() decimal.Decimal {
	return s.Totals.Income.Sub(s.Totals.Expense)
}

type budgetLister interface {
	ForPeriod(ctx context.Context, scope auth.Scope, month, year int) ([]budget.Budget, error)
}

// Sources are the stores a statement is assembled from.
type Sources struct {
	Statements Store
	Carbon     carbon.Store
	Budgets    budgetLister
}

func Build(ctx context.Context, src Sources, scope auth.Scope, month, year int, loc *time.Location, now time.Time) (Statement, error) {
	from, to := api.MonthRange(month, year, loc)
	st := Statement{Month: month, Year: year, UserID: scope.UserID.String(), GeneratedAt: now}

	var err error
	if st.Totals, err = src.Statements.Totals(ctx, scope, from, to); err != nil {
		return Statement{}, err
	}
	if st.Lines, st.Truncated, err = src.Statements.Lines(ctx, scope, from, to, MaxLines); err != nil {
		return Statement{}, err
	}

	cs, err := carbon.Summarize(ctx, src.Carbon, scope, month, year, loc)
	if err != nil {
		return Statement{}, err
	}
	st.CarbonKg, st.Carbon = cs.TotalKg, cs.ByCategory

	budgets, err := src.Budgets.ForPeriod(ctx, scope, month, year)
	if err != nil {
		return Statement{}, err
	}
	st.Budgets, _ = budget.Summarize(budgets)
	return st, nil
}
