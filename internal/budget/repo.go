package budget

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/apperr"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/auth"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/expense"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/pgutil"
)

const duplicateMsg = "a budget already exists for that category and period"

type Store interface {
	ForPeriod(ctx context.Context, scope auth.Scope, month, year int) ([]Budget, error)
	// Upsert creates the budget or replaces the limit of the existing one.
	Upsert(ctx context.Context, scope auth.Scope, categoryID int64, month, year int, limit decimal.Decimal) (Budget, error)
	Update(ctx context.Context, scope auth.Scope, id int64, patch Patch) (Budget, error)
	Delete(ctx context.Context, scope auth.Scope, id int64) error
}

const columns = `b.id, b.user_id, b.category_id, b.month, b.year, b.limit_amount, COALESCE(b.spent_amount, 0)`

type Repository struct {
	Pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Pool: pool}
}

func (r *Repository) ForPeriod(ctx context.Context, scope auth.Scope, month, year int) ([]Budget, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT `+columns+`, c.id, c.name, c.color, c.icon
		FROM budgets b
		LEFT JOIN categories c ON c.id = b.category_id AND c.user_id = b.user_id
		WHERE b.user_id = $1 AND b.month = $2 AND b.year = $3
		ORDER BY b.category_id ASC
	`, scope.UserID, month, year)
	if err != nil {
		return nil, apperr.FromDB(err, "budgets", "")
	}
	defer rows.Close()

	out := make([]Budget, 0)
	for rows.Next() {
		var b Budget
		var catID *int64
		var catName, catColor, catIcon *string
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.CategoryID, &b.Month, &b.Year, &b.LimitAmount, &b.SpentAmount,
			&catID, &catName, &catColor, &catIcon,
		); err != nil {
			return nil, apperr.FromDB(err, "budgets", "")
		}
		if catID != nil && catName != nil {
			b.Category = &expense.CategoryRef{ID: *catID, Name: *catName, Color: catColor, Icon: catIcon}
		}
		out = append(out, b)
	}
	return out, apperr.FromDB(rows.Err(), "budgets", "")
}

func scanBudget(row pgx.Row) (Budget, error) {
	var b Budget
	err := row.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Month, &b.Year, &b.LimitAmount, &b.SpentAmount)
	return b, err
}

func (r *Repository) Upsert(ctx context.Context, scope auth.Scope, categoryID int64, month, year int, limit decimal.Decimal) (Budget, error) {
	b, err := scanBudget(r.Pool.QueryRow(ctx, `
		INSERT INTO budgets AS b (user_id, category_id, month, year, limit_amount)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, category_id, month, year)
		DO UPDATE SET limit_amount = EXCLUDED.limit_amount
		RETURNING `+columns,
		scope.UserID, categoryID, month, year, limit,
	))
	if err != nil {
		return Budget{}, apperr.FromDB(err, "budgets", duplicateMsg)
	}
	return b, nil
}

func (r *Repository) Update(ctx context.Context, scope auth.Scope, id int64, p Patch) (Budget, error) {
	var u pgutil.Update
	if p.LimitAmount != nil {
		u.Set("limit_amount", *p.LimitAmount)
	}
	if p.CategoryID != nil {
		u.Set("category_id", *p.CategoryID)
	}
	if p.Month != nil {
		u.Set("month", *p.Month)
	}
	if p.Year != nil {
		u.Set("year", *p.Year)
	}

	b, err := scanBudget(r.Pool.QueryRow(ctx, u.Owned("budgets AS b", id, scope.UserID, columns), u.Values()...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Budget{}, apperr.NotFound("budget not found")
		}
		return Budget{}, apperr.FromDB(err, "budgets", duplicateMsg)
	}
	return b, nil
}

func (r *Repository) Delete(ctx context.Context, scope auth.Scope, id int64) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM budgets WHERE id = $1 AND user_id = $2`, id, scope.UserID)
	if err != nil {
		return apperr.FromDB(err, "budgets", "")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("budget not found")
	}
	return nil
}
