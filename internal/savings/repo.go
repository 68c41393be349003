package savings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/apperr"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/auth"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/pgutil"
)

type Store interface {
	List(ctx context.Context, scope auth.Scope) ([]Goal, error)
	Create(ctx context.Context, scope auth.Scope, req CreateRequest) (Goal, error)
	// Contribute adds amount to the saved total in a single statement.
	Contribute(ctx context.Context, scope auth.Scope, id int64, amount decimal.Decimal) (Goal, error)
	Update(ctx context.Context, scope auth.Scope, id int64, patch Patch) (Goal, error)
	Delete(ctx context.Context, scope auth.Scope, id int64) error
}

const columns = `id, name, target_amount, COALESCE(saved_amount, 0), deadline, created_at`

type Repository struct {
	Pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Pool: pool}
}

func scanGoal(row pgx.Row) (Goal, error) {
	var g Goal
	err := row.Scan(&g.ID, &g.Name, &g.TargetAmount, &g.SavedAmount, &g.Deadline, &g.CreatedAt)
	return g, err
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("savings goal not found")
	}
	return apperr.FromDB(err, "savings_goals", "")
}

func (r *Repository) List(ctx context.Context, scope auth.Scope) ([]Goal, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT `+columns+` FROM savings_goals WHERE user_id = $1 ORDER BY created_at DESC, id DESC`,
		scope.UserID)
	if err != nil {
		return nil, apperr.FromDB(err, "savings_goals", "")
	}
	defer rows.Close()

	out := make([]Goal, 0)
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, apperr.FromDB(err, "savings_goals", "")
		}
		out = append(out, g)
	}
	return out, apperr.FromDB(rows.Err(), "savings_goals", "")
}

func (r *Repository) Create(ctx context.Context, scope auth.Scope, req CreateRequest) (Goal, error) {
	g, err := scanGoal(r.Pool.QueryRow(ctx, `
		INSERT INTO savings_goals (user_id, name, target_amount, deadline)
		VALUES ($1, $2, $3, $4)
		RETURNING `+columns,
		scope.UserID, req.Name, req.TargetAmount, req.Deadline,
	))
	if err != nil {
		return Goal{}, apperr.FromDB(err, "savings_goals", "")
	}
	return g, nil
}

func (r *Repository) Contribute(ctx context.Context, scope auth.Scope, id int64, amount decimal.Decimal) (Goal, error) {
	g, err := scanGoal(r.Pool.QueryRow(ctx, `
		UPDATE savings_goals
		SET saved_amount = COALESCE(saved_amount, 0) + $3
		WHERE id = $1 AND user_id = $2
		RETURNING `+columns,
		id, scope.UserID, amount,
	))
	if err != nil {
		return Goal{}, notFound(err)
	}
	return g, nil
}

func (r *Repository) Update(ctx context.Context, scope auth.Scope, id int64, p Patch) (Goal, error) {
	var u pgutil.Update
	if p.Name != nil {
		u.Set("name", *p.Name)
	}
	if p.TargetAmount != nil {
		u.Set("target_amount", *p.TargetAmount)
	}
	if p.Deadline != nil {
		u.Set("deadline", *p.Deadline)
	}

	g, err := scanGoal(r.Pool.QueryRow(ctx, u.Owned("savings_goals", id, scope.UserID, columns), u.Values()...))
	if err != nil {
		return Goal{}, notFound(err)
	}
	return g, nil
}

func (r *Repository) Delete(ctx context.Context, scope auth.Scope, id int64) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM savings_goals WHERE id = $1 AND user_id = $2`, id, scope.UserID)
	if err != nil {
		return apperr.FromDB(err, "savings_goals", "")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("savings goal not found")
	}
	return nil
}
