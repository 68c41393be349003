package gamification

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/apperr"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/auth"
)

type Repository struct {
	Pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Pool: pool}
}

func (r *Repository) Catalog(ctx context.Context) ([]Achievement, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT id, slug, title, COALESCE(description, ''), points
		FROM achievements
		ORDER BY points DESC, id ASC
	`)
	if err != nil {
		return nil, apperr.FromDB(err, "achievements", "")
	}
	defer rows.Close()

	out := make([]Achievement, 0)
	for rows.Next() {
		var a Achievement
		if err := rows.Scan(&a.ID, &a.Slug, &a.Title, &a.Description, &a.Points); err != nil {
			return nil, apperr.FromDB(err, "achievements", "")
		}
		out = append(out, a)
	}
	return out, apperr.FromDB(rows.Err(), "achievements", "")
}

func (r *Repository) Unlocks(ctx context.Context, scope auth.Scope) ([]Unlock, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT achievement_id, unlocked_at
		FROM user_achievements
		WHERE user_id = $1
	`, scope.UserID)
	if err != nil {
		return nil, apperr.FromDB(err, "user_achievements", "")
	}
	defer rows.Close()

	out := make([]Unlock, 0)
	for rows.Next() {
		var u Unlock
		if err := rows.Scan(&u.AchievementID, &u.UnlockedAt); err != nil {
			return nil, apperr.FromDB(err, "user_achievements", "")
		}
		out = append(out, u)
	}
	return out, apperr.FromDB(rows.Err(), "user_achievements", "")
}

func (r *Repository) HasAnyExpense(ctx context.Context, scope auth.Scope) (bool, error) {
	var exists bool
	err := r.Pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM expenses WHERE user_id = $1)
	`, scope.UserID).Scan(&exists)
	if err != nil {
		return false, apperr.FromDB(err, "expenses", "")
	}
	return exists, nil
}

func (r *Repository) ExpensesSince(ctx context.Context, scope auth.Scope, since time.Time) ([]ExpenseMark, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT created_at, transport_type
		FROM expenses
		WHERE user_id = $1 AND created_at >= $2
	`, scope.UserID, since)
	if err != nil {
		return nil, apperr.FromDB(err, "expenses", "")
	}
	defer rows.Close()

	out := make([]ExpenseMark, 0)
	for rows.Next() {
		var e ExpenseMark
		if err := rows.Scan(&e.CreatedAt, &e.TransportType); err != nil {
			return nil, apperr.FromDB(err, "expenses", "")
		}
		out = append(out, e)
	}
	return out, apperr.FromDB(rows.Err(), "expenses", "")
}

func (r *Repository) Unlock(ctx context.Context, scope auth.Scope, achievementID int64, at time.Time) (bool, error) {
	tag, err := r.Pool.Exec(ctx, `
		INSERT INTO user_achievements (user_id, achievement_id, unlocked_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, achievement_id) DO NOTHING
	`, scope.UserID, achievementID, at)
	if err != nil {
		return false, apperr.FromDB(err, "user_achievements", "achievement already unlocked")
	}
	return tag.RowsAffected() == 1, nil
}
