package recommendation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/apperr"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/auth"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/pgutil"
)

type Store interface {
	// Insert stores drafts in one statement, all sharing createdAt and expiresAt.
	Insert(ctx context.Context, scope auth.Scope, drafts []Draft, createdAt, expiresAt time.Time) ([]Recommendation, error)
	// Active lists recommendations not yet expired at now, newest first.
	Active(ctx context.Context, scope auth.Scope, now time.Time, seen *bool) ([]Recommendation, error)
	MarkSeen(ctx context.Context, scope auth.Scope, id int64, seen bool) (Recommendation, error)
}

const columns = `id, user_id, title, description, category, potential_savings, carbon_reduction,
	action_steps, priority, seen, created_at, expires_at`

type Repository struct {
	Pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Pool: pool}
}

func scanRecommendation(row pgx.Row) (Recommendation, error) {
	var r Recommendation
	err := row.Scan(
		&r.ID, &r.UserID, &r.Title, &r.Description, &r.Category, &r.PotentialSavings, &r.CarbonReduction,
		&r.ActionSteps, &r.Priority, &r.Seen, &r.CreatedAt, &r.ExpiresAt,
	)
	if r.ActionSteps == nil {
		r.ActionSteps = []string{}
	}
	return r, err
}

func collect(rows pgx.Rows) ([]Recommendation, error) {
	defer rows.Close()
	out := make([]Recommendation, 0)
	for rows.Next() {
		r, err := scanRecommendation(rows)
		if err != nil {
			return nil, apperr.FromDB(err, "recommendations", "")
		}
		out = append(out, r)
	}
	return out, apperr.FromDB(rows.Err(), "recommendations", "")
}

func (r *Repository) Insert(ctx context.Context, scope auth.Scope, drafts []Draft, createdAt, expiresAt time.Time) ([]Recommendation, error) {
	if len(drafts) == 0 {
		return []Recommendation{}, nil
	}

	var args pgutil.Args
	user := args.Add(scope.UserID)
	created := args.Add(createdAt)
	expires := args.Add(expiresAt)

	values := make([]string, 0, len(drafts))
	for _, d := range drafts {
		values = append(values, "("+strings.Join([]string{
			user,
			args.Add(d.Title),
			args.Add(d.Description),
			args.Add(d.Category),
			args.Add(d.PotentialSavings),
			args.Add(d.CarbonReduction),
			args.Add(d.ActionSteps),
			args.Add(d.Priority),
			"false",
			created,
			expires,
		}, ", ")+")")
	}

	q := `INSERT INTO recommendations (user_id, title, description, category, potential_savings, carbon_reduction,
		action_steps, priority, seen, created_at, expires_at)
		VALUES ` + strings.Join(values, ", ") + `
		RETURNING ` + columns

	rows, err := r.Pool.Query(ctx, q, args.Values()...)
	if err != nil {
		return nil, apperr.FromDB(err, "recommendations", "")
	}
	return collect(rows)
}

func (r *Repository) Active(ctx context.Context, scope auth.Scope, now time.Time, seen *bool) ([]Recommendation, error) {
	var w pgutil.Where
	w.Add("user_id = ?", scope.UserID)
	w.Add("(expires_at IS NULL OR expires_at > ?)", now)
	if seen != nil {
		w.Add("seen = ?", *seen)
	}

	rows, err := r.Pool.Query(ctx,
		`SELECT `+columns+` FROM recommendations `+w.SQL()+` ORDER BY created_at DESC, id DESC`,
		w.Values()...)
	if err != nil {
		return nil, apperr.FromDB(err, "recommendations", "")
	}
	return collect(rows)
}

func (r *Repository) MarkSeen(ctx context.Context, scope auth.Scope, id int64, seen bool) (Recommendation, error) {
	rec, err := scanRecommendation(r.Pool.QueryRow(ctx,
		`UPDATE recommendations SET seen = $3 WHERE id = $1 AND user_id = $2 RETURNING `+columns,
		id, scope.UserID, seen))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Recommendation{}, apperr.NotFound("recommendation not found")
		}
		return Recommendation{}, apperr.FromDB(err, "recommendations", "")
	}
	return rec, nil
}
