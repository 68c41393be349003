package income

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/apperr"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/auth"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/expense"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/pgutil"
)

type Store interface {
	List(ctx context.Context, scope auth.Scope, f Filter) ([]Income, int64, error)
	Create(ctx context.Context, scope auth.Scope, req CreateRequest) (Income, error)
	Update(ctx context.Context, scope auth.Scope, id int64, patch Patch) (Income, error)
	Delete(ctx context.Context, scope auth.Scope, id int64) error

	// Receipt returns the stored response for key, or nil when none exists.
	Receipt(ctx context.Context, scope auth.Scope, key string) (*Receipt, error)
	Remember(ctx context.Context, scope auth.Scope, key string, r Receipt) error
}

const selectJoined = `
	SELECT i.id, i.user_id, i.amount, i.category_id, i.source, i.description, i.created_at,
	       c.id, c.name, c.color, c.icon
	FROM %s i
	LEFT JOIN categories c ON c.id = i.category_id AND c.user_id = i.user_id`

func joined(from string) string {
	return strings.Replace(selectJoined, "%s", from, 1)
}

type Repository struct {
	Pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Pool: pool}
}

func scanIncome(row pgx.Row) (Income, error) {
	var in Income
	var catID *int64
	var catName, catColor, catIcon *string
	err := row.Scan(
		&in.ID, &in.UserID, &in.Amount, &in.CategoryID, &in.Source, &in.Description, &in.CreatedAt,
		&catID, &catName, &catColor, &catIcon,
	)
	if err != nil {
		return Income{}, err
	}
	if catID != nil && catName != nil {
		in.Category = &expense.CategoryRef{ID: *catID, Name: *catName, Color: catColor, Icon: catIcon}
	}
	return in, nil
}

func (r *Repository) List(ctx context.Context, scope auth.Scope, f Filter) ([]Income, int64, error) {
	var w pgutil.Where
	w.Add("i.user_id = ?", scope.UserID)
	if f.CategoryID != nil {
		w.Add("i.category_id = ?", *f.CategoryID)
	}
	if f.Start != nil {
		w.Add("i.created_at >= ?", *f.Start)
	}
	if f.End != nil {
		w.Add("i.created_at <= ?", *f.End)
	}

	var total int64
	if err := r.Pool.QueryRow(ctx, `SELECT count(*) FROM incomes i `+w.SQL(), w.Values()...).Scan(&total); err != nil {
		return nil, 0, apperr.FromDB(err, "incomes", "")
	}

	col, ok := sortColumns[f.SortBy]
	if !ok {
		col = sortColumns["created_at"]
	}
	dir := "DESC"
	if f.Ascending {
		dir = "ASC"
	}
	q := joined("incomes") + " " + w.SQL() +
		" ORDER BY " + col + " " + dir + ", i.id " + dir +
		" LIMIT " + w.Args.Add(f.Page.Limit) + " OFFSET " + w.Args.Add(f.Page.Offset())

	rows, err := r.Pool.Query(ctx, q, w.Values()...)
	if err != nil {
		return nil, 0, apperr.FromDB(err, "incomes", "")
	}
	defer rows.Close()

	out := make([]Income, 0)
	for rows.Next() {
		in, err := scanIncome(rows)
		if err != nil {
			return nil, 0, apperr.FromDB(err, "incomes", "")
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.FromDB(err, "incomes", "")
	}
	return out, total, nil
}

func (r *Repository) Create(ctx context.Context, scope auth.Scope, req CreateRequest) (Income, error) {
	q := `WITH i AS (
		INSERT INTO incomes (user_id, amount, category_id, source, description, created_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()))
		RETURNING *
	)` + joined("i")

	in, err := scanIncome(r.Pool.QueryRow(ctx, q,
		scope.UserID, req.Amount, req.CategoryID, req.Source, req.Description, req.ReceivedAt,
	))
	if err != nil {
		return Income{}, apperr.FromDB(err, "incomes", "")
	}
	return in, nil
}

func (r *Repository) Update(ctx context.Context, scope auth.Scope, id int64, p Patch) (Income, error) {
	var u pgutil.Update
	if p.Amount != nil {
		u.Set("amount", *p.Amount)
	}
	if p.CategoryID.Set {
		u.Set("category_id", p.CategoryID.Ptr())
	}
	if p.Source.Set {
		u.Set("source", p.Source.Ptr())
	}
	if p.Description.Set {
		u.Set("description", p.Description.Ptr())
	}
	if p.ReceivedAt != nil {
		u.Set("created_at", *p.ReceivedAt)
	}

	q := `WITH i AS (` + u.Owned("incomes", id, scope.UserID, "*") + `)` + joined("i")
	in, err := scanIncome(r.Pool.QueryRow(ctx, q, u.Values()...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Income{}, apperr.NotFound("income not found")
		}
		return Income{}, apperr.FromDB(err, "incomes", "")
	}
	return in, nil
}

func (r *Repository) Delete(ctx context.Context, scope auth.Scope, id int64) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM incomes WHERE id = $1 AND user_id = $2`, id, scope.UserID)
	if err != nil {
		return apperr.FromDB(err, "incomes", "")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("income not found")
	}
	return nil
}

func (r *Repository) Receipt(ctx context.Context, scope auth.Scope, key string) (*Receipt, error) {
	var rc Receipt
	var body string
	err := r.Pool.QueryRow(ctx,
		`SELECT request_hash, response_status, response_body
		 FROM idempotency_keys
		 WHERE owner_id = $1 AND idempotency_key = $2`,
		scope.UserID, key,
	).Scan(&rc.RequestHash, &rc.Status, &body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.FromDB(err, "idempotency_keys", "")
	}
	rc.Body = []byte(body)
	return &rc, nil
}

func (r *Repository) Remember(ctx context.Context, scope auth.Scope, key string, rc Receipt) error {
	_, err := r.Pool.Exec(ctx,
		`INSERT INTO idempotency_keys (owner_id, endpoint, idempotency_key, request_hash, response_status, response_body)
		 VALUES ($1, '/api/incomes', $2, $3, $4, $5)
		 ON CONFLICT (owner_id, idempotency_key) DO NOTHING`,
		scope.UserID, key, rc.RequestHash, rc.Status, string(rc.Body),
	)
	if err != nil {
		return apperr.FromDB(err, "idempotency_keys", "")
	}
	return nil
}
