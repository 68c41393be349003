package expense

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/apperr"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/auth"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/pgutil"
)

type Store interface {
	List(ctx context.Context, scope auth.Scope, f Filter) ([]Expense, int64, error)
	Create(ctx context.Context, scope auth.Scope, req CreateRequest) (Expense, error)
	Update(ctx context.Context, scope auth.Scope, id int64, patch Patch) (Expense, error)
	Delete(ctx context.Context, scope auth.Scope, id int64) error
}

const selectJoined = `
	SELECT e.id, e.user_id, e.amount, e.category_id, e.merchant, e.description,
	       e.transport_type, e.carbon_kg, e.created_at,
	       c.id, c.name, c.color, c.icon
	FROM %s e
	LEFT JOIN categories c ON c.id = e.category_id AND c.user_id = e.user_id`

func joined(from string) string {
	return strings.Replace(selectJoined, "%s", from, 1)
}

type Repository struct {
	Pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Pool: pool}
}

func scanExpense(row pgx.Row) (Expense, error) {
	var e Expense
	var catID *int64
	var catName *string
	var catColor, catIcon *string
	err := row.Scan(
		&e.ID, &e.UserID, &e.Amount, &e.CategoryID, &e.Merchant, &e.Description,
		&e.TransportType, &e.CarbonKg, &e.CreatedAt,
		&catID, &catName, &catColor, &catIcon,
	)
	if err != nil {
		return Expense{}, err
	}
	if catID != nil && catName != nil {
		e.Category = &CategoryRef{ID: *catID, Name: *catName, Color: catColor, Icon: catIcon}
	}
	return e, nil
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func (r *Repository) List(ctx context.Context, scope auth.Scope, f Filter) ([]Expense, int64, error) {
	var w pgutil.Where
	w.Add("e.user_id = ?", scope.UserID)
	if f.CategoryID != nil {
		w.Add("e.category_id = ?", *f.CategoryID)
	}
	if f.Start != nil {
		w.Add("e.created_at >= ?", *f.Start)
	}
	if f.End != nil {
		w.Add("e.created_at <= ?", *f.End)
	}
	if f.MinAmount != nil {
		w.Add("e.amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		w.Add("e.amount <= ?", *f.MaxAmount)
	}
	if f.Search != "" {
		p := w.Args.Add(likePattern(f.Search))
		w.Raw("(e.merchant ILIKE " + p + " OR e.description ILIKE " + p + ")")
	}

	var total int64
	if err := r.Pool.QueryRow(ctx, `SELECT count(*) FROM expenses e `+w.SQL(), w.Values()...).Scan(&total); err != nil {
		return nil, 0, apperr.FromDB(err, "expenses", "")
	}

	col, ok := sortColumns[f.SortBy]
	if !ok {
		col = sortColumns["created_at"]
	}
	dir := "DESC"
	if f.Ascending {
		dir = "ASC"
	}

	q := joined("expenses") + " " + w.SQL() +
		" ORDER BY " + col + " " + dir + " NULLS LAST, e.id " + dir +
		" LIMIT " + w.Args.Add(f.Page.Limit) + " OFFSET " + w.Args.Add(f.Page.Offset())

	rows, err := r.Pool.Query(ctx, q, w.Values()...)
	if err != nil {
		return nil, 0, apperr.FromDB(err, "expenses", "")
	}
	defer rows.Close()

	out := make([]Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, 0, apperr.FromDB(err, "expenses", "")
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.FromDB(err, "expenses", "")
	}
	return out, total, nil
}

func (r *Repository) Create(ctx context.Context, scope auth.Scope, req CreateRequest) (Expense, error) {
	q := `WITH e AS (
		INSERT INTO expenses (user_id, amount, category_id, merchant, description, transport_type, carbon_kg, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, now()))
		RETURNING *
	)` + joined("e")

	e, err := scanExpense(r.Pool.QueryRow(ctx, q,
		scope.UserID, req.Amount, req.CategoryID, req.Merchant, req.Description,
		req.TransportType, req.CarbonKg, req.CreatedAt,
	))
	if err != nil {
		return Expense{}, apperr.FromDB(err, "expenses", "")
	}
	return e, nil
}

func (r *Repository) Update(ctx context.Context, scope auth.Scope, id int64, p Patch) (Expense, error) {
	var u pgutil.Update
	if p.Amount != nil {
		u.Set("amount", *p.Amount)
	}
	if p.CategoryID.Set {
		u.Set("category_id", p.CategoryID.Ptr())
	}
	if p.Merchant.Set {
		u.Set("merchant", p.Merchant.Ptr())
	}
	if p.Description.Set {
		u.Set("description", p.Description.Ptr())
	}
	if p.TransportType.Set {
		u.Set("transport_type", p.TransportType.Ptr())
	}
	if p.CarbonKg != nil {
		u.Set("carbon_kg", *p.CarbonKg)
	}
	if p.CreatedAt != nil {
		u.Set("created_at", *p.CreatedAt)
	}

	q := `WITH e AS (` + u.Owned("expenses", id, scope.UserID, "*") + `)` + joined("e")
	e, err := scanExpense(r.Pool.QueryRow(ctx, q, u.Values()...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Expense{}, apperr.NotFound("expense not found")
		}
		return Expense{}, apperr.FromDB(err, "expenses", "")
	}
	return e, nil
}

func (r *Repository) Delete(ctx context.Context, scope auth.Scope, id int64) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1 AND user_id = $2`, id, scope.UserID)
	if err != nil {
		return apperr.FromDB(err, "expenses", "")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("expense not found")
	}
	return nil
}
