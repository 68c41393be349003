package subscription

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
	List(ctx context.Context, scope auth.Scope, active *bool) ([]Subscription, error)
	Get(ctx context.Context, scope auth.Scope, id int64) (Subscription, error)
	Create(ctx context.Context, scope auth.Scope, n New) (Subscription, error)
	// Update applies patch. A non-nil nextCharge overrides next_charge_at.
	Update(ctx context.Context, scope auth.Scope, id int64, patch Patch, nextCharge *Schedule) (Subscription, error)
	Delete(ctx context.Context, scope auth.Scope, id int64) error
}

const selectJoined = `
	SELECT s.id, s.user_id, s.amount, s.merchant, s.description, s.category_id,
	       s.every_n, s.unit, s.start_date, s.next_charge_at, s.active, s.created_at,
	       c.id, c.name, c.color, c.icon
	FROM %s s
	LEFT JOIN categories c ON c.id = s.category_id AND c.user_id = s.user_id`

func joined(from string) string {
	return strings.Replace(selectJoined, "%s", from, 1)
}

type Repository struct {
	Pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Pool: pool}
}

func scanSubscription(row pgx.Row) (Subscription, error) {
	var s Subscription
	var catID *int64
	var catName, catColor, catIcon *string
	err := row.Scan(
		&s.ID, &s.UserID, &s.Amount, &s.Merchant, &s.Description, &s.CategoryID,
		&s.EveryN, &s.Unit, &s.StartDate, &s.NextChargeAt, &s.Active, &s.CreatedAt,
		&catID, &catName, &catColor, &catIcon,
	)
	if err != nil {
		return Subscription{}, err
	}
	if catID != nil && catName != nil {
		s.Category = &expense.CategoryRef{ID: *catID, Name: *catName, Color: catColor, Icon: catIcon}
	}
	return s, nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("subscription not found")
	}
	return apperr.FromDB(err, "subscriptions", "")
}

func (r *Repository) List(ctx context.Context, scope auth.Scope, active *bool) ([]Subscription, error) {
	var w pgutil.Where
	w.Add("s.user_id = ?", scope.UserID)
	if active != nil {
		w.Add("s.active = ?", *active)
	}

	rows, err := r.Pool.Query(ctx, joined("subscriptions")+" "+w.SQL()+" ORDER BY s.next_charge_at ASC, s.id ASC", w.Values()...)
	if err != nil {
		return nil, apperr.FromDB(err, "subscriptions", "")
	}
	defer rows.Close()

	out := make([]Subscription, 0)
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, apperr.FromDB(err, "subscriptions", "")
		}
		out = append(out, s)
	}
	return out, apperr.FromDB(rows.Err(), "subscriptions", "")
}

func (r *Repository) Get(ctx context.Context, scope auth.Scope, id int64) (Subscription, error) {
	s, err := scanSubscription(r.Pool.QueryRow(ctx,
		joined("subscriptions")+" WHERE s.id = $1 AND s.user_id = $2", id, scope.UserID))
	if err != nil {
		return Subscription{}, notFound(err)
	}
	return s, nil
}

func (r *Repository) Create(ctx context.Context, scope auth.Scope, n New) (Subscription, error) {
	q := `WITH s AS (
		INSERT INTO subscriptions (user_id, amount, merchant, description, category_id, every_n, unit, start_date, next_charge_at, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING *
	)` + joined("s")

	s, err := scanSubscription(r.Pool.QueryRow(ctx, q,
		scope.UserID, n.Amount, n.Merchant, n.Description, n.CategoryID,
		n.EveryN, string(n.Unit), n.StartDate, n.NextChargeAt, n.Active,
	))
	if err != nil {
		return Subscription{}, apperr.FromDB(err, "subscriptions", "")
	}
	return s, nil
}

func (r *Repository) Update(ctx context.Context, scope auth.Scope, id int64, p Patch, next *Schedule) (Subscription, error) {
	var u pgutil.Update
	if p.Amount != nil {
		u.Set("amount", *p.Amount)
	}
	if p.Merchant.Set {
		u.Set("merchant", p.Merchant.Ptr())
	}
	if p.Description.Set {
		u.Set("description", p.Description.Ptr())
	}
	if p.CategoryID.Set {
		u.Set("category_id", p.CategoryID.Ptr())
	}
	if p.Active != nil {
		u.Set("active", *p.Active)
	}
	if next != nil {
		u.Set("start_date", next.StartDate)
		u.Set("every_n", next.EveryN)
		u.Set("unit", string(next.Unit))
		u.Set("next_charge_at", next.NextChargeAt)
	}

	q := `WITH s AS (` + u.Owned("subscriptions", id, scope.UserID, "*") + `)` + joined("s")
	s, err := scanSubscription(r.Pool.QueryRow(ctx, q, u.Values()...))
	if err != nil {
		return Subscription{}, notFound(err)
	}
	return s, nil
}

func (r *Repository) Delete(ctx context.Context, scope auth.Scope, id int64) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM subscriptions WHERE id = $1 AND user_id = $2`, id, scope.UserID)
	if err != nil {
		return apperr.FromDB(err, "subscriptions", "")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("subscription not found")
	}
	return nil
}
