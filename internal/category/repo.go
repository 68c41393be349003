package category

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/apperr"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/auth"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/pgutil"
)

const duplicateMsg = "a category with that name already exists"

type Store interface {
	List(ctx context.Context, scope auth.Scope) ([]Category, error)
	Create(ctx context.Context, scope auth.Scope, req CreateRequest) (Category, error)
	Update(ctx context.Context, scope auth.Scope, id int64, patch Patch) (Category, error)
	Delete(ctx context.Context, scope auth.Scope, id int64) error
}

type Repository struct {
	Pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Pool: pool}
}

func (r *Repository) List(ctx context.Context, scope auth.Scope) ([]Category, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT id, name, color, icon
		FROM categories
		WHERE user_id = $1
		ORDER BY name ASC
	`, scope.UserID)
	if err != nil {
		return nil, apperr.FromDB(err, "categories", "")
	}
	defer rows.Close()

	out := make([]Category, 0)
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.Icon); err != nil {
			return nil, apperr.FromDB(err, "categories", "")
		}
		out = append(out, c)
	}
	return out, apperr.FromDB(rows.Err(), "categories", "")
}

func (r *Repository) Create(ctx context.Context, scope auth.Scope, req CreateRequest) (Category, error) {
	var c Category
	err := r.Pool.QueryRow(ctx, `
		INSERT INTO categories (user_id, name, color, icon)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, color, icon
	`, scope.UserID, req.Name, req.Color, req.Icon).Scan(&c.ID, &c.Name, &c.Color, &c.Icon)
	if err != nil {
		return Category{}, apperr.FromDB(err, "categories", duplicateMsg)
	}
	return c, nil
}

func (r *Repository) Update(ctx context.Context, scope auth.Scope, id int64, patch Patch) (Category, error) {
	var u pgutil.Update
	if patch.Name != nil {
		u.Set("name", *patch.Name)
	}
	if patch.Color.Set {
		u.Set("color", patch.Color.Ptr())
	}
	if patch.Icon.Set {
		u.Set("icon", patch.Icon.Ptr())
	}

	var c Category
	err := r.Pool.QueryRow(ctx, u.Owned("categories", id, scope.UserID, "id, name, color, icon"), u.Values()...).
		Scan(&c.ID, &c.Name, &c.Color, &c.Icon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, apperr.NotFound("category not found")
		}
		return Category{}, apperr.FromDB(err, "categories", duplicateMsg)
	}
	return c, nil
}

func (r *Repository) Delete(ctx context.Context, scope auth.Scope, id int64) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM categories WHERE id = $1 AND user_id = $2`, id, scope.UserID)
	if err != nil {
		return apperr.FromDB(err, "categories", "")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("category not found")
	}
	return nil
}
