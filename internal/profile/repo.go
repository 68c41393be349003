package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/api"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/apperr"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/auth"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/pgutil"
)

const columns = `id, email, full_name, avatar_url, telegram_chat_id, created_at, updated_at`

type Store interface {
	// Ensure returns the caller's profile, creating it from id when missing.
	Ensure(ctx context.Context, scope auth.Scope, id auth.Identity) (Profile, error)
	Update(ctx context.Context, scope auth.Scope, patch Patch) (Profile, error)
}

type Patch struct {
	FullName       api.Field[string] `json:"full_name"`
	AvatarURL      api.Field[string] `json:"avatar_url"`
	TelegramChatID api.Field[int64]  `json:"telegram_chat_id"`
}

type Repository struct {
	Pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Pool: pool}
}

func scan(row pgx.Row) (Profile, error) {
	var p Profile
	var id uuid.UUID
	err := row.Scan(&id, &p.Email, &p.FullName, &p.AvatarURL, &p.TelegramChatID, &p.CreatedAt, &p.UpdatedAt)
	p.ID = id.String()
	return p, err
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *Repository) Ensure(ctx context.Context, scope auth.Scope, id auth.Identity) (Profile, error) {
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO profiles (id, email, full_name, avatar_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`, scope.UserID, nullable(id.Email), nullable(id.FullName), nullable(id.AvatarURL))
	if err != nil {
		return Profile{}, apperr.FromDB(err, "profiles", "")
	}

	p, err := scan(r.Pool.QueryRow(ctx, `SELECT `+columns+` FROM profiles WHERE id = $1`, scope.UserID))
	if err != nil {
		return Profile{}, apperr.FromDB(err, "profiles", "")
	}
	return p, nil
}

func (r *Repository) Update(ctx context.Context, scope auth.Scope, patch Patch) (Profile, error) {
	var u pgutil.Update
	if patch.FullName.Set {
		u.Set("full_name", patch.FullName.Ptr())
	}
	if patch.AvatarURL.Set {
		u.Set("avatar_url", patch.AvatarURL.Ptr())
	}
	if patch.TelegramChatID.Set {
		u.Set("telegram_chat_id", patch.TelegramChatID.Ptr())
	}
	u.SetRaw("updated_at", "now()")

	q := `UPDATE profiles SET ` + u.Joined()
	q += ` WHERE id = ` + u.Args.Add(scope.UserID) + ` RETURNING ` + columns

	p, err := scan(r.Pool.QueryRow(ctx, q, u.Values()...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, apperr.NotFound("profile not found")
		}
		return Profile{}, apperr.FromDB(err, "profiles", "")
	}
	return p, nil
}

// TelegramChatID backs notify.ChatLookup.
func (r *Repository) TelegramChatID(ctx context.Context, userID uuid.UUID) (int64, bool, error) {
	var chatID *int64
	err := r.Pool.QueryRow(ctx, `SELECT telegram_chat_id FROM profiles WHERE id = $1`, userID).Scan(&chatID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	if chatID == nil {
		return 0, false, nil
	}
	return *chatID, true, nil
}
