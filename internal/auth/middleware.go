package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/apperr"
)

const identityKey = "identity"

// Scope is the per-request data boundary. Every repository call takes one and
// filters by it explicitly.
type Scope struct {
	UserID uuid.UUID
}

// Middleware verifies the bearer token and stores the caller's identity.
func Middleware(v Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if authHeader == "" {
			return apperr.Unauthorized("unauthorized")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return apperr.Unauthorized("invalid token")
		}

		id, err := v.Verify(c.UserContext(), strings.TrimSpace(parts[1]))
		if err != nil {
			if !errors.Is(err, ErrInvalidToken) {
				logx.WithContext(c.UserContext()).Errorf("token verification failed: %v", err)
			}
			return apperr.Unauthorized("invalid token")
		}

		c.Locals(identityKey, id)
		c.Locals("user_id", id.UserID.String())
		return c.Next()
	}
}

// IdentityFrom returns the identity stored by Middleware.
func IdentityFrom(c *fiber.Ctx) (Identity, error) {
	id, ok := c.Locals(identityKey).(Identity)
	if !ok || id.UserID == uuid.Nil {
		return Identity{}, apperr.Unauthorized("unauthorized")
	}
	return id, nil
}

// ScopeFrom returns the data scope of the authenticated caller.
func ScopeFrom(c *fiber.Ctx) (Scope, error) {
	id, err := IdentityFrom(c)
	if err != nil {
		return Scope{}, err
	}
	return Scope{UserID: id.UserID}, nil
}
