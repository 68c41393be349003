package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/apperr"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func sign(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func TestJWTVerifier(t *testing.T) {
	uid := uuid.New()
	v := NewJWTVerifier(testSecret, "authenticated")

	valid := jwt.MapClaims{
		"sub":   uid.String(),
		"aud":   "authenticated",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"email": "ana@example.com",
		"user_metadata": map[string]any{
			"full_name":  "Ana Gómez",
			"avatar_url": "https://example.com/a.png",
		},
	}

	id, err := v.Verify(context.Background(), sign(t, testSecret, valid))
	require.NoError(t, err)
	assert.Equal(t, uid, id.UserID)
	assert.Equal(t, "ana@example.com", id.Email)
	assert.Equal(t, "Ana Gómez", id.FullName)
	assert.Equal(t, "https://example.com/a.png", id.AvatarURL)

	with := func(k string, val any) jwt.MapClaims {
		out := jwt.MapClaims{}
		for key, v := range valid {
			out[key] = v
		}
		if val == nil {
			delete(out, k)
		} else {
			out[k] = val
		}
		return out
	}

	rejected := map[string]string{
		"wrong secret": sign(t, "another-secret-another-secret-another", valid),
		"expired":      sign(t, testSecret, with("exp", time.Now().Add(-time.Minute).Unix())),
		"no exp":       sign(t, testSecret, with("exp", nil)),
		"wrong aud":    sign(t, testSecret, with("aud", "anon")),
		"bad subject":  sign(t, testSecret, with("sub", "not-a-uuid")),
		"garbage":      "abc.def.ghi",
	}
	for name, tok := range rejected {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tok)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestJWTVerifierRejectsOtherAlgorithms(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": uuid.NewString(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = NewJWTVerifier(testSecret, "").Verify(context.Background(), tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRemoteVerifier(t *testing.T) {
	uid := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		switch r.Header.Get("Authorization") {
		case "Bearer good":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"` + uid.String() + `","email":"u@example.com","user_metadata":{"full_name":"U"}}`))
		case "Bearer broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	v := NewRemoteVerifier(srv.URL+"/", "anon-key")

	id, err := v.Verify(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, uid, id.UserID)
	assert.Equal(t, "U", id.FullName)

	_, err = v.Verify(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Verify(context.Background(), "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidToken)
}

func newApp(v Verifier) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := apperr.As(err); ok {
				return c.Status(e.Status()).SendString(e.Message)
			}
			return c.SendStatus(fiber.StatusInternalServerError)
		},
	})
	app.Get("/me", Middleware(v), func(c *fiber.Ctx) error {
		scope, err := ScopeFrom(c)
		if err != nil {
			return err
		}
		return c.SendString(scope.UserID.String())
	})
	return app
}

func TestMiddleware(t *testing.T) {
	uid := uuid.New()
	v := VerifierFunc(func(_ context.Context, token string) (Identity, error) {
		switch token {
		case "ok":
			return Identity{UserID: uid}, nil
		case "down":
			return Identity{}, errors.New("provider unavailable")
		}
		return Identity{}, ErrInvalidToken
	})
	app := newApp(v)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer ok", fiber.StatusOK},
		{"lowercase scheme", "bearer ok", fiber.StatusOK},
		{"missing", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Basic ok", fiber.StatusUnauthorized},
		{"empty token", "Bearer ", fiber.StatusUnauthorized},
		{"rejected", "Bearer nope", fiber.StatusUnauthorized},
		{"provider error", "Bearer down", fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			res, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, res.StatusCode)
		})
	}
}

func TestScopeFromWithoutMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		_, err := ScopeFrom(c)
		assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
		return c.SendStatus(fiber.StatusNoContent)
	})
	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, res.StatusCode)
}
