// Package apitest builds Fiber apps with a fixed caller identity for handler
// tests.
package apitest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/api"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/auth"
)

const Token = "test-token"

// NewApp returns an app whose authenticated routes act as id. register
// receives a router that already runs the auth middleware.
func NewApp(id auth.Identity, register func(r fiber.Router)) *fiber.App {
	if id.UserID == uuid.Nil {
		id.UserID = uuid.New()
	}
	v := auth.VerifierFunc(func(_ context.Context, token string) (auth.Identity, error) {
		if token != Token {
			return auth.Identity{}, auth.ErrInvalidToken
		}
		return id, nil
	})

	app := fiber.New(fiber.Config{ErrorHandler: api.ErrorHandler})
	register(app.Group("/api", auth.Middleware(v)))
	return app
}

// Do sends an authenticated request and decodes the JSON response.
func Do(t *testing.T, app *fiber.App, method, target string, body any) (int, map[string]any) {
	t.Helper()
	res := Raw(t, app, method, target, body)
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return res.StatusCode, out
}

// Raw is Do without decoding. body may be nil, a string or any JSON value.
func Raw(t *testing.T, app *fiber.App, method, target string, body any) *http.Response {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, rdr)
	req.Header.Set("Authorization", "Bearer "+Token)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	return res
}

// Details returns the field names of a validation error body.
func Details(body map[string]any) []string {
	raw, _ := body["details"].([]any)
	out := make([]string, 0, len(raw))
	for _, d := range raw {
		if m, ok := d.(map[string]any); ok {
			if f, ok := m["field"].(string); ok {
				out = append(out, f)
			}
		}
	}
	return out
}
