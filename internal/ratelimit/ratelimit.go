// Package ratelimit throttles mutating API calls per user.
package ratelimit

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/auth"
)

type Options struct {
	Max    int
	Window time.Duration
	// Storage holds counters; nil keeps them in process memory.
	Storage fiber.Storage
}

// Writes limits POST, PUT, PATCH and DELETE to Max requests per Window per
// authenticated user, falling back to the client IP. It must run after the
// auth middleware.
func Writes(opts Options) fiber.Handler {
	if opts.Max <= 0 {
		opts.Max = 60
	}
	if opts.Window <= 0 {
		opts.Window = time.Minute
	}
	return limiter.New(limiter.Config{
		Next:         readOnly,
		Max:          opts.Max,
		Expiration:   opts.Window,
		KeyGenerator: key,
		Storage:      opts.Storage,
		LimitReached: func(*fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "too many requests")
		},
	})
}

func readOnly(c *fiber.Ctx) bool {
	switch c.Method() {
	case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
		return true
	}
	return false
}

func key(c *fiber.Ctx) string {
	if scope, err := auth.ScopeFrom(c); err == nil {
		return "user:" + scope.UserID.String()
	}
	return "ip:" + c.IP()
}
