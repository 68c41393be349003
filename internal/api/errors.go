// Package api holds the HTTP plumbing shared by every resource handler:
// error rendering, response envelopes, parameter parsing and validation.
package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/apperr"
)

type errorBody struct {
	Success bool                `json:"success"`
	Error   string              `json:"error"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

// ErrorHandler is the single place errors become responses.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(errorBody{Error: fe.Message})
	}

	e, ok := apperr.As(err)
	if !ok {
		e = apperr.Internal("unhandled error", err)
	}

	msg := e.Message
	switch e.Kind {
	case apperr.KindInternal:
		logx.WithContext(c.UserContext()).Errorw(e.Error(),
			logx.Field("method", c.Method()),
			logx.Field("path", c.Path()),
		)
		msg = "internal server error"
	case apperr.KindUpstream, apperr.KindSchemaMissing:
		logx.WithContext(c.UserContext()).Errorw(e.Error(), logx.Field("path", c.Path()))
	}

	return c.Status(e.Status()).JSON(errorBody{Error: msg, Details: e.Details})
}

// StatusOf reports the status ErrorHandler will use for err.
func StatusOf(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	if e, ok := apperr.As(err); ok {
		return e.Status()
	}
	return fiber.StatusInternalServerError
}
