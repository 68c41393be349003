package api

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/apperr"
)

// Validator collects field errors so a response lists every problem at once.
type Validator struct {
	errs []apperr.FieldError
}

func (v *Validator) Check(ok bool, field, msg string) {
	if !ok {
		v.errs = append(v.errs, apperr.FieldError{Field: field, Message: msg})
	}
}

func (v *Validator) MaxLen(s *string, field string, n int) {
	if s != nil {
		v.Check(utf8.RuneCountInString(*s) <= n, field, "must be at most "+strconv.Itoa(n)+" characters")
	}
}

func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.Validation("validation failed", v.errs...)
}

// BindJSON decodes the request body into dst.
func BindJSON(c *fiber.Ctx, dst any) error {
	if len(c.Body()) == 0 {
		return apperr.Validation("invalid body")
	}
	if err := c.BodyParser(dst); err != nil {
		return apperr.Validation("invalid body")
	}
	return nil
}

// TrimPtr trims s in place and turns blank strings into nil.
func TrimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
