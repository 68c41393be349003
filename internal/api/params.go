package api

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/apperr"
)

// Years accepted for budget periods and ?year= filters.
const (
	MinYear = 2000
	MaxYear = 9999
)

type Page struct {
	Number int
	Limit  int
}

func (p Page) Offset() int { return (p.Number - 1) * p.Limit }

// ParsePage reads a 1-based page number and a page size bounded by max.
func ParsePage(c *fiber.Ctx, pageKey, limitKey string, def, max int) (Page, error) {
	v := &Validator{}
	p := Page{Number: 1, Limit: def}

	if raw := strings.TrimSpace(c.Query(pageKey)); raw != "" {
		n, err := strconv.Atoi(raw)
		// the offset (n-1)*limit must fit in an int
		v.Check(err == nil && n >= 1 && n <= math.MaxInt/max, pageKey, "must be between 1 and "+strconv.Itoa(math.MaxInt/max))
		p.Number = n
	}
	if raw := strings.TrimSpace(c.Query(limitKey)); raw != "" {
		n, err := strconv.Atoi(raw)
		v.Check(err == nil && n >= 1 && n <= max, limitKey, "must be between 1 and "+strconv.Itoa(max))
		p.Limit = n
	}
	if err := v.Err(); err != nil {
		return Page{}, err
	}
	return p, nil
}

// ParamID reads the positive integer :id route parameter.
func ParamID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid id", apperr.FieldError{Field: "id", Message: "must be a positive integer"})
	}
	return id, nil
}

// ParseTime accepts RFC 3339 timestamps and bare dates.
func ParseTime(raw string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", raw, loc)
}

func QueryTime(c *fiber.Ctx, key string, loc *time.Location) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	t, err := ParseTime(raw, loc)
	if err != nil {
		return nil, apperr.Validation("invalid query", apperr.FieldError{Field: key, Message: "must be an ISO date"})
	}
	return &t, nil
}

func QueryDecimal(c *fiber.Ctx, key string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, apperr.Validation("invalid query", apperr.FieldError{Field: key, Message: "must be a number"})
	}
	return &d, nil
}

func QueryInt64(c *fiber.Ctx, key string) (*int64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return nil, apperr.Validation("invalid query", apperr.FieldError{Field: key, Message: "must be a positive integer"})
	}
	return &n, nil
}

// QueryBool returns nil when key is absent.
func QueryBool(c *fiber.Ctx, key string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperr.Validation("invalid query", apperr.FieldError{Field: key, Message: "must be true or false"})
	}
	return &b, nil
}

// Period reads ?month=&year=, defaulting to the month containing now.
func Period(c *fiber.Ctx, now time.Time) (month, year int, err error) {
	month, year = int(now.Month()), now.Year()
	v := &Validator{}

	if raw := strings.TrimSpace(c.Query("month")); raw != "" {
		n, err := strconv.Atoi(raw)
		v.Check(err == nil && n >= 1 && n <= 12, "month", "must be between 1 and 12")
		month = n
	}
	if raw := strings.TrimSpace(c.Query("year")); raw != "" {
		n, err := strconv.Atoi(raw)
		v.Check(err == nil && ValidYear(n), "year", yearMsg)
		year = n
	}
	if err := v.Err(); err != nil {
		return 0, 0, err
	}
	return month, year, nil
}

var yearMsg = "must be between " + strconv.Itoa(MinYear) + " and " + strconv.Itoa(MaxYear)

// ValidYear reports whether y is an accepted period year.
func ValidYear(y int) bool { return y >= MinYear && y <= MaxYear }

// MonthRange is the half-open interval [first day of month, first day of next month).
func MonthRange(month, year int, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}
