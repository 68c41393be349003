package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/apperr"
)

func decode(t *testing.T, res *http.Response) map[string]any {
	t.Helper()
	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
		details int
	}{
		{"validation", apperr.Validation("validation failed", apperr.FieldError{Field: "amount", Message: "must be greater than 0"}), 400, "validation failed", 1},
		{"not found", apperr.NotFound("expense not found"), 404, "expense not found", 0},
		{"schema", apperr.SchemaMissing("budgets"), 503, "table budgets does not exist. Run the SQL migration to create it.", 0},
		{"conflict", apperr.Conflict("category already exists"), 409, "category already exists", 0},
		{"upstream", apperr.Upstream("LLM request failed", errors.New("503")), 502, "LLM request failed", 0},
		{"internal hides detail", apperr.Internal("query expenses", errors.New("conn reset")), 500, "internal server error", 0},
		{"unknown error", errors.New("boom"), 500, "internal server error", 0},
		{"fiber error", fiber.NewError(fiber.StatusMethodNotAllowed, "nope"), 405, "nope", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
			app.Get("/", func(*fiber.Ctx) error { return tt.err })

			res, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, res.StatusCode)
			assert.Equal(t, tt.status, StatusOf(tt.err))

			body := decode(t, res)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.message, body["error"])
			if tt.details == 0 {
				assert.NotContains(t, body, "details")
			} else {
				assert.Len(t, body["details"], tt.details)
			}
		})
	}
}

func TestOKAddsSuccess(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return OK(c, fiber.Map{"n": 1}) })
	app.Post("/", func(c *fiber.Ctx) error { return Created(c, fiber.Map{"n": 2}) })

	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	body := decode(t, res)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 1, body["n"])

	res, err = app.Test(httptest.NewRequest(http.MethodPost, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, res.StatusCode)
}

func TestNewPagination(t *testing.T) {
	assert.Equal(t, Pagination{Page: 1, Limit: 20, Total: 0, TotalPages: 0}, NewPagination(Page{1, 20}, 0))
	assert.Equal(t, Pagination{Page: 2, Limit: 20, Total: 41, TotalPages: 3}, NewPagination(Page{2, 20}, 41))
	assert.Equal(t, Pagination{Page: 1, Limit: 10, Total: 10, TotalPages: 1}, NewPagination(Page{1, 10}, 10))
	assert.Equal(t, 20, Page{Number: 3, Limit: 10}.Offset())
}

func run(t *testing.T, target string, h fiber.Handler) int {
	t.Helper()
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/items/:id?", h)
	res, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	require.NoError(t, err)
	return res.StatusCode
}

func TestParsePage(t *testing.T) {
	var got Page
	h := func(c *fiber.Ctx) error {
		p, err := ParsePage(c, "page", "limit", 20, 100)
		if err != nil {
			return err
		}
		got = p
		return c.SendStatus(fiber.StatusNoContent)
	}

	assert.Equal(t, 204, run(t, "/items", h))
	assert.Equal(t, Page{Number: 1, Limit: 20}, got)

	assert.Equal(t, 204, run(t, "/items?page=3&limit=100", h))
	assert.Equal(t, Page{Number: 3, Limit: 100}, got)

	assert.Equal(t, 204, run(t, "/items?page=92233720368547758&limit=100", h))
	assert.Equal(t, Page{Number: 92233720368547758, Limit: 100}, got)
	assert.GreaterOrEqual(t, got.Offset(), 0)

	for _, q := range []string{"page=0", "page=x", "limit=101", "limit=0", "page=9223372036854775807&limit=100", "page=92233720368547759"} {
		assert.Equal(t, 400, run(t, "/items?"+q, h), q)
	}
}

func TestParamID(t *testing.T) {
	h := func(c *fiber.Ctx) error {
		if _, err := ParamID(c); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
	assert.Equal(t, 204, run(t, "/items/42", h))
	assert.Equal(t, 400, run(t, "/items/abc", h))
	assert.Equal(t, 400, run(t, "/items/-1", h))
}

func TestPeriod(t *testing.T) {
	now := time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC)
	var m, y int
	h := func(c *fiber.Ctx) error {
		var err error
		m, y, err = Period(c, now)
		if err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}

	assert.Equal(t, 204, run(t, "/items", h))
	assert.Equal(t, []int{5, 2024}, []int{m, y})

	assert.Equal(t, 204, run(t, "/items?month=12&year=2023", h))
	assert.Equal(t, []int{12, 2023}, []int{m, y})

	assert.Equal(t, 400, run(t, "/items?month=13", h))
	assert.Equal(t, 400, run(t, "/items?year=1999", h))
	assert.Equal(t, 400, run(t, "/items?year=10000", h))

	assert.Equal(t, 204, run(t, "/items?year=2200", h))
	assert.Equal(t, 2200, y)
	assert.True(t, ValidYear(MaxYear))
	assert.False(t, ValidYear(MinYear-1))
}

func TestMonthRange(t *testing.T) {
	start, end := MonthRange(12, 2023, time.UTC)
	assert.Equal(t, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestParseTime(t *testing.T) {
	got, err := ParseTime("2024-05-01T10:30:00Z", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC), got)

	got, err = ParseTime("2024-05-01", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseTime("May 1st", time.UTC)
	assert.Error(t, err)
}

func TestField(t *testing.T) {
	var body struct {
		Color Field[string] `json:"color"`
		Icon  Field[string] `json:"icon"`
		Name  Field[string] `json:"name"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"color":null,"icon":"leaf"}`), &body))

	assert.True(t, body.Color.Set)
	assert.True(t, body.Color.Null)
	assert.Nil(t, body.Color.Ptr())

	assert.True(t, body.Icon.Set)
	assert.Equal(t, "leaf", *body.Icon.Ptr())

	assert.False(t, body.Name.Set)
	assert.Nil(t, body.Name.Ptr())
}

func TestValidator(t *testing.T) {
	v := &Validator{}
	long := strings.Repeat("ñ", 101)
	short := strings.Repeat("ñ", 100)
	v.MaxLen(&short, "name", 100)
	v.MaxLen(nil, "color", 50)
	require.NoError(t, v.Err())

	v.MaxLen(&long, "name", 100)
	v.Check(false, "amount", "must be greater than 0")

	e, ok := apperr.As(v.Err())
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, e.Kind)
	assert.Equal(t, []apperr.FieldError{
		{Field: "name", Message: "must be at most 100 characters"},
		{Field: "amount", Message: "must be greater than 0"},
	}, e.Details)
}

func TestBindJSON(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Post("/", func(c *fiber.Ctx) error {
		var body struct {
			Name string `json:"name"`
		}
		if err := BindJSON(c, &body); err != nil {
			return err
		}
		return c.SendString(body.Name)
	})

	for _, tc := range []struct {
		body   string
		status int
	}{
		{`{"name":"x"}`, 200},
		{`{"name":`, 400},
		{``, 400},
	} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
		req.Header.Set("Content-Type", "application/json")
		res, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, tc.status, res.StatusCode, tc.body)
	}
}

func TestTrimPtr(t *testing.T) {
	assert.Nil(t, TrimPtr(nil))
	blank := "   "
	assert.Nil(t, TrimPtr(&blank))
	s := "  Café "
	assert.Equal(t, "Café", *TrimPtr(&s))
}
