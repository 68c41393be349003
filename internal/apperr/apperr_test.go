package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromDB(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   Kind
		status int
		msg    string
	}{
		{"missing table", &pgconn.PgError{Code: "42P01"}, KindSchemaMissing, http.StatusServiceUnavailable,
			"table budgets does not exist. Run the SQL migration to create it."},
		{"unique", &pgconn.PgError{Code: "23505"}, KindConflict, http.StatusConflict, "budget already exists"},
		{"wrapped unique", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), KindConflict, http.StatusConflict, "budget already exists"},
		{"foreign key", &pgconn.PgError{Code: "23503", ConstraintName: "budgets_category_id_fkey"}, KindValidation, http.StatusBadRequest, "invalid data"},
		{"check", &pgconn.PgError{Code: "23514", ColumnName: "amount"}, KindValidation, http.StatusBadRequest, "invalid data"},
		{"no rows", pgx.ErrNoRows, KindNotFound, http.StatusNotFound, "record not found"},
		{"other pg error", &pgconn.PgError{Code: "57014"}, KindInternal, http.StatusInternalServerError, "query budgets"},
		{"plain error", errors.New("boom"), KindInternal, http.StatusInternalServerError, "query budgets"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromDB(tt.err, "budgets", "budget already exists")
			e, ok := As(got)
			require.True(t, ok)
			assert.Equal(t, tt.kind, e.Kind)
			assert.Equal(t, tt.status, e.Status())
			assert.Equal(t, tt.msg, e.Message)
		})
	}
}

func TestFromDBKeepsDetails(t *testing.T) {
	e, ok := As(FromDB(&pgconn.PgError{Code: "23514", ColumnName: "amount"}, "expenses", ""))
	require.True(t, ok)
	require.Len(t, e.Details, 1)
	assert.Equal(t, "amount", e.Details[0].Field)
}

func TestFromDBPassThrough(t *testing.T) {
	assert.NoError(t, FromDB(nil, "x", ""))

	nf := NotFound("expense not found")
	assert.Same(t, nf, FromDB(nf, "expenses", ""))

	e, _ := As(FromDB(&pgconn.PgError{Code: "23505"}, "x", ""))
	assert.Equal(t, "record already exists", e.Message)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, IsUniqueViolation(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23505"})))
	assert.True(t, IsUniqueViolation(Conflict("dup")))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "42P01"}))
	assert.False(t, IsUniqueViolation(errors.New("x")))
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "bad gateway: timeout", Upstream("bad gateway", errors.New("timeout")).Error())
	assert.Equal(t, "nope", Unauthorized("nope").Error())
	assert.True(t, Is(Validation("x"), KindValidation))
	assert.False(t, Is(errors.New("x"), KindValidation))
}
