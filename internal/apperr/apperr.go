// Package apperr is the error taxonomy shared by handlers and repositories.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindValidation
	KindNotFound
	KindSchemaMissing
	KindConflict
	KindUpstream
)

// Postgres SQLSTATE codes we translate.
const (
	codeUndefinedTable      = "42P01"
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Kind    Kind
	Message string
	Details []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status maps the kind to an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindSchemaMissing:
		return http.StatusServiceUnavailable
	case KindConflict:
		return http.StatusConflict
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func Validation(msg string, details ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: msg, Details: details}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func SchemaMissing(table string) *Error {
	return &Error{
		Kind:    KindSchemaMissing,
		Message: fmt.Sprintf("table %s does not exist. Run the SQL migration to create it.", table),
	}
}

func Upstream(msg string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: msg, Err: err}
}

// Internal wraps an unexpected failure. msg is logged, never shown to callers.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}

// FromDB translates a repository error for table. conflictMsg is used for
// unique violations; an empty value falls back to a generic message.
func FromDB(err error, table, conflictMsg string) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NotFound("record not found")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUndefinedTable:
			return SchemaMissing(table)
		case codeUniqueViolation:
			if conflictMsg == "" {
				conflictMsg = "record already exists"
			}
			return &Error{Kind: KindConflict, Message: conflictMsg, Err: err}
		case codeForeignKeyViolation:
			return &Error{Kind: KindValidation, Message: "invalid data", Err: err, Details: []FieldError{
				{Field: columnField(pgErr), Message: "referenced record does not exist"},
			}}
		case codeCheckViolation:
			return &Error{Kind: KindValidation, Message: "invalid data", Err: err, Details: []FieldError{
				{Field: columnField(pgErr), Message: "value out of range"},
			}}
		}
	}
	return Internal("query "+table, err)
}

// IsUniqueViolation lets callers ignore benign insert races.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUniqueViolation
	}
	return Is(err, KindConflict)
}

func columnField(pgErr *pgconn.PgError) string {
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	return pgErr.ConstraintName
}
