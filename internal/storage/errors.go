// internal/storage/errors.go
package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// Specific errors surfaced by the storage layer. Handlers and the centralized
// error middleware map these to HTTP responses.
var (
	ErrNotFound           = errors.New("record not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// DuplicateError reports a UNIQUE constraint violation and identifies the
// offending column.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s already exists", e.Field)
}

// FieldError is a single per-field validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports one or more payload fields that failed structural
// validation against the entity's column spec.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// mapSqliteError converts driver-level constraint errors into storage errors.
// sqlite reports unique violations as "UNIQUE constraint failed: table.column";
// the column name is lifted into a DuplicateError so callers can tell the
// client which field collided.
func mapSqliteError(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}
	if sqliteErr.Code == sqlite3.ErrConstraint && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		msg := sqliteErr.Error()
		if idx := strings.LastIndex(msg, "."); idx >= 0 && idx < len(msg)-1 {
			return &DuplicateError{Field: strings.TrimSpace(msg[idx+1:])}
		}
		return &DuplicateError{Field: "unknown"}
	}
	return err
}
