// internal/core/validation.go
package core

import (
	"regexp"
)

// Regular expression for valid column/sort identifiers (alphanumeric + underscore)
var nameValidationRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ColumnType is the storage type an entity column is declared with.
type ColumnType string

const (
	ColumnText    ColumnType = "TEXT"
	ColumnInteger ColumnType = "INTEGER"
	ColumnReal    ColumnType = "REAL"
	ColumnBoolean ColumnType = "BOOLEAN" // stored as INTEGER 0/1
)

// IsValidIdentifier checks if a string is a valid identifier (e.g. a column or sort field).
// Applies basic format and length checks.
func IsValidIdentifier(name string) bool {
	return nameValidationRegex.MatchString(name) && len(name) > 0 && len(name) <= 64
}
