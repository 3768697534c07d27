// internal/domain/models.go
package domain

import (
	"database/sql"
	"time"
)

// User is the typed view of a users row needed by the authentication flow.
// Everything else reads users through the generic record layer, which never
// exposes the password or refresh-token columns.
type User struct {
	ID           int64
	Name         string
	Username     string
	Email        string
	Role         string
	PasswordHash string
	UnitID       sql.NullInt64
	IsActive     bool
	LastLogin    sql.NullTime
	CreatedAt    time.Time
}
