// internal/storage/user_repo.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mtofleet/fleet-backend/internal/domain"
)

// --- Typed user operations for the authentication flow ---

const userSelectColumns = `id, name, username, email, role, password, unitId, isActive, lastLogin, createdAt`

func scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	// go-sqlite3 hands BOOLEAN columns to Scan as Go bools.
	err := row.Scan(&user.ID, &user.Name, &user.Username, &user.Email, &user.Role,
		&user.PasswordHash, &user.UnitID, &user.IsActive, &user.LastLogin, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error finding user: %w", err)
	}
	return &user, nil
}

// FindUserByLogin retrieves a user by username or email (case-insensitive),
// including the password hash.
func FindUserByLogin(ctx context.Context, db *sql.DB, login string) (*domain.User, error) {
	sqlStatement := `SELECT ` + userSelectColumns + ` FROM users WHERE lower(username) = ? OR lower(email) = ? LIMIT 1`
	login = strings.ToLower(login)
	return scanUser(db.QueryRowContext(ctx, sqlStatement, login, login))
}

// FindUserByID retrieves a user by id, including the password hash.
func FindUserByID(ctx context.Context, db *sql.DB, id int64) (*domain.User, error) {
	sqlStatement := `SELECT ` + userSelectColumns + ` FROM users WHERE id = ? LIMIT 1`
	return scanUser(db.QueryRowContext(ctx, sqlStatement, id))
}

// SetRefreshToken stores the user's current refresh token. Pass an empty
// string to clear it (logout).
func SetRefreshToken(ctx context.Context, db *sql.DB, userID int64, token string) error {
	var value any
	if token != "" {
		value = token
	}
	_, err := db.ExecContext(ctx, `UPDATE users SET refreshToken = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, value, userID)
	if err != nil {
		return fmt.Errorf("database error storing refresh token: %w", err)
	}
	return nil
}

// RefreshTokenMatches reports whether the stored refresh token for the user
// equals the presented one.
func RefreshTokenMatches(ctx context.Context, db *sql.DB, userID int64, token string) (bool, error) {
	var stored sql.NullString
	err := db.QueryRowContext(ctx, `SELECT refreshToken FROM users WHERE id = ?`, userID).Scan(&stored)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrUserNotFound
		}
		return false, fmt.Errorf("database error reading refresh token: %w", err)
	}
	return stored.Valid && stored.String == token, nil
}

// TouchLastLogin stamps the user's last successful login time.
func TouchLastLogin(ctx context.Context, db *sql.DB, userID int64) error {
	_, err := db.ExecContext(ctx, `UPDATE users SET lastLogin = CURRENT_TIMESTAMP WHERE id = ?`, userID)
	if err != nil {
		return fmt.Errorf("database error updating last login: %w", err)
	}
	return nil
}
