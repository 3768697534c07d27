// api/handlers/auth_handler.go
package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mtofleet/fleet-backend/api/middleware"
	"github.com/mtofleet/fleet-backend/api/models"
	"github.com/mtofleet/fleet-backend/config"
	"github.com/mtofleet/fleet-backend/internal/auth"
	"github.com/mtofleet/fleet-backend/internal/domain"
	"github.com/mtofleet/fleet-backend/internal/storage"
)

// AuthHandler holds dependencies for authentication handlers.
type AuthHandler struct {
	DB  *sql.DB
	Cfg *config.Config
}

// NewAuthHandler creates a new AuthHandler with dependencies.
func NewAuthHandler(db *sql.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{DB: db, Cfg: cfg}
}

// userSummary is the public projection of a user returned by auth endpoints.
func userSummary(user *domain.User) gin.H {
	summary := gin.H{
		"id":       user.ID,
		"name":     user.Name,
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
		"isActive": user.IsActive,
	}
	if user.UnitID.Valid {
		summary["unitId"] = user.UnitID.Int64
	}
	if user.LastLogin.Valid {
		summary["lastLogin"] = user.LastLogin.Time
	}
	return summary
}

func (h *AuthHandler) identityOf(user *domain.User) auth.Identity {
	return auth.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		Email:    user.Email,
	}
}

// Login authenticates by username or email and issues an access/refresh pair.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		customLog.Warnf("Login binding error: %v", err)
		_ = c.Error(err)
		return
	}

	user, err := storage.FindUserByLogin(c.Request.Context(), h.DB, req.Username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			// Do not reveal whether the account exists.
			_ = c.Error(storage.ErrInvalidCredentials)
			return
		}
		_ = c.Error(err)
		return
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		customLog.Warnf("Login attempt failed for %s: invalid password", user.Username)
		_ = c.Error(storage.ErrInvalidCredentials)
		return
	}
	if !user.IsActive {
		sendError(c, http.StatusUnauthorized, "ACCOUNT_DEACTIVATED", "User account is deactivated", "")
		return
	}

	identity := h.identityOf(user)
	token, err := auth.GenerateToken(identity, h.Cfg.JWTSecret, h.Cfg.JWTExpiration)
	if err != nil {
		_ = c.Error(err)
		return
	}
	refreshToken, err := auth.GenerateRefreshToken(identity, h.Cfg.JWTSecret, h.Cfg.RefreshExpiration)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := storage.SetRefreshToken(c.Request.Context(), h.DB, user.ID, refreshToken); err != nil {
		_ = c.Error(err)
		return
	}
	if err := storage.TouchLastLogin(c.Request.Context(), h.DB, user.ID); err != nil {
		customLog.Warnf("Login: failed to stamp last login for user %d: %v", user.ID, err)
	}

	customLog.Infof("User %s logged in", user.Username)
	sendSuccess(c, http.StatusOK, models.LoginResponse{
		Token:        token,
		RefreshToken: refreshToken,
		User:         userSummary(user),
	})
}

// Refresh exchanges a valid refresh token for a new token pair. The stored
// token is rotated so each refresh token is single-use.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	identity, err := auth.ValidateRefreshToken(req.RefreshToken, h.Cfg.JWTSecret)
	if err != nil {
		_ = c.Error(err)
		return
	}

	matches, err := storage.RefreshTokenMatches(c.Request.Context(), h.DB, identity.UserID, req.RefreshToken)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !matches {
		_ = c.Error(auth.ErrUnauthorized)
		return
	}

	user, err := storage.FindUserByID(c.Request.Context(), h.DB, identity.UserID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !user.IsActive {
		sendError(c, http.StatusUnauthorized, "ACCOUNT_DEACTIVATED", "User account is deactivated", "")
		return
	}

	fresh := h.identityOf(user)
	token, err := auth.GenerateToken(fresh, h.Cfg.JWTSecret, h.Cfg.JWTExpiration)
	if err != nil {
		_ = c.Error(err)
		return
	}
	refreshToken, err := auth.GenerateRefreshToken(fresh, h.Cfg.JWTSecret, h.Cfg.RefreshExpiration)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := storage.SetRefreshToken(c.Request.Context(), h.DB, user.ID, refreshToken); err != nil {
		_ = c.Error(err)
		return
	}

	sendSuccess(c, http.StatusOK, models.LoginResponse{
		Token:        token,
		RefreshToken: refreshToken,
		User:         userSummary(user),
	})
}

// Logout clears the stored refresh token for the authenticated user.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID := c.GetInt64(middleware.ContextUserIDKey)
	if err := storage.SetRefreshToken(c.Request.Context(), h.DB, userID, ""); err != nil {
		_ = c.Error(err)
		return
	}
	sendMessage(c, http.StatusOK, "Logged out successfully")
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetInt64(middleware.ContextUserIDKey)
	user, err := storage.FindUserByID(c.Request.Context(), h.DB, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	sendSuccess(c, http.StatusOK, userSummary(user))
}
