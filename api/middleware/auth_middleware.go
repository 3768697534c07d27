// api/middleware/auth_middleware.go
package middleware

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mtofleet/fleet-backend/config"
	"github.com/mtofleet/fleet-backend/internal/auth"
	"github.com/mtofleet/fleet-backend/internal/logger"
	"github.com/mtofleet/fleet-backend/internal/storage"
)

var customLog = logger.NewLogger()

// Context keys set by AuthMiddleware for downstream handlers.
const (
	ContextUserIDKey   = "userId"
	ContextUsernameKey = "username"
	ContextUserRoleKey = "userRole"
)

func abortUnauthorized(c *gin.Context, err error, message string) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": message})
}

// AuthMiddleware creates a gin middleware for checking JWT authentication.
// The bearer token is validated against the configured secret and the user
// it names must still exist and be active.
func AuthMiddleware(db *sql.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, auth.ErrUnauthorized, "Authorization header required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, auth.ErrUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}
		tokenString := parts[1]

		claims, err := auth.ValidateToken(tokenString, cfg.JWTSecret)
		if err != nil {
			customLog.Warnf("AuthMiddleware: Token validation failed: %v", err)
			message := "Invalid token"
			switch {
			case errors.Is(err, auth.ErrTokenExpired):
				message = "Authentication token has expired"
			case errors.Is(err, auth.ErrTokenMalformed):
				message = "Malformed authentication token"
			}
			abortUnauthorized(c, err, message)
			return
		}

		user, err := storage.FindUserByID(c.Request.Context(), db, claims.UserID)
		if err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				abortUnauthorized(c, err, "User no longer exists")
				return
			}
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
			return
		}
		if !user.IsActive {
			abortUnauthorized(c, auth.ErrUnauthorized, "User account is deactivated")
			return
		}

		c.Set(ContextUserIDKey, user.ID)
		c.Set(ContextUsernameKey, user.Username)
		c.Set(ContextUserRoleKey, user.Role)

		c.Next()
	}
}

// RequireRoles restricts an endpoint to the listed roles. Must run after
// AuthMiddleware, which stores the authenticated role in the context.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextUserRoleKey)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		_ = c.Error(auth.ErrForbidden)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success": false,
			"message": "Role " + role + " is not authorized to access this route",
		})
	}
}
