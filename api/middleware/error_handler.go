// api/middleware/error_handler.go
package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/mtofleet/fleet-backend/internal/auth"
	"github.com/mtofleet/fleet-backend/internal/core"
	"github.com/mtofleet/fleet-backend/internal/storage"
)

// ErrorHandler creates a Gin middleware for centralized error handling. Any
// error attached with c.Error during handler execution is mapped to the
// structured error envelope here, so handlers can bail with a bare error.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		// Only the last error drives the response.
		err := c.Errors.Last().Err
		customLog.Warnf("[ErrorHandler] Detected error: %v | Type: %T", err, err)

		statusCode := http.StatusInternalServerError
		code := "INTERNAL_ERROR"
		message := "An unexpected internal server error occurred"
		var field string
		var details any

		var dupErr *storage.DuplicateError
		var valErr *storage.ValidationError
		var bindingErrs validator.ValidationErrors

		switch {
		case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrUserNotFound):
			statusCode = http.StatusNotFound
			code = "NOT_FOUND"
			message = err.Error()
		case errors.As(err, &dupErr):
			statusCode = http.StatusConflict
			code = "DUPLICATE_ENTRY"
			message = dupErr.Error()
			field = dupErr.Field
		case errors.As(err, &valErr):
			statusCode = http.StatusBadRequest
			code = "VALIDATION_ERROR"
			message = "Validation failed. Please check your input"
			details = valErr.Fields
		case errors.As(err, &bindingErrs):
			statusCode = http.StatusBadRequest
			code = "VALIDATION_ERROR"
			message = "Validation failed. Please check your input"
			fields := make([]storage.FieldError, 0, len(bindingErrs))
			for _, fe := range bindingErrs {
				fields = append(fields, storage.FieldError{Field: fe.Field(), Message: "failed on " + fe.Tag()})
			}
			details = fields
		case errors.Is(err, core.ErrUnknownColumn), errors.Is(err, core.ErrInvalidFilterValue):
			statusCode = http.StatusBadRequest
			code = "INVALID_QUERY"
			message = err.Error()
		case errors.Is(err, storage.ErrInvalidCredentials):
			statusCode = http.StatusUnauthorized
			code = "INVALID_CREDENTIALS"
			message = "Invalid username or password"
		case errors.Is(err, auth.ErrTokenExpired):
			statusCode = http.StatusUnauthorized
			code = "TOKEN_EXPIRED"
			message = "Authentication token has expired"
		case errors.Is(err, auth.ErrTokenMalformed), errors.Is(err, auth.ErrTokenInvalid),
			errors.Is(err, auth.ErrTokenClaimsInvalid), errors.Is(err, auth.ErrUnexpectedSigningMethod),
			errors.Is(err, auth.ErrUnauthorized):
			statusCode = http.StatusUnauthorized
			code = "UNAUTHORIZED"
			message = "Invalid or malformed authentication token"
		case errors.Is(err, auth.ErrForbidden):
			statusCode = http.StatusForbidden
			code = "FORBIDDEN"
			message = "You are not authorized to perform this action"
		default:
			customLog.Errorf("Unhandled error type: %T, Error: %v", err, err)
		}

		if c.Writer.Written() {
			customLog.Warnf("[ErrorHandler] Response already written before handling error")
			return
		}

		body := gin.H{
			"code":      code,
			"message":   message,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}
		if field != "" {
			body["field"] = field
		}
		if details != nil {
			body["details"] = details
		}
		c.AbortWithStatusJSON(statusCode, gin.H{"success": false, "error": body})
	}
}
