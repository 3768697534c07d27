// api/routes/validate.go
package routes

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mtofleet/fleet-backend/internal/core"
)

func abortInvalid(c *gin.Context, code, message, field string) {
	body := gin.H{
		"code":      code,
		"message":   message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if field != "" {
		body["field"] = field
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "error": body})
}

// IDParam validates that the named path parameter is a positive integer.
func IDParam(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param(name), 10, 64)
		if err != nil || id <= 0 {
			abortInvalid(c, "INVALID_INPUT", name+" must be a positive integer", name)
			return
		}
		c.Next()
	}
}

// Pagination rejects requests whose page, limit or sort parameters cannot be
// interpreted. Out-of-range numbers are clamped downstream, not rejected; only
// a sort key that is not a plain identifier fails here.
func Pagination() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := core.ParsePagination(c.Request.URL.Query()); err != nil {
			abortInvalid(c, "INVALID_QUERY", err.Error(), "sort")
			return
		}
		c.Next()
	}
}
