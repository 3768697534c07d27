// api/handlers/respond.go
package handlers

import (
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mtofleet/fleet-backend/internal/core"
	"github.com/mtofleet/fleet-backend/internal/logger"
)

var customLog = logger.NewLogger()

// sendSuccess writes the standard success envelope.
func sendSuccess(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// sendMessage writes a success envelope carrying only a message.
func sendMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": true, "message": message})
}

// sendPaginated writes a record page with its pagination block. An empty page
// of an empty result set reports zero pages.
func sendPaginated(c *gin.Context, records any, total int64, p core.Pagination) {
	pages := int64(0)
	if total > 0 {
		pages = int64(math.Ceil(float64(total) / float64(p.Limit)))
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    records,
		"pagination": gin.H{
			"page":  p.Page,
			"limit": p.Limit,
			"total": total,
			"pages": pages,
		},
	})
}

// sendError writes the structured error envelope directly, for cases a handler
// resolves itself instead of deferring to the error middleware.
func sendError(c *gin.Context, status int, code, message, field string) {
	body := gin.H{
		"code":      code,
		"message":   message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if field != "" {
		body["field"] = field
	}
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": body})
}
