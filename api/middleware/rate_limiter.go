package middleware

import (
	"net"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a sliding-window request counter keyed by client IP.
type RateLimiter struct {
	requests map[string][]time.Time
	mutex    sync.Mutex
	limit    int
	window   time.Duration
}

// NewRateLimiter builds a limiter allowing `limit` requests per `window`.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
	}
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := time.Now()
	windowStart := now.Add(-rl.window)

	// Remove old timestamps outside the window
	requests := rl.requests[ip]
	filteredRequests := []time.Time{}
	for _, t := range requests {
		if t.After(windowStart) {
			filteredRequests = append(filteredRequests, t)
		}
	}

	rl.requests[ip] = filteredRequests

	if len(filteredRequests) >= rl.limit {
		return false
	}

	rl.requests[ip] = append(rl.requests[ip], now)
	return true
}

func getIP(c *gin.Context) string {
	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.ClientIP()
	}
	return ip
}

// RateLimitMiddleware rejects requests beyond the limiter's policy with 429.
func RateLimitMiddleware(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := getIP(c)
		if !rl.Allow(ip) {
			c.JSON(429, gin.H{"success": false, "message": "Too many requests. Please wait."})
			c.Abort()
			return
		}
		c.Next()
	}
}
