package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"cryptosense/internal/metrics"

	"github.com/gin-gonic/gin"
)

// APIKeyAuth returns a Gin middleware that enforces X-API-Key header validation.
// If key is empty, the middleware is a no-op (auth disabled).
func APIKeyAuth(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}
		provided := strings.TrimSpace(c.GetHeader("X-API-Key"))
		if provided == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing X-API-Key header"})
			return
		}
		if provided != key {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid API key"})
			return
		}
		c.Next()
	}
}

// Metrics records request counts and latency per route. /metrics and
// /health are skipped.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "/metrics" || route == "/health" {
			c.Next()
			return
		}
		if route == "" {
			route = "unmatched"
		}

		start := time.Now()
		c.Next()

		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
