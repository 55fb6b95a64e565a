package middleware

import (
	"strconv"
	"time"

	"booklist/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics records request counts and latency per matched route template.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		metrics.RecordHTTPRequest(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
		)
	}
}
