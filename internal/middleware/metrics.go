package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// UnmatchedRoute labels requests that hit no registered route.
const UnmatchedRoute = "unmatched"

type httpMetrics interface {
	ObserveHTTPRequest(method, path string, status int, duration time.Duration)
	RecordDegradedResponse(path string)
}

// Metrics records request latency per route template and counts responses
// served from a partially loaded catalog. Paths in skip are not observed.
func Metrics(metrics httpMetrics, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, path := range skip {
		skipped[path] = struct{}{}
	}
	return func(c *gin.Context) {
		if metrics == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if _, ok := skipped[path]; ok {
			return
		}
		if path == "" {
			path = UnmatchedRoute
		}
		metrics.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
		if meta := ExtractMeta(c); meta != nil {
			if _, partial := meta[catalogErrorKey]; partial {
				metrics.RecordDegradedResponse(path)
			}
		}
	}
}
