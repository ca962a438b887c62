package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/billalcoder/skinCare/pkg/metrics"
)

// Metrics records per-route request latency. Unmatched requests share one
// label so probing random paths cannot blow up metric cardinality, and the
// scrape endpoint itself is not measured.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		if route == "/metrics" {
			return
		}

		metrics.APILatency.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
