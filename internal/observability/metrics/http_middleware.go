package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
)

// GinMiddleware records latency metrics for each HTTP request. Requests
// that match no route share one label so scanners cannot inflate the
// series count.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
