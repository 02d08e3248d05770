package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/korattejas/beautyden-nextjs-sub001/pkg/metrics"
)

// Metrics records request count, latency and errors per route template.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method

		m.RequestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
		m.RequestTotal.WithLabelValues(method, path, status).Inc()

		switch code := c.Writer.Status(); {
		case code >= 500:
			m.ErrorTotal.WithLabelValues(method, path, "server").Inc()
		case code >= 400:
			m.ErrorTotal.WithLabelValues(method, path, "client").Inc()
		}
	}
}
