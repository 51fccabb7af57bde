package middleware

import (
	"time"

	"fanvault/pkg/logger"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs one line per request, escalating the level on 4xx/5xx.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		zl := log.Zerolog()
		event := zl.Info()
		if c.Writer.Status() >= 500 {
			event = zl.Error()
		} else if c.Writer.Status() >= 400 {
			event = zl.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("user_id", c.GetString(ContextUserID)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}
