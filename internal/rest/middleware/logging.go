package middleware

import (
	"time"

	"github.com/dialhaven/dialhaven/internal/logger"
	"github.com/gin-gonic/gin"
)

// LoggingMiddleware returns a gin middleware that logs HTTP requests using our standard logger
func LoggingMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Start timer
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		// Process request
		c.Next()

		// Calculate latency
		latency := time.Since(start)

		fields := []interface{}{
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", path,
			"query", raw,
			"latency_ms", latency.Milliseconds(),
		}

		// Add error if any
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		// Request identity fields come from the request context
		reqLog := log.WithContext(c.Request.Context())

		// Log based on status code
		statusCode := c.Writer.Status()
		switch {
		case statusCode >= 500:
			reqLog.Errorw("HTTP_REQUEST_ERROR", fields...)
		case statusCode >= 400:
			reqLog.Errorw("HTTP_REQUEST_WARNING", fields...)
		default:
			reqLog.Infow("HTTP_REQUEST_INFO", fields...)
		}
	}
}
