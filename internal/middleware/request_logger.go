package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/titanmarket/titanmarket-backend/pkg/logger"
)

const headerRequestID = "X-Request-ID"

// RequestLogger assigns a request ID and writes one structured line per request.
// Health and metrics probes are only logged when they fail.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(headerRequestID, requestID)

		c.Next()

		status := c.Writer.Status()
		path := c.Request.URL.Path
		if (path == "/health" || path == "/metrics") && status < 400 {
			return
		}

		reqLog := logger.WithRequestID(requestID)
		var event *zerolog.Event
		switch {
		case status >= 500:
			event = reqLog.Error()
		case status >= 400:
			event = reqLog.Warn()
		default:
			event = reqLog.Info()
		}

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		event.
			Str("method", c.Request.Method).
			Str("route", route).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Uint64("user_id", GetUserID(c)).
			Int("body_size", c.Writer.Size()).
			Strs("errors", c.Errors.Errors()).
			Msg("request")
	}
}
