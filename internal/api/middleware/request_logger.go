package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// quietRoutes are polled by probes and scrapers; they log at debug.
var quietRoutes = map[string]struct{}{
	"/ping":    {},
	"/metrics": {},
}

// RequestLogger tags each request with an X-Request-Id and logs one line
// when it completes. Query strings are never logged since /ws routes carry
// the access token there.
func RequestLogger(l *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header("X-Request-Id", reqID)
		c.Set("request_id", reqID)

		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		fields := logrus.Fields{
			"request_id": reqID,
			"method":     c.Request.Method,
			"path":       route,
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"bytes":      c.Writer.Size(),
			"ip":         c.ClientIP(),
		}
		if userID := c.GetString("user_id"); userID != "" {
			fields["user_id"] = userID
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}
		entry := l.WithFields(fields)

		switch _, quiet := quietRoutes[route]; {
		case status >= 500:
			entry.Error("request")
		case status >= 400:
			entry.Warn("request")
		case quiet:
			entry.Debug("request")
		default:
			entry.Info("request")
		}
	}
}
