package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/serviceops/fleet-autoscaler/internal/logger"
	"github.com/serviceops/fleet-autoscaler/pkg/models"
)

// TraceIDHeader carries the request trace ID. Inbound values are reused
// so callers can correlate retries and follow-up requests.
const TraceIDHeader = "X-Trace-ID"

const traceIDKey = "trace_id"

// TraceID assigns every request a trace ID, echoes it in the response
// header, and threads it through the request context so handler logging
// picks it up.
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceIDHeader)
		if traceID == "" {
			traceID = models.NewUUID()
		}

		c.Set(traceIDKey, traceID)
		c.Header(TraceIDHeader, traceID)
		c.Request = c.Request.WithContext(logger.WithTraceID(c.Request.Context(), traceID))

		c.Next()
	}
}

// GetTraceID returns the request's trace ID, or empty when the
// middleware did not run.
func GetTraceID(c *gin.Context) string {
	if value, exists := c.Get(traceIDKey); exists {
		if traceID, ok := value.(string); ok {
			return traceID
		}
	}
	return ""
}
