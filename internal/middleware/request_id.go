package middleware

import (
	"pocket-budget/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// TraceIDHeader is the header name for the trace ID
	TraceIDHeader = "X-Trace-ID"
	// TraceIDContextKey is the context key for storing the trace ID
	TraceIDContextKey = "trace_id"
)

// RequestID assigns every request a trace ID. An incoming X-Trace-ID is
// reused. The ID is echoed in the response header, stored on the echo
// context, and carried on the request context for service-level logs.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			traceID := req.Header.Get(TraceIDHeader)
			if traceID == "" {
				traceID = uuid.New().String()
			}

			c.Set(TraceIDContextKey, traceID)
			c.Response().Header().Set(TraceIDHeader, traceID)
			c.SetRequest(req.WithContext(services.WithCorrelationID(req.Context(), traceID)))
			return next(c)
		}
	}
}

// GetTraceID returns the trace ID of the request, or "" outside RequestID.
func GetTraceID(c echo.Context) string {
	traceID, ok := c.Get(TraceIDContextKey).(string)
	if !ok {
		return ""
	}
	return traceID
}
