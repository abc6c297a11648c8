package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// TraceIDHeader carries the trace ID on requests and responses
	TraceIDHeader = "X-Trace-ID"
	// TraceIDContextKey is the context key for storing the trace ID
	TraceIDContextKey = "trace_id"
)

// RequestID attaches a trace ID to every request, echoed back in the
// response header so clients can correlate expense operations with server
// logs. An inbound X-Trace-ID is honored only when it parses as a UUID;
// anything else is replaced so malformed client input never reaches the
// logs or error envelopes.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			traceID := ensureTraceID(c.Request().Header.Get(TraceIDHeader))
			c.Set(TraceIDContextKey, traceID)
			c.Response().Header().Set(TraceIDHeader, traceID)
			return next(c)
		}
	}
}

// GetTraceID extracts the trace ID from the Echo context, or empty string
// when the middleware has not run.
func GetTraceID(c echo.Context) string {
	traceID, ok := c.Get(TraceIDContextKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

func ensureTraceID(candidate string) string {
	if _, err := uuid.Parse(candidate); err == nil {
		return candidate
	}
	return uuid.New().String()
}
