package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"expensetrack/internal/errors"

	"github.com/labstack/echo/v4"
)

// PanicRecovery converts a panic anywhere below the middleware chain into a
// logged SYSTEM_001 error envelope instead of a dropped connection.
func PanicRecovery() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				if r := recover(); r != nil {
					respondToPanic(c, r)
				}
			}()
			return next(c)
		}
	}
}

func respondToPanic(c echo.Context, cause interface{}) {
	traceID := GetTraceID(c)
	if traceID == "" {
		traceID = "unknown"
	}

	slog.Error("panic recovered",
		"trace_id", traceID,
		"cause", fmt.Sprintf("%v", cause),
		"method", c.Request().Method,
		"path", c.Request().URL.Path,
		"stack", string(debug.Stack()),
	)

	envelope := errors.NewErrorResponse(errors.SystemInternalError, traceID)
	if err := c.JSON(http.StatusInternalServerError, envelope); err != nil {
		slog.Error("failed to write panic response",
			"trace_id", traceID,
			"error", err.Error(),
		)
	}
}
