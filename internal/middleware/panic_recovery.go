package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"pocket-budget/internal/errors"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
)

// PanicRecovery turns a handler panic into a SYSTEM_001 response and reports
// it to Sentry when a client is configured.
func PanicRecovery() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}

				traceID := GetTraceID(c)
				if traceID == "" {
					traceID = "unknown"
				}

				slog.ErrorContext(c.Request().Context(), "Panic recovered",
					"trace_id", traceID,
					"panic", fmt.Sprintf("%v", r),
					"stack_trace", string(debug.Stack()),
					"path", c.Request().URL.Path,
					"method", c.Request().Method,
				)

				hub := sentry.GetHubFromContext(c.Request().Context())
				if hub == nil {
					hub = sentry.CurrentHub()
				}
				hub.WithScope(func(scope *sentry.Scope) {
					scope.SetTag("trace_id", traceID)
					scope.SetTag("path", c.Path())
					hub.Recover(r)
				})

				errorResponse := errors.NewErrorResponse(errors.SystemInternalError, traceID)
				if err := c.JSON(http.StatusInternalServerError, errorResponse); err != nil {
					slog.Error("Failed to send panic recovery response",
						"trace_id", traceID,
						"error", err.Error(),
					)
				}
			}()

			return next(c)
		}
	}
}
