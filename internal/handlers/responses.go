package handlers

import (
	"net/http"

	"pocket-budget/internal/errors"

	"github.com/labstack/echo/v4"
)

// Error responses go through SendError (4xx with a catalog code) or
// SendSystemError (500 with a generic message). Validation failures are
// returned as-is so CustomHTTPErrorHandler can list the offending fields.

const (
	// TraceIDContextKey is the context key for storing the trace ID
	TraceIDContextKey = "trace_id"
)

// SuccessResponse represents a standard success response
type SuccessResponse struct {
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// ErrorResponse is an alias for the standardized error response type
type ErrorResponse = errors.ErrorResponse

func getTraceID(c echo.Context) string {
	traceID, ok := c.Get(TraceIDContextKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// SendError sends a standardized error response with trace ID from context
func SendError(c echo.Context, code errors.ErrorCode, opts ...errors.ErrorOption) error {
	errorResponse := errors.NewErrorResponse(code, getTraceID(c), opts...)
	return c.JSON(errorResponse.GetHTTPStatus(), errorResponse)
}

// SendSystemError logs err and answers with a generic 500 that hides it.
func SendSystemError(c echo.Context, err error) error {
	errorResponse, internal := errors.WrapSystemError(err, getTraceID(c))
	c.Logger().Errorf("trace_id=%s internal error: %v", errorResponse.Error.TraceID, internal)
	return c.JSON(http.StatusInternalServerError, errorResponse)
}
