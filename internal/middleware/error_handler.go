package middleware

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"

	"pocket-budget/internal/errors"

	"github.com/getsentry/sentry-go"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	apiErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_errors_total",
			Help: "Total number of API errors by code, endpoint, and status",
		},
		[]string{"code", "endpoint", "status"},
	)
)

// CustomHTTPErrorHandler renders any error escaping a handler as the
// standard error body, logs it, counts it, and reports 5xx to Sentry.
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	traceID := GetTraceID(c)
	if traceID == "" {
		traceID = "unknown"
	}

	var (
		errorResponse  *errors.ErrorResponse
		httpStatus     int
		echoErr        *echo.HTTPError
		validationErrs validator.ValidationErrors
	)

	switch {
	case stderrors.As(err, &echoErr):
		errorResponse = errors.NewErrorResponse(
			mapHTTPStatusToErrorCode(echoErr.Code),
			traceID,
			errors.WithMessage(fmt.Sprintf("%v", echoErr.Message)),
		)
		httpStatus = echoErr.Code
	case stderrors.As(err, &validationErrs):
		fieldErrors := make(map[string]string, len(validationErrs))
		for _, fieldErr := range validationErrs {
			fieldErrors[fieldErr.Field()] = formatValidationError(fieldErr)
		}
		errorResponse = errors.NewValidationError(fieldErrors, traceID)
		httpStatus = http.StatusBadRequest
	default:
		errorResponse, _ = errors.WrapSystemError(err, traceID)
		httpStatus = errorResponse.GetHTTPStatus()
	}

	logLevel := slog.LevelWarn
	if httpStatus >= http.StatusInternalServerError {
		logLevel = slog.LevelError
		reportToSentry(c, err, traceID)
	}

	slog.Log(c.Request().Context(), logLevel, "HTTP error occurred",
		"trace_id", traceID,
		"error_code", errorResponse.Error.Code,
		"status", httpStatus,
		"message", errorResponse.Error.Message,
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
		"error", err.Error(),
	)

	apiErrorsTotal.WithLabelValues(
		errorResponse.Error.Code,
		c.Path(),
		strconv.Itoa(httpStatus),
	).Inc()

	if sendErr := c.JSON(httpStatus, errorResponse); sendErr != nil {
		slog.Error("Failed to send error response",
			"trace_id", traceID,
			"error", sendErr.Error(),
		)
	}
}

func reportToSentry(c echo.Context, err error, traceID string) {
	hub := sentry.GetHubFromContext(c.Request().Context())
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("trace_id", traceID)
		scope.SetTag("http.method", c.Request().Method)
		scope.SetTag("http.route", c.Path())
		if userID := c.Get("user_id"); userID != nil {
			scope.SetUser(sentry.User{ID: fmt.Sprint(userID)})
		}
		hub.CaptureException(err)
	})
}

func mapHTTPStatusToErrorCode(status int) errors.ErrorCode {
	switch status {
	case http.StatusBadRequest, http.StatusMethodNotAllowed, http.StatusUnprocessableEntity:
		return errors.ValidationGeneral
	case http.StatusUnauthorized:
		return errors.AuthMissingToken
	case http.StatusForbidden:
		return errors.AuthInsufficientPermission
	case http.StatusNotFound:
		return errors.SystemRouteNotFound
	case http.StatusRequestEntityTooLarge:
		return errors.ImportFileTooLarge
	case http.StatusTooManyRequests:
		return errors.SystemRateLimitExceeded
	case http.StatusInternalServerError:
		return errors.SystemInternalError
	case http.StatusServiceUnavailable:
		return errors.SystemServiceUnavailable
	default:
		return errors.SystemUnexpectedError
	}
}

// formatValidationError converts a validator.FieldError to a human-readable message
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters long", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("must be at most %s characters long", fe.Param())
		case reflect.Slice:
			return fmt.Sprintf("must contain at most %s items", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "isodate":
		return "must be a date in YYYY-MM-DD format"
	case "nonzero_amount":
		return "must be a non-zero amount"
	case "positive_amount":
		return "must be greater than 0"
	case "nonneg_amount":
		return "must be zero or a positive amount"
	case "currency_code":
		return "must be a 3-letter ISO currency code"
	case "notblank":
		return "must not be blank"
	default:
		return fmt.Sprintf("failed validation for '%s'", fe.Tag())
	}
}
