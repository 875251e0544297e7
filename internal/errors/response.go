package errors

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrorResponse is the JSON body of every failed API call.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
	TraceID string   `json:"trace_id"`
}

// ErrorOption customizes a response built by NewErrorResponse.
type ErrorOption func(*ErrorResponse)

// WithDetails replaces the detail lines.
func WithDetails(details ...string) ErrorOption {
	return func(er *ErrorResponse) {
		er.Error.Details = details
	}
}

// WithMessage replaces the catalog message for the code.
func WithMessage(message string) ErrorOption {
	return func(er *ErrorResponse) {
		er.Error.Message = message
	}
}

// NewErrorResponse builds a response carrying the catalog message for code.
func NewErrorResponse(code ErrorCode, traceID string, opts ...ErrorOption) *ErrorResponse {
	response := &ErrorResponse{
		Error: ErrorDetail{
			Code:    string(code),
			Message: GetErrorMessage(code),
			TraceID: traceID,
			Details: []string{},
		},
	}
	for _, opt := range opts {
		opt(response)
	}
	return response
}

// NewValidationError renders field errors as "field: message" lines sorted
// by field name.
func NewValidationError(fieldErrors map[string]string, traceID string) *ErrorResponse {
	details := make([]string, 0, len(fieldErrors))
	for field, message := range fieldErrors {
		details = append(details, field+": "+message)
	}
	sort.Strings(details)
	return NewErrorResponse(ValidationGeneral, traceID, WithDetails(details...))
}

// NewMissingColumnsError reports an import whose header row lacks required
// columns. The headers that were found are echoed back as details.
func NewMissingColumnsError(missing, found []string, traceID string) *ErrorResponse {
	return NewErrorResponse(ImportMissingColumns, traceID,
		WithMessage(fmt.Sprintf("CSV must have %s columns. Found: %s",
			strings.Join(missing, ", "), strings.Join(found, ", "))),
		WithDetails(found...),
	)
}

// WrapSystemError hides err behind a generic SYSTEM_001 body and hands the
// original back for server-side logging.
func WrapSystemError(err error, traceID string) (*ErrorResponse, error) {
	return NewErrorResponse(SystemInternalError, traceID), err
}

var statusByCode = func() map[ErrorCode]int {
	groups := map[int][]ErrorCode{
		http.StatusBadRequest: {
			ValidationGeneral, ValidationRequiredField, ValidationInvalidFormat,
			ValidationOutOfRange, ValidationInvalidEmail, ValidationInvalidDate,
			TransactionInvalidAmount, TransactionInvalidID, GoalInvalidID,
			GoalInvalidAmount, SubscriptionInvalidID, ImportMissingFile,
			ImportUnsupportedFormat,
		},
		http.StatusUnauthorized: {AuthInvalidCredentials, AuthMissingToken, AuthExpiredToken, AuthInvalidTokenFormat},
		http.StatusForbidden:    {AuthInsufficientPermission, AuthAccountLocked},
		http.StatusNotFound: {
			TransactionNotFound, GoalNotFound, SubscriptionNotFound,
			BudgetProfileNotFound, SystemRouteNotFound,
		},
		http.StatusConflict:              {AuthEmailTaken, GoalAlreadyCompleted},
		http.StatusRequestEntityTooLarge: {ImportFileTooLarge},
		// well-formed requests the domain rejects
		http.StatusUnprocessableEntity: {
			TransactionValidationFailed, ImportNoDataRows, ImportMissingColumns,
			ImportMalformedStatement, GoalUnknownTemplate, SubscriptionUnknownCatalog,
		},
		http.StatusTooManyRequests:    {SystemRateLimitExceeded},
		http.StatusServiceUnavailable: {SystemServiceUnavailable},
	}
	m := make(map[ErrorCode]int)
	for status, codes := range groups {
		for _, code := range codes {
			m[code] = status
		}
	}
	return m
}()

// GetHTTPStatus maps an error code to its HTTP status. Unknown codes and
// the remaining SYSTEM_* codes are 500.
func GetHTTPStatus(code ErrorCode) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func (er *ErrorResponse) GetHTTPStatus() int {
	return GetHTTPStatus(ErrorCode(er.Error.Code))
}
