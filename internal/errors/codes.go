package errors

// ErrorCode represents a standardized error code used throughout the API
type ErrorCode string

// Authentication error codes (AUTH_*)
const (
	AuthInvalidCredentials     ErrorCode = "AUTH_001"
	AuthMissingToken           ErrorCode = "AUTH_002"
	AuthExpiredToken           ErrorCode = "AUTH_003"
	AuthInvalidTokenFormat     ErrorCode = "AUTH_004"
	AuthInsufficientPermission ErrorCode = "AUTH_005"
	AuthAccountLocked          ErrorCode = "AUTH_006"
	AuthEmailTaken             ErrorCode = "AUTH_007"
)

// Validation error codes (VALIDATION_*)
const (
	ValidationGeneral       ErrorCode = "VALIDATION_001"
	ValidationRequiredField ErrorCode = "VALIDATION_002"
	ValidationInvalidFormat ErrorCode = "VALIDATION_003"
	ValidationOutOfRange    ErrorCode = "VALIDATION_004"
	ValidationInvalidEmail  ErrorCode = "VALIDATION_005"
	ValidationInvalidDate   ErrorCode = "VALIDATION_007"
)

// Transaction error codes (TRANSACTION_*)
const (
	TransactionNotFound         ErrorCode = "TRANSACTION_001"
	TransactionInvalidAmount    ErrorCode = "TRANSACTION_002"
	TransactionInvalidID        ErrorCode = "TRANSACTION_003"
	TransactionValidationFailed ErrorCode = "TRANSACTION_005"
)

// Import error codes (IMPORT_*)
const (
	ImportNoDataRows         ErrorCode = "IMPORT_001"
	ImportMissingColumns     ErrorCode = "IMPORT_002"
	ImportUnsupportedFormat  ErrorCode = "IMPORT_003"
	ImportFileTooLarge       ErrorCode = "IMPORT_004"
	ImportMissingFile        ErrorCode = "IMPORT_005"
	ImportMalformedStatement ErrorCode = "IMPORT_006"
)

// Goal error codes (GOAL_*)
const (
	GoalNotFound         ErrorCode = "GOAL_001"
	GoalInvalidID        ErrorCode = "GOAL_002"
	GoalUnknownTemplate  ErrorCode = "GOAL_003"
	GoalInvalidAmount    ErrorCode = "GOAL_004"
	GoalAlreadyCompleted ErrorCode = "GOAL_005"
)

// Subscription and budget setup error codes (SUBSCRIPTION_*)
const (
	SubscriptionNotFound       ErrorCode = "SUBSCRIPTION_001"
	SubscriptionInvalidID      ErrorCode = "SUBSCRIPTION_002"
	SubscriptionUnknownCatalog ErrorCode = "SUBSCRIPTION_003"
	BudgetProfileNotFound      ErrorCode = "SUBSCRIPTION_004"
)

// System error codes (SYSTEM_*)
const (
	SystemInternalError      ErrorCode = "SYSTEM_001"
	SystemDatabaseError      ErrorCode = "SYSTEM_002"
	SystemServiceUnavailable ErrorCode = "SYSTEM_003"
	SystemConfigurationError ErrorCode = "SYSTEM_004"
	SystemUnexpectedError    ErrorCode = "SYSTEM_005"
	SystemRateLimitExceeded  ErrorCode = "SYSTEM_006"
	SystemRouteNotFound      ErrorCode = "SYSTEM_007"
)

// errorMessages maps error codes to their default human-readable messages
var errorMessages = map[ErrorCode]string{
	// Authentication errors
	AuthInvalidCredentials:     "Invalid email or password",
	AuthMissingToken:           "Authorization token is required",
	AuthExpiredToken:           "Authorization token has expired",
	AuthInvalidTokenFormat:     "Invalid authorization token format",
	AuthInsufficientPermission: "Insufficient permissions to access this resource",
	AuthAccountLocked:          "Account is locked or disabled",
	AuthEmailTaken:             "An account with this email already exists",

	// Validation errors
	ValidationGeneral:       "Validation failed",
	ValidationRequiredField: "Required field is missing",
	ValidationInvalidFormat: "Invalid field format",
	ValidationOutOfRange:    "Field value is out of allowed range",
	ValidationInvalidEmail:  "Invalid email address format",
	ValidationInvalidDate:   "Invalid date format or range",

	// Transaction errors
	TransactionNotFound:         "Transaction not found",
	TransactionInvalidAmount:    "Transaction amount must be a non-zero number",
	TransactionInvalidID:        "Invalid transaction ID format",
	TransactionValidationFailed: "Transaction validation failed",

	// Import errors
	ImportNoDataRows:         "CSV file must contain a header row and at least one data row",
	ImportMissingColumns:     "CSV file is missing required columns",
	ImportUnsupportedFormat:  "Unsupported file format. Upload a .csv, .ofx or .qfx file",
	ImportFileTooLarge:       "Import file is too large",
	ImportMissingFile:        "An import file is required",
	ImportMalformedStatement: "Statement file could not be parsed",

	// Goal errors
	GoalNotFound:         "Goal not found",
	GoalInvalidID:        "Invalid goal ID format",
	GoalUnknownTemplate:  "Unknown goal template",
	GoalInvalidAmount:    "Goal amount must be greater than zero",
	GoalAlreadyCompleted: "Goal has already reached its target",

	// Subscription errors
	SubscriptionNotFound:       "Subscription not found",
	SubscriptionInvalidID:      "Invalid subscription ID format",
	SubscriptionUnknownCatalog: "Unknown subscription in catalog selection",
	BudgetProfileNotFound:      "Budget has not been set up yet",

	// System errors
	SystemInternalError:      "An unexpected error occurred. Please contact support with trace ID",
	SystemDatabaseError:      "Database connection error",
	SystemServiceUnavailable: "Service temporarily unavailable",
	SystemConfigurationError: "System configuration error",
	SystemUnexpectedError:    "An unexpected error occurred",
	SystemRateLimitExceeded:  "Rate limit exceeded. Please try again later",
	SystemRouteNotFound:      "Resource not found",
}

// GetErrorMessage returns the default message for a given error code
// If the error code is not found, it returns a generic error message
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "An error occurred"
}

// IsValidErrorCode checks if the provided error code is a valid registered code
func IsValidErrorCode(code ErrorCode) bool {
	_, ok := errorMessages[code]
	return ok
}
