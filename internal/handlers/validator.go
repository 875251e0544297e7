package handlers

import (
	"pocket-budget/internal/validation"

	"github.com/labstack/echo/v4"
)

// CustomValidator implements echo.Validator with the budgeting rules
// registered by the validation package.
type CustomValidator struct {
	validator *validation.Validator
}

// NewValidator creates a validator backed by the shared rule set
func NewValidator() echo.Validator {
	return &CustomValidator{validator: validation.GetValidator()}
}

// Validate implements the echo.Validator interface
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
