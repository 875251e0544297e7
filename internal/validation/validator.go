package validation

import (
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const isoDateLayout = "2006-01-02"

var currencyCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Validator wraps the go-playground validator with budgeting rules and json field names
type Validator struct {
	validate *validator.Validate
}

// GetValidate returns the underlying validator.Validate instance for use with Echo
func (v *Validator) GetValidate() *validator.Validate {
	return v.validate
}

var (
	instance *Validator
	once     sync.Once
)

// GetValidator returns the shared validator instance
func GetValidator() *Validator {
	once.Do(func() {
		instance = NewValidator()
	})
	return instance
}

// NewValidator creates a new validator instance with custom rules and configuration
func NewValidator() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("isodate", validateISODate)
	_ = v.RegisterValidation("nonzero_amount", validateNonZeroAmount)
	_ = v.RegisterValidation("positive_amount", validatePositiveAmount)
	_ = v.RegisterValidation("nonneg_amount", validateNonNegativeAmount)
	_ = v.RegisterValidation("currency_code", validateCurrencyCode)
	_ = v.RegisterValidation("notblank", validateNotBlank)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	return &Validator{validate: v}
}

// Struct validates a request body and returns validator.ValidationErrors on failure
func (v *Validator) Struct(s interface{}) error {
	return v.validate.Struct(s)
}

// ParseAmount parses a money string such as "-1,250.50" into a decimal.
// Thousands separators and surrounding whitespace are ignored.
func ParseAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	return decimal.NewFromString(cleaned)
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(isoDateLayout, fl.Field().String())
	return err == nil
}

// amountFromField accepts string amounts as well as numeric kinds.
func amountFromField(fl validator.FieldLevel) (decimal.Decimal, bool) {
	field := fl.Field()
	switch field.Kind() {
	case reflect.String:
		d, err := ParseAmount(field.String())
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return decimal.NewFromInt(field.Int()), true
	case reflect.Float32, reflect.Float64:
		return decimal.NewFromFloat(field.Float()), true
	default:
		return decimal.Zero, false
	}
}

// validateNonZeroAmount allows expenses (negative) and income (positive) but not zero.
// At most two decimal places are accepted.
func validateNonZeroAmount(fl validator.FieldLevel) bool {
	d, ok := amountFromField(fl)
	return ok && !d.IsZero() && hasCents(d)
}

func validatePositiveAmount(fl validator.FieldLevel) bool {
	d, ok := amountFromField(fl)
	return ok && d.IsPositive() && hasCents(d)
}

func validateNonNegativeAmount(fl validator.FieldLevel) bool {
	d, ok := amountFromField(fl)
	return ok && !d.IsNegative() && hasCents(d)
}

func hasCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

func validateCurrencyCode(fl validator.FieldLevel) bool {
	return currencyCodePattern.MatchString(fl.Field().String())
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
