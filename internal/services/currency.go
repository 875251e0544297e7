package services

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when neither the user nor the configuration names one.
const DefaultCurrency = "INR"

// CurrencyFormatter renders amounts as localized currency strings.
type CurrencyFormatter struct {
	defaultCode string
}

// NewCurrencyFormatter returns a formatter that falls back to defaultCode for
// empty or unknown currency codes.
func NewCurrencyFormatter(defaultCode string) *CurrencyFormatter {
	code := strings.ToUpper(strings.TrimSpace(defaultCode))
	if money.GetCurrency(code) == nil {
		code = DefaultCurrency
	}
	return &CurrencyFormatter{defaultCode: code}
}

// Format renders amount in the given currency, e.g. "₹1,250.00" or "-$12.50".
func (f *CurrencyFormatter) Format(amount decimal.Decimal, code string) string {
	currency := money.GetCurrency(strings.ToUpper(strings.TrimSpace(code)))
	if currency == nil {
		currency = money.GetCurrency(f.defaultCode)
	}

	minor := amount.Shift(int32(currency.Fraction)).Round(0).IntPart()
	return money.New(minor, currency.Code).Display()
}

// ResolveCode returns the currency code Format would use for code.
func (f *CurrencyFormatter) ResolveCode(code string) string {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if money.GetCurrency(normalized) == nil {
		return f.defaultCode
	}
	return normalized
}

// FormatCurrency formats with the package default currency as fallback.
func FormatCurrency(amount decimal.Decimal, code string) string {
	return NewCurrencyFormatter(DefaultCurrency).Format(amount, code)
}
