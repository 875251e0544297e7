package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DateLayout is the ISO calendar date format used for every stored date.
const DateLayout = "2006-01-02"

const (
	TransactionSourceManual = "manual"
	TransactionSourceCSV    = "csv"
	TransactionSourceOFX    = "ofx"
	TransactionSourceDemo   = "demo"
)

// Column limits of the transactions table.
const (
	MaxTransactionNameLength     = 255
	MaxTransactionCategoryLength = 50
)

// maxTransactionAmount is the exclusive magnitude bound of decimal(15,2).
var maxTransactionAmount = decimal.New(1, 13)

var (
	ErrCategoryTooLong          = fmt.Errorf("category must be at most %d characters", MaxTransactionCategoryLength)
	ErrTransactionNameTooLong   = fmt.Errorf("transaction name must be at most %d characters", MaxTransactionNameLength)
	ErrAmountOutOfRange         = errors.New("amount is outside the storable range")
	ErrInvalidTransactionDate   = errors.New("transaction date must be an ISO calendar date (YYYY-MM-DD)")
	ErrInvalidTransactionSource = errors.New("invalid transaction source")
	ErrTransactionNameRequired  = errors.New("transaction name is required")
)

// Transaction is a single signed money movement: negative amounts are
// expenses, positive amounts are income. A zero amount is tolerated at the
// storage layer and ignored by every aggregate.
type Transaction struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Date      string          `gorm:"type:varchar(10);not null;index" json:"date"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	Category  string          `gorm:"type:varchar(50);not null;default:'Other'" json:"category"`
	Amount    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Icon      string          `gorm:"type:varchar(16)" json:"icon"`
	Source    string          `gorm:"type:varchar(10);not null;default:'manual'" json:"source"`
	CreatedAt time.Time       `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null" json:"updated_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeCreate hook for Transaction
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Source == "" {
		t.Source = TransactionSourceManual
	}
	if strings.TrimSpace(t.Category) == "" {
		t.Category = CategoryOther
	}
	if t.Icon == "" {
		t.Icon = IconForCategory(t.Category)
	}

	// Set timestamps if not already set (for tests)
	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}

	return t.Validate()
}

// Validate checks the stored shape of a transaction. It deliberately accepts
// a zero amount; rejecting it is the job of the manual-entry form.
func (t *Transaction) Validate() error {
	if t.UserID == uuid.Nil {
		return errors.New("user ID is required")
	}

	if strings.TrimSpace(t.Name) == "" {
		return ErrTransactionNameRequired
	}

	if _, err := t.ParsedDate(); err != nil {
		return ErrInvalidTransactionDate
	}

	if err := t.CheckStorageLimits(); err != nil {
		return err
	}

	if !IsValidTransactionSource(t.Source) {
		return ErrInvalidTransactionSource
	}

	return nil
}

// CheckStorageLimits reports whether the name, category and amount fit the
// transactions columns.
func (t *Transaction) CheckStorageLimits() error {
	if utf8.RuneCountInString(t.Name) > MaxTransactionNameLength {
		return ErrTransactionNameTooLong
	}
	if utf8.RuneCountInString(t.Category) > MaxTransactionCategoryLength {
		return ErrCategoryTooLong
	}
	return CheckAmountRange(t.Amount)
}

// CheckAmountRange rejects amounts that do not fit decimal(15,2) once
// rounded to cents.
func CheckAmountRange(amount decimal.Decimal) error {
	if amount.Round(2).Abs().GreaterThanOrEqual(maxTransactionAmount) {
		return ErrAmountOutOfRange
	}
	return nil
}

// TruncateName shortens name to the column width, counting runes.
func TruncateName(name string) string {
	if utf8.RuneCountInString(name) <= MaxTransactionNameLength {
		return name
	}
	return strings.TrimSpace(string([]rune(name)[:MaxTransactionNameLength]))
}

// ParsedDate returns the transaction date as a UTC midnight time.
func (t *Transaction) ParsedDate() (time.Time, error) {
	return time.Parse(DateLayout, t.Date)
}

// IsExpense reports whether the transaction moves money out.
func (t *Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

// IsIncome reports whether the transaction moves money in.
func (t *Transaction) IsIncome() bool {
	return t.Amount.IsPositive()
}

// TableName returns the table name for Transaction
func (t *Transaction) TableName() string {
	return "transactions"
}

// IsValidTransactionSource checks where a transaction came from
func IsValidTransactionSource(source string) bool {
	switch source {
	case TransactionSourceManual, TransactionSourceCSV, TransactionSourceOFX, TransactionSourceDemo:
		return true
	default:
		return false
	}
}

// IsISODate reports whether s is a valid YYYY-MM-DD calendar date.
func IsISODate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
