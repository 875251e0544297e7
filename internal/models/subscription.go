package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Subscription is a recurring charge chosen from the catalog during budget setup.
type Subscription struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string          `gorm:"type:varchar(100);not null" json:"name"`
	Icon        string          `gorm:"type:varchar(16)" json:"icon"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	RenewalDate string          `gorm:"type:varchar(10);not null" json:"renewal_date"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	return s.Validate()
}

func (s *Subscription) Validate() error {
	if s.UserID == uuid.Nil {
		return errors.New("user ID is required")
	}
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("subscription name is required")
	}
	if !s.Amount.IsPositive() {
		return errors.New("subscription amount must be greater than zero")
	}
	if !IsISODate(s.RenewalDate) {
		return errors.New("renewal date must be an ISO calendar date (YYYY-MM-DD)")
	}
	return nil
}

func (s *Subscription) TableName() string {
	return "subscriptions"
}

// SubscriptionCatalogItem is one selectable recurring service.
type SubscriptionCatalogItem struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Icon   string          `json:"icon"`
	Amount decimal.Decimal `json:"amount"`
}

// BudgetProfile holds the monthly numbers captured by the budget-setup form.
type BudgetProfile struct {
	UserID               uuid.UUID       `gorm:"type:uuid;primary_key" json:"user_id"`
	MonthlyIncome        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"monthly_income"`
	MonthlyBudget        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"monthly_budget"`
	SavingsTargetPercent int             `gorm:"not null;default:20" json:"savings_target_percent"`
	CreatedAt            time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt            time.Time       `gorm:"not null" json:"updated_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (p *BudgetProfile) BeforeSave(tx *gorm.DB) error {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	return p.Validate()
}

func (p *BudgetProfile) Validate() error {
	if p.UserID == uuid.Nil {
		return errors.New("user ID is required")
	}
	if p.MonthlyIncome.IsNegative() || p.MonthlyBudget.IsNegative() {
		return errors.New("monthly income and budget cannot be negative")
	}
	if p.SavingsTargetPercent < 0 || p.SavingsTargetPercent > 100 {
		return errors.New("savings target must be between 0 and 100 percent")
	}
	return nil
}

// PlannedSavings is the income left after the budget, never negative.
func (p *BudgetProfile) PlannedSavings() decimal.Decimal {
	left := p.MonthlyIncome.Sub(p.MonthlyBudget)
	if left.IsNegative() {
		return decimal.Zero
	}
	return left
}

func (p *BudgetProfile) TableName() string {
	return "budget_profiles"
}
