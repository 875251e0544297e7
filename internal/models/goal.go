package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrGoalNameRequired  = errors.New("goal name is required")
	ErrGoalTargetInvalid = errors.New("goal target must be greater than zero")
	ErrGoalCurrentNeg    = errors.New("goal current amount cannot be negative")
	ErrGoalDeadline      = errors.New("goal deadline must be an ISO calendar date (YYYY-MM-DD)")
)

// DefaultGoalEmoji is used when a custom goal is created without one.
const DefaultGoalEmoji = "🎯"

// Goal is a savings target. Current is expected to stay at or below Target
// but contributions may overshoot; Progress is capped instead.
type Goal struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Name      string          `gorm:"type:varchar(100);not null" json:"name"`
	Emoji     string          `gorm:"type:varchar(16)" json:"emoji"`
	Target    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"target"`
	Current   decimal.Decimal `gorm:"column:saved_amount;type:decimal(15,2);not null;default:0" json:"current"`
	Deadline  string          `gorm:"type:varchar(10)" json:"deadline,omitempty"`
	CreatedAt time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null" json:"updated_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (g *Goal) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	if g.Emoji == "" {
		g.Emoji = DefaultGoalEmoji
	}

	now := time.Now()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	if g.UpdatedAt.IsZero() {
		g.UpdatedAt = now
	}

	return g.Validate()
}

func (g *Goal) Validate() error {
	if g.UserID == uuid.Nil {
		return errors.New("user ID is required")
	}
	if strings.TrimSpace(g.Name) == "" {
		return ErrGoalNameRequired
	}
	if !g.Target.IsPositive() {
		return ErrGoalTargetInvalid
	}
	if g.Current.IsNegative() {
		return ErrGoalCurrentNeg
	}
	if g.Deadline != "" && !IsISODate(g.Deadline) {
		return ErrGoalDeadline
	}
	return nil
}

// Progress is Current/Target as a whole percentage in [0, 100].
func (g *Goal) Progress() int {
	if !g.Target.IsPositive() {
		return 0
	}
	pct := g.Current.Div(g.Target).Mul(decimal.NewFromInt(100)).Floor().IntPart()
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return int(pct)
}

// Remaining is how much is still needed, never negative.
func (g *Goal) Remaining() decimal.Decimal {
	remaining := g.Target.Sub(g.Current)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

func (g *Goal) IsCompleted() bool {
	return g.Current.GreaterThanOrEqual(g.Target)
}

func (g *Goal) TableName() string {
	return "goals"
}

// GoalTemplate is a suggested goal offered on the goals page.
type GoalTemplate struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Emoji  string          `json:"emoji"`
	Target decimal.Decimal `json:"target"`
}
