package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleMember = "member"
	RoleAdmin  = "admin"

	MaxFailedLoginAttempts = 3
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)
)

// User owns every budgeting record. DisplayName is what appears on the leaderboard.
type User struct {
	ID                  uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Email               string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash        string         `gorm:"type:varchar(255);not null" json:"-"`
	DisplayName         string         `gorm:"type:varchar(100);not null" json:"display_name"`
	Currency            string         `gorm:"type:varchar(3);not null;default:'INR'" json:"currency"`
	Role                string         `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	OnboardedAt         *time.Time     `json:"onboarded_at,omitempty"`
	FailedLoginAttempts int            `gorm:"default:0" json:"-"`
	LockedAt            *time.Time     `gorm:"index" json:"locked_at,omitempty"`
	LastLoginAt         *time.Time     `gorm:"index" json:"last_login_at,omitempty"`
	CreatedAt           time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleMember
	}
	if u.Currency == "" {
		u.Currency = "INR"
	}

	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}

	return u.Validate()
}

func (u *User) BeforeUpdate(tx *gorm.DB) error {
	// Map-based Updates carry an empty struct; only validate full saves.
	if tx.Statement.Dest != nil {
		if _, ok := tx.Statement.Dest.(map[string]interface{}); ok {
			return nil
		}
	}
	return u.Validate()
}

func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if !emailRegex.MatchString(u.Email) {
		return errors.New("invalid email format")
	}
	if strings.TrimSpace(u.DisplayName) == "" {
		return errors.New("display name is required")
	}
	if !currencyRegex.MatchString(u.Currency) {
		return fmt.Errorf("invalid currency code: %s", u.Currency)
	}
	if u.Role != RoleMember && u.Role != RoleAdmin {
		return fmt.Errorf("invalid role: %s", u.Role)
	}
	return nil
}

func (u *User) IsLocked() bool {
	return u.LockedAt != nil
}

func (u *User) Lock() {
	now := time.Now()
	u.LockedAt = &now
	u.FailedLoginAttempts = MaxFailedLoginAttempts
}

func (u *User) Unlock() {
	u.LockedAt = nil
	u.FailedLoginAttempts = 0
}

func (u *User) IncrementFailedAttempts() {
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= MaxFailedLoginAttempts {
		u.Lock()
	}
}

func (u *User) IsOnboarded() bool {
	return u.OnboardedAt != nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) TableName() string {
	return "users"
}
