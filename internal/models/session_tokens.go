package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RefreshToken stores the hash of an issued refresh token so it can be
// rotated and revoked.
type RefreshToken struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	TokenHash string     `gorm:"type:varchar(255);not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null;index" json:"expires_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at,omitempty"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (rt *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if rt.ID == uuid.Nil {
		rt.ID = uuid.New()
	}
	if rt.CreatedAt.IsZero() {
		rt.CreatedAt = time.Now()
	}
	return nil
}

// IsUsable reports whether the token is neither revoked nor expired at now.
func (rt *RefreshToken) IsUsable(now time.Time) bool {
	return rt.RevokedAt == nil && now.Before(rt.ExpiresAt)
}

func (rt *RefreshToken) TableName() string {
	return "refresh_tokens"
}

// BlacklistedToken records the JTI of a logged-out access token until it expires.
type BlacklistedToken struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	JTI           string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"jti"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	ExpiresAt     time.Time `gorm:"not null;index" json:"expires_at"`
	BlacklistedAt time.Time `gorm:"not null" json:"blacklisted_at"`
}

func (bt *BlacklistedToken) BeforeCreate(tx *gorm.DB) error {
	if bt.ID == uuid.Nil {
		bt.ID = uuid.New()
	}
	if bt.BlacklistedAt.IsZero() {
		bt.BlacklistedAt = time.Now()
	}
	return nil
}

func (bt *BlacklistedToken) TableName() string {
	return "blacklisted_tokens"
}
