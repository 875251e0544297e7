package dto

import (
	"time"

	"pocket-budget/internal/models"

	"github.com/google/uuid"
)

// ActivityEntry is one audit log line as shown to users and admins.
type ActivityEntry struct {
	ID         uuid.UUID      `json:"id"`
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	ResourceID string         `json:"resourceId,omitempty"`
	IPAddress  string         `json:"ipAddress,omitempty"`
	Metadata   models.JSONMap `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// AdminUserResponse is the admin view of an account, lock state included.
type AdminUserResponse struct {
	ID                  uuid.UUID  `json:"id"`
	Email               string     `json:"email"`
	DisplayName         string     `json:"displayName"`
	Role                string     `json:"role"`
	Currency            string     `json:"currency"`
	FailedLoginAttempts int        `json:"failedLoginAttempts"`
	LockedAt            *time.Time `json:"lockedAt,omitempty"`
	LastLoginAt         *time.Time `json:"lastLoginAt,omitempty"`
	OnboardedAt         *time.Time `json:"onboardedAt,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
}
