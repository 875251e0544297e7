package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Audit actions
const (
	AuditActionRegister            = "register"
	AuditActionLogin               = "login"
	AuditActionLogout              = "logout"
	AuditActionFailedLogin         = "failed_login"
	AuditActionAccountLocked       = "account_locked"
	AuditActionTokenRefresh        = "token_refresh"
	AuditActionTransactionsImport  = "transactions_imported"
	AuditActionTransactionsCleared = "transactions_cleared"
	AuditActionDemoSeeded          = "demo_seeded"
	AuditActionBudgetConfigured    = "budget_configured"
	AuditActionGoalCompleted       = "goal_completed"
)

// AuditLog is an append-only record of security and bulk-data events.
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action     string     `gorm:"type:varchar(100);not null;index" json:"action"`
	Resource   string     `gorm:"type:varchar(100);not null" json:"resource"`
	ResourceID string     `gorm:"type:varchar(255)" json:"resource_id,omitempty"`
	IPAddress  string     `gorm:"type:varchar(45)" json:"ip_address,omitempty"`
	UserAgent  string     `gorm:"type:text" json:"user_agent,omitempty"`
	Metadata   JSONMap    `gorm:"type:text" json:"metadata,omitempty"`
	CreatedAt  time.Time  `gorm:"not null;index" json:"created_at"`
}

func (al *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if al.ID == uuid.Nil {
		al.ID = uuid.New()
	}
	if al.CreatedAt.IsZero() {
		al.CreatedAt = time.Now()
	}
	return nil
}

func (al *AuditLog) SetMetadata(key string, value interface{}) {
	if al.Metadata == nil {
		al.Metadata = make(JSONMap)
	}
	al.Metadata[key] = value
}

func (al *AuditLog) TableName() string {
	return "audit_logs"
}

// JSONMap is a free-form object persisted as JSON text, which works on both
// postgres and sqlite.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(map[string]interface{}(m))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *JSONMap) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONMap", value)
	}
	if len(raw) == 0 {
		*m = nil
		return nil
	}
	return json.Unmarshal(raw, (*map[string]interface{})(m))
}
