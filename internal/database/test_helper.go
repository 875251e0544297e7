package database

import (
	"fmt"
	"testing"

	"pocket-budget/internal/config"
	"pocket-budget/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a migrated in-memory sqlite database.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), gormConfig)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	// Each new connection to :memory: is a fresh database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	testDB := &DB{
		DB: db,
		config: &config.DatabaseConfig{
			MaxConnections: 1,
			MaxIdleConns:   1,
		},
	}

	if err := testDB.AutoMigrate(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() { _ = testDB.Close() })

	return testDB
}

// CreateTestUser inserts a member with a placeholder password hash.
func CreateTestUser(t *testing.T, db *DB, email string) *models.User {
	t.Helper()

	user := &models.User{
		Email:        email,
		PasswordHash: "hashed_password",
		DisplayName:  "Test User",
		Currency:     "INR",
		Role:         models.RoleMember,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CleanupTestDB empties every table, children first.
func CleanupTestDB(t *testing.T, db *DB) {
	t.Helper()

	tables := []string{
		"transactions",
		"goals",
		"subscriptions",
		"budget_profiles",
		"audit_logs",
		"blacklisted_tokens",
		"refresh_tokens",
		"users",
	}

	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			t.Logf("failed to cleanup table %s: %v", table, err)
		}
	}
}
