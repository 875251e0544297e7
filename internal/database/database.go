package database

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"pocket-budget/internal/config"
	"pocket-budget/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DB struct {
	*gorm.DB
	config *config.DatabaseConfig
}

func New(cfg *config.DatabaseConfig, logLevel logger.LogLevel) (*DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{
		DB:     db,
		config: cfg,
	}, nil
}

// AutoMigrate creates or updates every table the service owns.
func (db *DB) AutoMigrate() error {
	return db.DB.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.BlacklistedToken{},
		&models.AuditLog{},
		&models.Transaction{},
		&models.Goal{},
		&models.Subscription{},
		&models.BudgetProfile{},
	)
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CreateIndexes adds the composite indexes gorm tags cannot express.
// Failures are logged and skipped so a partially indexed database still boots.
func (db *DB) CreateIndexes() error {
	queries := []string{
		"CREATE INDEX IF NOT EXISTS idx_users_email_lower ON users(LOWER(email))",
		"CREATE INDEX IF NOT EXISTS idx_refresh_tokens_token_hash ON refresh_tokens(token_hash)",
		"CREATE INDEX IF NOT EXISTS idx_blacklisted_tokens_expires_at ON blacklisted_tokens(expires_at)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_user_action ON audit_logs(user_id, action)",
		"CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions(user_id, date DESC)",
		"CREATE INDEX IF NOT EXISTS idx_transactions_user_category ON transactions(user_id, category)",
		"CREATE INDEX IF NOT EXISTS idx_goals_user_created ON goals(user_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_subscriptions_user_renewal ON subscriptions(user_id, renewal_date)",
	}

	for _, query := range queries {
		if err := db.DB.Exec(query).Error; err != nil {
			slog.Warn("Failed to create index", "query", query, "error", err)
		}
	}

	return nil
}

// CleanupExpiredTokens removes refresh and blacklisted tokens past their expiry.
func (db *DB) CleanupExpiredTokens() error {
	now := time.Now()

	if err := db.DB.Where("expires_at < ?", now).Delete(&models.RefreshToken{}).Error; err != nil {
		return fmt.Errorf("failed to cleanup expired refresh tokens: %w", err)
	}

	if err := db.DB.Where("expires_at < ?", now).Delete(&models.BlacklistedToken{}).Error; err != nil {
		return fmt.Errorf("failed to cleanup expired blacklisted tokens: %w", err)
	}

	return nil
}

// Initialize connects, migrates and indexes the database.
func Initialize(cfg *config.Config) (*DB, error) {
	logLevel := logger.Warn
	if cfg.IsDevelopment() {
		logLevel = logger.Info
	}

	db, err := New(&cfg.Database, logLevel)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// SQL migrations first; AutoMigrate covers the disabled and failed cases.
	if err := RunMigrationsIfEnabled(sqlDB); err != nil {
		if !errors.Is(err, ErrAutoMigrateDisabled) {
			slog.Warn("Migration runner failed, falling back to AutoMigrate", "error", err)
		}

		if err := db.AutoMigrate(); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	if err := db.CreateIndexes(); err != nil {
		slog.Warn("Failed to create some indexes", "error", err)
	}

	slog.Info("Database initialized", "host", cfg.Database.Host, "name", cfg.Database.Name)

	return db, nil
}
