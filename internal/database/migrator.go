package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const (
	migrationsPath = "db/migrations"
	seedsPath      = "db/seeds"
)

var (
	maxRetries    = 30
	retryInterval = 2 * time.Second
)

var (
	ErrMigrationsDirMissing = errors.New("migrations directory not found")
	ErrAutoMigrateDisabled  = errors.New("auto-migration disabled (AUTO_MIGRATE != true)")
)

// MigrationRunner applies SQL migrations and optional seed files
type MigrationRunner struct {
	db             *sql.DB
	migrationsPath string
	seedsPath      string
}

func NewMigrationRunner(db *sql.DB) *MigrationRunner {
	return &MigrationRunner{
		db:             db,
		migrationsPath: migrationsPath,
		seedsPath:      seedsPath,
	}
}

// WithPaths overrides the migration and seed directories.
func (mr *MigrationRunner) WithPaths(migrations, seeds string) *MigrationRunner {
	if migrations != "" {
		mr.migrationsPath = migrations
	}
	if seeds != "" {
		mr.seedsPath = seeds
	}
	return mr
}

// WaitForDatabase pings until the database answers or maxRetries is exhausted.
func (mr *MigrationRunner) WaitForDatabase() error {
	for i := 0; i < maxRetries; i++ {
		err := mr.db.Ping()
		if err == nil {
			slog.Info("Database is ready", "attempts", i+1)
			return nil
		}

		slog.Warn("Database not ready", "attempt", i+1, "max_attempts", maxRetries, "error", err)
		time.Sleep(retryInterval)
	}

	return fmt.Errorf("database not ready after %d attempts", maxRetries)
}

func (mr *MigrationRunner) newMigrate() (*migrate.Migrate, error) {
	if _, err := os.Stat(mr.migrationsPath); os.IsNotExist(err) {
		return nil, ErrMigrationsDirMissing
	}

	absPath, err := filepath.Abs(mr.migrationsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for migrations: %w", err)
	}

	driver, err := postgres.WithInstance(mr.db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", absPath), "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	return m, nil
}

// RunMigrations applies all pending up migrations. A missing migrations
// directory is not an error.
func (mr *MigrationRunner) RunMigrations() error {
	m, err := mr.newMigrate()
	if errors.Is(err, ErrMigrationsDirMissing) {
		slog.Info("Migrations directory not found, skipping", "path", mr.migrationsPath)
		return nil
	}
	if err != nil {
		return err
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if dirty {
		slog.Warn("Database is dirty, forcing version", "version", version)
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("failed to force version: %w", err)
		}
	}

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		slog.Info("No new migrations to apply", "version", version)
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	newVersion, _, err := m.Version()
	if err != nil {
		return fmt.Errorf("failed to get new migration version: %w", err)
	}
	slog.Info("Applied migrations", "from", version, "to", newVersion)
	return nil
}

// Rollback reverts the given number of migration steps.
func (mr *MigrationRunner) Rollback(steps int) error {
	if steps <= 0 {
		return fmt.Errorf("rollback steps must be positive, got %d", steps)
	}

	m, err := mr.newMigrate()
	if err != nil {
		return err
	}

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("rollback failed: %w", err)
	}
	slog.Info("Rolled back migrations", "steps", steps)
	return nil
}

// LoadSeeds applies the seed files when SEED_DATABASE=true.
func (mr *MigrationRunner) LoadSeeds() error {
	if os.Getenv("SEED_DATABASE") != "true" {
		slog.Debug("Seed data loading disabled")
		return nil
	}
	return mr.ApplySeeds()
}

// ApplySeeds executes every *.sql file in the seeds directory in name
// order. A file that fails to execute is logged and skipped.
func (mr *MigrationRunner) ApplySeeds() error {
	if _, err := os.Stat(mr.seedsPath); os.IsNotExist(err) {
		slog.Info("Seeds directory not found, skipping", "path", mr.seedsPath)
		return nil
	}

	files, err := filepath.Glob(filepath.Join(mr.seedsPath, "*.sql"))
	if err != nil {
		return fmt.Errorf("failed to find seed files: %w", err)
	}

	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read seed file %s: %w", file, err)
		}

		if _, err := mr.db.Exec(string(content)); err != nil {
			slog.Warn("Failed to execute seed file", "file", filepath.Base(file), "error", err)
			continue
		}

		slog.Info("Executed seed file", "file", filepath.Base(file))
	}

	return nil
}

// GetMigrationStatus returns the current migration version
func (mr *MigrationRunner) GetMigrationStatus() (version uint, dirty bool, err error) {
	m, err := mr.newMigrate()
	if err != nil {
		return 0, false, err
	}
	return m.Version()
}

// RunMigrationsIfEnabled runs migrations if AUTO_MIGRATE is set to true
func RunMigrationsIfEnabled(db *sql.DB) error {
	if os.Getenv("AUTO_MIGRATE") != "true" {
		return ErrAutoMigrateDisabled
	}

	runner := NewMigrationRunner(db)

	if err := runner.WaitForDatabase(); err != nil {
		return fmt.Errorf("database readiness check failed: %w", err)
	}

	if err := runner.RunMigrations(); err != nil {
		return fmt.Errorf("migration execution failed: %w", err)
	}

	if err := runner.LoadSeeds(); err != nil {
		slog.Warn("Seed data loading failed", "error", err)
	}

	return nil
}
