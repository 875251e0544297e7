package main

import (
	"fmt"
	"log/slog"

	"pocket-budget/internal/database"
	"pocket-budget/internal/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Start the budgeting API. The database is migrated on startup: SQL
migrations when AUTO_MIGRATE=true, gorm AutoMigrate otherwise.`,
		RunE: runServe,
	}

	cmd.Flags().String("host", "", "listen host (overrides SERVER_HOST)")
	cmd.Flags().String("port", "", "listen port (overrides SERVER_PORT)")
	_ = viper.BindPFlag("server.host", cmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	flush, err := initSentry(&cfg.Sentry)
	if err != nil {
		return err
	}
	defer flush()

	db, err := database.Initialize(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Warn("Failed to close database", "error", err)
		}
	}()

	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewDBStatsCollector(sqlDB, cfg.Database.Name))

	srv := server.New(cfg, db.DB, registry, slog.Default()).WithTokenSweeper(db)
	return srv.Run(cmd.Context())
}
