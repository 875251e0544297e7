package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"

	"pocket-budget/internal/database"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long: `Apply or roll back the SQL migrations under db/migrations and load the
optional seed files under db/seeds.`,
	}

	cmd.PersistentFlags().String("migrations", "", "migrations directory (default: db/migrations)")
	cmd.PersistentFlags().String("seeds", "", "seeds directory (default: db/seeds)")

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: withRunner(func(runner *database.MigrationRunner, cmd *cobra.Command, _ []string) error {
			if err := runner.RunMigrations(); err != nil {
				return err
			}
			seed, _ := cmd.Flags().GetBool("seed")
			if seed {
				return runner.ApplySeeds()
			}
			return nil
		}),
	}
	upCmd.Flags().Bool("seed", false, "load seed files after migrating")
	cmd.AddCommand(upCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back migrations (default: one step)",
		Args:  cobra.MaximumNArgs(1),
		RunE: withRunner(func(runner *database.MigrationRunner, _ *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("steps must be a positive integer, got %q", args[0])
				}
				steps = n
			}
			return runner.Rollback(steps)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the current schema version",
		RunE: withRunner(func(runner *database.MigrationRunner, cmd *cobra.Command, _ []string) error {
			version, dirty, err := runner.GetMigrationStatus()
			if err != nil {
				return fmt.Errorf("failed to read migration status: %w", err)
			}
			cmd.Printf("version: %d\ndirty:   %t\n", version, dirty)
			return nil
		}),
	})

	return cmd
}

type runnerFunc func(runner *database.MigrationRunner, cmd *cobra.Command, args []string) error

// withRunner opens a plain database/sql handle, waits for postgres and hands
// a MigrationRunner to fn.
func withRunner(fn runnerFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer func() { _ = db.Close() }()

		migrations, _ := cmd.Flags().GetString("migrations")
		seeds, _ := cmd.Flags().GetString("seeds")
		runner := database.NewMigrationRunner(db).WithPaths(migrations, seeds)

		slog.Info("Connecting to database", "host", cfg.Database.Host, "name", cfg.Database.Name)
		if err := runner.WaitForDatabase(); err != nil {
			return err
		}

		return fn(runner, cmd, args)
	}
}
