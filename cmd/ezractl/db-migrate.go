package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/ezra-in-go/pkg/config"
)

// migrationsTable keeps golang-migrate's bookkeeping out of the way of the
// collections table
const migrationsTable = "ezra_schema_migrations"

// dbMigrateCmd represents the db migrate command
var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create and/or upgrade the database schema",
	Long: `Create and/or upgrade the database schema.

This command runs all pending database migrations to bring the schema
up to date. Migrations are located in the db/migrations directory.

Example:
  ezractl db migrate`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runMigrations(cmd.OutOrStdout(), databaseURL()); err != nil {
			fmt.Fprintln(os.Stderr, "Migration failed:", err)
			os.Exit(1)
		}
	},
}

var dbMigrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Rollback database migrations",
	Long: `Rollback database migrations.

This command rolls back the specified number of migrations (default: 1).

Example:
  ezractl db down      # Rollback 1 migration
  ezractl db down 3    # Rollback 3 migrations`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		steps, err := parseSteps(args)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		if err := runMigrationsDown(cmd.OutOrStdout(), databaseURL(), steps); err != nil {
			fmt.Fprintln(os.Stderr, "Rollback failed:", err)
			os.Exit(1)
		}
	},
}

var dbMigrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current migration version",
	Long:  `Show the current database migration version.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := showMigrationStatus(cmd.OutOrStdout(), databaseURL()); err != nil {
			fmt.Fprintln(os.Stderr, "Failed to get status:", err)
			os.Exit(1)
		}
	},
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbMigrateDownCmd)
	dbCmd.AddCommand(dbMigrateStatusCmd)
}

// databaseURL returns database_url from the configuration, or "" when the
// configuration cannot be loaded
func databaseURL() string {
	cfg, err := config.Load()
	if err != nil {
		return ""
	}
	return cfg.DatabaseURL
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	steps, err := strconv.Atoi(args[0])
	if err != nil || steps < 1 {
		return 0, fmt.Errorf("steps must be a positive integer, got %q", args[0])
	}
	return steps, nil
}

// withMigrationsTable adds the x-migrations-table parameter to dbURL
func withMigrationsTable(dbURL string) string {
	if strings.Contains(dbURL, "?") {
		return dbURL + "&x-migrations-table=" + migrationsTable
	}
	return dbURL + "?x-migrations-table=" + migrationsTable
}

func openMigrate(dbURL string) (*migrate.Migrate, error) {
	if dbURL == "" {
		return nil, errors.New("database_url is required (set DATABASE_URL)")
	}

	m, err := createMigrateInstance(withMigrationsTable(dbURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

func runMigrations(out io.Writer, dbURL string) error {
	m, err := openMigrate(dbURL)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	version, dirty, _ := m.Version()
	fmt.Fprintf(out, "Current version: %d (dirty: %v)\n", version, dirty)

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Fprintln(out, "No migrations to run - database is up to date")
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}

	newVersion, _, _ := m.Version()
	fmt.Fprintf(out, "Migrated to version: %d\n", newVersion)
	return nil
}

func runMigrationsDown(out io.Writer, dbURL string, steps int) error {
	m, err := openMigrate(dbURL)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	fmt.Fprintf(out, "Rolling back %d migration(s)...\n", steps)

	if err := m.Steps(-steps); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}

	version, _, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Fprintln(out, "Rolled back all migrations")
		return nil
	}
	fmt.Fprintf(out, "Rolled back to version: %d\n", version)
	return nil
}

func showMigrationStatus(out io.Writer, dbURL string) error {
	m, err := openMigrate(dbURL)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	version, dirty, err := m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Fprintln(out, "No migrations have been applied yet")
			return nil
		}
		return err
	}

	fmt.Fprintf(out, "Current version: %d\n", version)
	if dirty {
		fmt.Fprintln(out, "Warning: Database is in a dirty state")
	}
	return nil
}
