package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/ezra-in-go/pkg/db"
)

// Postgres is a disposable PostgreSQL container with the schema migrated
type Postgres struct {
	Container testcontainers.Container
	URL       string
	DB        *gorm.DB
}

// StartPostgres starts a PostgreSQL container and runs the migrations from
// db/migrations against it
func StartPostgres(ctx context.Context) (*Postgres, error) {
	projectRoot, err := findProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("failed to find project root: %w", err)
	}
	migrationsDir := filepath.Join(projectRoot, "db", "migrations")

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ezra_test"),
		tcpostgres.WithUsername("ezra"),
		tcpostgres.WithPassword("ezra"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	if err := migrateUp(migrationsDir, connStr); err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	database, err := db.Connect(db.Config{URL: connStr})
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, err
	}

	return &Postgres{Container: pgContainer, URL: connStr, DB: database}, nil
}

func migrateUp(dir, connStr string) error {
	m, err := migrate.New("file://"+dir, connStr+"&x-migrations-table=ezra_schema_migrations")
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

// Truncate removes every collection row
func (p *Postgres) Truncate(ctx context.Context) error {
	return p.DB.WithContext(ctx).Exec("DELETE FROM collections").Error
}

// Close terminates the container
func (p *Postgres) Close(ctx context.Context) {
	if p.DB != nil {
		_ = db.Close(p.DB)
	}
	if p.Container != nil {
		_ = p.Container.Terminate(ctx)
	}
}

// findProjectRoot locates the project root directory
func findProjectRoot() (string, error) {
	paths := []string{
		"../..",
		"..",
		".",
	}

	for _, p := range paths {
		goMod := filepath.Join(p, "go.mod")
		if _, err := os.Stat(goMod); err == nil {
			return filepath.Abs(p)
		}
	}

	return "", fmt.Errorf("project root not found (looking for go.mod)")
}
