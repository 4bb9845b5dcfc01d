package db

import (
	"embed"
	"errors"
	"fmt"

	"github.com/blogdb/server/config"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// NewMigrator returns a migrator over the embedded SQL migrations.
// Callers must Close it.
func NewMigrator(cfg config.DatabaseConfig) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open migrations: %w", err)
	}
	migrator, err := migrate.NewWithSourceInstance("iofs", source, PostgresURL(cfg))
	if err != nil {
		return nil, fmt.Errorf("init migrator failed: %w", err)
	}
	return migrator, nil
}

// MigrateUp applies all pending migrations.
func MigrateUp(cfg config.DatabaseConfig) error {
	return runMigration(cfg, func(m *migrate.Migrate) error { return m.Up() })
}

// MigrateDown rolls back every applied migration.
func MigrateDown(cfg config.DatabaseConfig) error {
	return runMigration(cfg, func(m *migrate.Migrate) error { return m.Down() })
}

func runMigration(cfg config.DatabaseConfig, step func(*migrate.Migrate) error) error {
	migrator, err := NewMigrator(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = migrator.Close()
	}()

	if err := step(migrator); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
