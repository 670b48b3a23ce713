package history

import (
	"embed"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// newMigrator reads migrations from MigrationsDir when set, otherwise from
// the copies embedded in the binary.
func newMigrator(cfg Config) (*migrate.Migrate, error) {
	if cfg.MigrationsDir != "" {
		dir, err := filepath.Abs(cfg.MigrationsDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve migrations dir: %w", err)
		}
		m, err := migrate.New("file://"+dir, cfg.URL())
		if err != nil {
			return nil, fmt.Errorf("failed to create migrator: %w", err)
		}
		return m, nil
	}

	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}

// RunMigrations brings the ledger schema up to date
func RunMigrations(logger *logrus.Logger, cfg Config) error {
	source := "embedded"
	if cfg.MigrationsDir != "" {
		source = cfg.MigrationsDir
	}
	logger.WithField("migrations", source).Debug("Running database migrations")

	m, err := newMigrator(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
