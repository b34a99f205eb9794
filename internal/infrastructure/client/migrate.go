package client

import (
	"github.com/St1cky1/task-tracker/internal/log"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/pkg/errors"
)

// RunMigrations применяет все миграции из sourceURL (например file://migrations)
func RunMigrations(sourceURL, dsn string) error {
	m, err := migrate.New(sourceURL, dsn)
	if err != nil {
		return errors.Wrap(err, "failed to create migrator")
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "failed to apply migrations")
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return errors.Wrap(err, "failed to read migration version")
	}
	log.GetLogger().WithField("version", version).WithField("dirty", dirty).Info("Migrations applied")
	return nil
}
