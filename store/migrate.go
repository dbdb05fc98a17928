package store

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// migrateUp brings the database schema to the latest embedded version. The
// database file is backed up first whenever migrations are pending. A
// database that is ahead of this binary's migrations is an error.
func (d *Database) migrateUp() error {
	m, err := d.newMigrate()
	if err != nil {
		return err
	}
	// Not closing m here since that would close the underlying DB connection.

	current, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if dirty {
		return fmt.Errorf("database is in a dirty migration state (version %d), restore from %s.bak", current, d.path)
	}

	latest, err := latestMigrationVersion()
	if err != nil {
		return err
	}
	if current == latest {
		return nil
	}
	if current > latest {
		return fmt.Errorf("database schema version %d is newer than this build supports (%d)", current, latest)
	}

	if err := d.backupFile(); err != nil {
		return err
	}

	slog.Info("upgrading database schema", "from", current, "to", latest)
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}

	return nil
}

// SchemaVersion reports the current database schema version.
func (d *Database) SchemaVersion() (uint, error) {
	m, err := d.newMigrate()
	if err != nil {
		return 0, err
	}

	version, _, err := m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

func (d *Database) newMigrate() (*migrate.Migrate, error) {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded migrations: %w", err)
	}

	driver, err := sqlite.WithInstance(d.db, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite migrate driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = &migrateLogger{}

	return m, nil
}

// latestMigrationVersion scans the embedded migration filenames, which follow
// the 000002_name.up.sql convention.
func latestMigrationVersion() (uint, error) {
	entries, err := fs.Glob(migrationFiles, "migrations/*.up.sql")
	if err != nil || len(entries) == 0 {
		return 0, fmt.Errorf("no embedded migrations found: %w", err)
	}

	var maxVersion uint
	for _, entry := range entries {
		var version uint
		if _, err := fmt.Sscanf(path.Base(entry), "%d_", &version); err == nil {
			if version > maxVersion {
				maxVersion = version
			}
		}
	}

	if maxVersion == 0 {
		return 0, errors.New("could not determine latest migration version")
	}
	return maxVersion, nil
}

type migrateLogger struct{}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	slog.Info(fmt.Sprintf("[migrate] "+format, v...))
}

func (l *migrateLogger) Verbose() bool {
	return false
}
