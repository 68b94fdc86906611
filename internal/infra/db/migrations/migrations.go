// Package migrations carries the schema for every supported backend and
// applies it with golang-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/bryanwahyu/lexilens/internal/infra/db/sqlstore"
)

//go:embed files
var files embed.FS

// Up applies every pending migration for the dialect. Already up to date is not an error.
func Up(db *sql.DB, dialect sqlstore.Dialect) error {
	m, err := newMigrate(db, dialect)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Version reports the applied schema version and whether it is dirty.
func Version(db *sql.DB, dialect sqlstore.Dialect) (uint, bool, error) {
	m, err := newMigrate(db, dialect)
	if err != nil {
		return 0, false, err
	}
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

// The returned Migrate must not be closed: its driver closes db with it.
// The postgres and mysql drivers pin one pooled connection each.
func newMigrate(db *sql.DB, dialect sqlstore.Dialect) (*migrate.Migrate, error) {
	src, err := iofs.New(files, "files/"+string(dialect))
	if err != nil {
		return nil, fmt.Errorf("load migrations for %s: %w", dialect, err)
	}

	var driver database.Driver
	switch dialect {
	case sqlstore.SQLite:
		driver, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	case sqlstore.Postgres:
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	case sqlstore.MySQL:
		driver, err = mysql.WithInstance(db, &mysql.Config{})
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, string(dialect), driver)
	if err != nil {
		return nil, fmt.Errorf("init migrate: %w", err)
	}
	return m, nil
}
