// Package db wires the configured SQL backend: it picks the dialect from the
// database URL, opens the pool, and brings the schema up at startup.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/bryanwahyu/lexilens/internal/config"
	"github.com/bryanwahyu/lexilens/internal/infra/db/mysql"
	"github.com/bryanwahyu/lexilens/internal/infra/db/postgres"
	"github.com/bryanwahyu/lexilens/internal/infra/db/sqlite"
	"github.com/bryanwahyu/lexilens/internal/infra/db/sqlstore"
)

// Open returns a pool for cfg.URL, falling back to the embedded SQLite file
// when no URL is configured. It never dials the server.
func Open(cfg config.Database) (*sql.DB, sqlstore.Dialect, error) {
	raw := strings.TrimSpace(cfg.URL)
	if raw == "" {
		db, err := sqlite.Open(cfg.SQLitePath)
		return db, sqlstore.SQLite, err
	}

	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return nil, "", fmt.Errorf("database url has no scheme")
	}
	switch strings.ToLower(scheme) {
	case "postgres", "postgresql":
		db, err := postgres.Open(cfg)
		return db, sqlstore.Postgres, err
	case "mysql":
		db, err := mysql.Open(cfg)
		return db, sqlstore.MySQL, err
	case "sqlite", "sqlite3", "file":
		db, err := sqlite.Open(rest)
		return db, sqlstore.SQLite, err
	default:
		return nil, "", fmt.Errorf("unsupported database scheme %q", scheme)
	}
}

// Ping checks connectivity with a short timeout.
func Ping(ctx context.Context, db *sql.DB) error {
	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return db.PingContext(ctx2)
}
