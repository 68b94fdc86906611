package postgres

import (
	"database/sql"

	_ "github.com/lib/pq"

	"github.com/bryanwahyu/lexilens/internal/config"
)

// Open builds a lib/pq pool from a postgres:// URL. It does not ping.
func Open(cfg config.Database) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}
