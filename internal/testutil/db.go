// Package testutil holds fakes and fixtures shared by package tests.
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/bryanwahyu/lexilens/internal/infra/db/migrations"
	"github.com/bryanwahyu/lexilens/internal/infra/db/sqlite"
	"github.com/bryanwahyu/lexilens/internal/infra/db/sqlstore"
)

// Repos bundles every repository over one migrated database.
type Repos struct {
	DB        *sql.DB
	Users     *sqlstore.UserRepository
	Documents *sqlstore.DocumentRepository
	Analyses  *sqlstore.AnalysisRepository
	Failures  *sqlstore.FailureRepository
}

// NewDB returns a migrated SQLite database in a temp dir, closed at test end.
func NewDB(t testing.TB) *sql.DB {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Up(db, sqlstore.SQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func NewRepos(t testing.TB) *Repos {
	t.Helper()
	db := NewDB(t)
	return &Repos{
		DB:        db,
		Users:     sqlstore.NewUserRepository(db, sqlstore.SQLite),
		Documents: sqlstore.NewDocumentRepository(db, sqlstore.SQLite),
		Analyses:  sqlstore.NewAnalysisRepository(db, sqlstore.SQLite),
		Failures:  sqlstore.NewFailureRepository(db, sqlstore.SQLite),
	}
}
