package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/lexilens/internal/config"
	"github.com/bryanwahyu/lexilens/internal/infra/db/sqlstore"
)

func TestOpen_DefaultsToSQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "lexilens.db")
	db, dialect, err := Open(config.Database{SQLitePath: path})
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, sqlstore.SQLite, dialect)
	require.NoError(t, db.Ping())
	assert.FileExists(t, path)
}

func TestOpen_PicksDialectFromScheme(t *testing.T) {
	tests := []struct {
		url  string
		want sqlstore.Dialect
	}{
		{"postgres://u:p@localhost:5432/lexi?sslmode=disable", sqlstore.Postgres},
		{"postgresql://u:p@localhost/lexi", sqlstore.Postgres},
		{"mysql://u:p@localhost:3306/lexi", sqlstore.MySQL},
	}
	for _, tc := range tests {
		db, dialect, err := Open(config.Database{URL: tc.url})
		require.NoError(t, err, tc.url)
		assert.Equal(t, tc.want, dialect, tc.url)
		db.Close()
	}
}

func TestOpen_RejectsUnknownScheme(t *testing.T) {
	_, _, err := Open(config.Database{URL: "mongodb://localhost/lexi"})
	require.Error(t, err)

	_, _, err = Open(config.Database{URL: "not a url"})
	require.Error(t, err)
}
