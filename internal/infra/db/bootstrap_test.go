package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/lexilens/internal/config"
)

func TestBootstrapper_RetriesSeedUntilSuccess(t *testing.T) {
	sqlDB, dialect, err := Open(config.Database{SQLitePath: filepath.Join(t.TempDir(), "boot.db")})
	require.NoError(t, err)
	defer sqlDB.Close()

	calls := 0
	b := &Bootstrapper{
		DB:        sqlDB,
		Dialect:   dialect,
		BaseDelay: time.Millisecond,
		MaxDelay:  5 * time.Millisecond,
		Seed: func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("not yet")
			}
			return nil
		},
	}
	assert.False(t, b.Ready())

	require.NoError(t, b.Run(context.Background()))
	assert.True(t, b.Ready())
	assert.Equal(t, 3, calls)
	assert.NoError(t, b.Err())
	assert.True(t, b.Healthy(context.Background()))
}

func TestBootstrapper_StopsOnCancel(t *testing.T) {
	sqlDB, dialect, err := Open(config.Database{SQLitePath: filepath.Join(t.TempDir(), "boot.db")})
	require.NoError(t, err)
	defer sqlDB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	b := &Bootstrapper{
		DB:        sqlDB,
		Dialect:   dialect,
		BaseDelay: time.Millisecond,
		MaxDelay:  5 * time.Millisecond,
		Seed:      func(ctx context.Context) error { return errors.New("seed store down") },
	}
	require.Error(t, b.Run(ctx))
	assert.False(t, b.Ready())
	assert.ErrorContains(t, b.Err(), "seed store down")
	assert.False(t, b.Healthy(context.Background()))
}
