package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/bryanwahyu/lexilens/internal/infra/db/migrations"
	"github.com/bryanwahyu/lexilens/internal/infra/db/sqlstore"
)

// Bootstrapper brings the store up in the background: ping, migrate, seed.
// Until one attempt succeeds Ready reports false and the HTTP layer answers 503.
type Bootstrapper struct {
	DB      *sql.DB
	Dialect sqlstore.Dialect
	Logger  *slog.Logger
	// Seed runs after migrations; nil skips seeding.
	Seed func(ctx context.Context) error

	BaseDelay time.Duration
	MaxDelay  time.Duration

	ready   atomic.Bool
	mu      sync.Mutex
	lastErr error
}

// Run blocks until the store is ready or ctx is cancelled.
func (b *Bootstrapper) Run(ctx context.Context) error {
	base := b.BaseDelay
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	maxDelay := b.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 30 * time.Second
	}
	backoff := retry.WithCappedDuration(maxDelay, retry.NewExponential(base))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := b.step(ctx); err != nil {
			b.setErr(err)
			b.logger().Warn("database not ready", "attempt", attempt, "dialect", string(b.Dialect), "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	b.setErr(nil)
	b.ready.Store(true)
	b.logger().Info("database ready", "dialect", string(b.Dialect), "attempts", attempt)
	return nil
}

func (b *Bootstrapper) step(ctx context.Context) error {
	if err := Ping(ctx, b.DB); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	if err := migrations.Up(b.DB, b.Dialect); err != nil {
		return err
	}
	if b.Seed != nil {
		if err := b.Seed(ctx); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	return nil
}

// Ready reports whether migrations and seeding completed.
func (b *Bootstrapper) Ready() bool { return b.ready.Load() }

// Err is the error of the last failed attempt, nil once ready.
func (b *Bootstrapper) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

// Healthy pings the database when the store is ready.
func (b *Bootstrapper) Healthy(ctx context.Context) bool {
	if !b.Ready() {
		return false
	}
	return Ping(ctx, b.DB) == nil
}

func (b *Bootstrapper) setErr(err error) {
	b.mu.Lock()
	b.lastErr = err
	b.mu.Unlock()
}

func (b *Bootstrapper) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}
