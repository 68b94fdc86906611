package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	appai "github.com/bryanwahyu/lexilens/internal/application/ai"
	appdocs "github.com/bryanwahyu/lexilens/internal/application/documents"
	"github.com/bryanwahyu/lexilens/internal/application/tasks"
	appusers "github.com/bryanwahyu/lexilens/internal/application/users"
	"github.com/bryanwahyu/lexilens/internal/config"
	domai "github.com/bryanwahyu/lexilens/internal/domain/ai"
	"github.com/bryanwahyu/lexilens/internal/domain/documents"
	"github.com/bryanwahyu/lexilens/internal/infra/ai/openai"
	"github.com/bryanwahyu/lexilens/internal/infra/auth"
	"github.com/bryanwahyu/lexilens/internal/infra/db"
	"github.com/bryanwahyu/lexilens/internal/infra/db/sqlstore"
	"github.com/bryanwahyu/lexilens/internal/infra/extract"
	"github.com/bryanwahyu/lexilens/internal/infra/httpserver"
	"github.com/bryanwahyu/lexilens/internal/infra/storage"
	"github.com/bryanwahyu/lexilens/internal/logger"
	"github.com/bryanwahyu/lexilens/internal/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	sqlDB, dialect, err := db.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("database open: %w", err)
	}
	defer sqlDB.Close()

	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	userSvc := &appusers.Service{
		Repo:   sqlstore.NewUserRepository(sqlDB, dialect),
		Hasher: auth.NewHasher(cfg.Auth.BcryptCost),
		Tokens: tokens,
	}

	model := openai.New(cfg.LLM)
	if !domai.Available(model) {
		log.Warn("AI features disabled", "reason", domai.UnavailableReason(model))
	} else {
		log.Info("AI model configured", "model", cfg.LLM.Model)
	}
	aiSvc := appai.NewService(model, cfg.LLM.MaxContextChars)
	aiSvc.Logger = log
	aiSvc.Metrics = m

	submitter := tasks.NewGoSubmitter(log)
	submitter.Metrics = m

	docSvc := &appdocs.Service{
		Docs:      sqlstore.NewDocumentRepository(sqlDB, dialect),
		Analyses:  sqlstore.NewAnalysisRepository(sqlDB, dialect),
		Failures:  sqlstore.NewFailureRepository(sqlDB, dialect),
		Extractor: extract.New(log),
		AI:        aiSvc,
		Tasks:     submitter,
		Archive:   openArchive(ctx, cfg.Storage, log),
		UploadDir: cfg.Upload.Dir,
		Logger:    log,
		Metrics:   m,
	}

	boot := &db.Bootstrapper{
		DB:      sqlDB,
		Dialect: dialect,
		Logger:  log,
		Seed:    seedUser(cfg.Auth, userSvc, log),
	}
	go func() {
		if err := boot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("database bootstrap gave up", "error", err)
		}
	}()

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: httpserver.NewRouter(httpserver.Deps{
			Users:     userSvc,
			Documents: docSvc,
			AI:        aiSvc,
			Tokens:    tokens,
			DB:        boot,
			Metrics:   m,
			Logger:    log,
			Server:    cfg.Server,
			Upload:    cfg.Upload,
			Limit:     cfg.RateLimit,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(log.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr, "dialect", string(dialect))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}

	// graceful shutdown: stop accepting requests, then let running analyses finish
	log.Info("shutting down server", "timeout", cfg.Server.ShutdownTimeout)
	sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error("http shutdown", "error", err)
	}
	if err := submitter.Shutdown(sctx); err != nil {
		log.Warn("background analyses still running at exit", "error", err)
	}
	return nil
}

// openArchive disables archiving instead of failing startup; archives are best effort.
func openArchive(ctx context.Context, cfg config.Storage, log *slog.Logger) documents.ArchiveStore {
	store, err := storage.New(ctx, cfg)
	if err != nil {
		log.Warn("archive storage unavailable, originals will not be kept", "driver", cfg.Driver, "error", err)
		return nil
	}
	if store != nil {
		log.Info("archiving uploads", "driver", cfg.Driver)
	}
	return store
}

func seedUser(cfg config.Auth, users *appusers.Service, log *slog.Logger) func(context.Context) error {
	if cfg.SeedEmail == "" {
		return nil
	}
	return func(ctx context.Context) error {
		created, err := users.EnsureUser(ctx, cfg.SeedEmail, cfg.SeedPassword)
		if err != nil {
			return err
		}
		if created {
			log.Info("default user created", "email", cfg.SeedEmail)
		}
		return nil
	}
}
