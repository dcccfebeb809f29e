// Package server initializes and runs the authentication server: database,
// field encryption, token issuer, auth service and the HTTP API, plus
// graceful shutdown and periodic blacklist maintenance.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/lifecourse/lifecourse/internal/cryptox"
	"github.com/lifecourse/lifecourse/internal/logging"
	"github.com/lifecourse/lifecourse/internal/server/auth"
	"github.com/lifecourse/lifecourse/internal/server/config"
	"github.com/lifecourse/lifecourse/internal/server/httpapi"
	"github.com/lifecourse/lifecourse/internal/server/repositories/repomanager"
	"github.com/lifecourse/lifecourse/internal/server/services"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const blacklistCleanupInterval = time.Hour

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	authService *services.AuthService
	httpServer  *httpapi.Server
}

// newLogger picks the log format by environment: human-readable console
// output in development, JSON lines in production.
func newLogger(cfg *config.Config) logging.Logger {
	if cfg.IsProduction() {
		return logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}
	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	return logging.NewZerologLogger(zl)
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := newLogger(cfg)
	ctx := context.Background()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	cipher, err := cryptox.New(cryptox.KeyFromSecret(ctx, cfg.EncryptionKey, logger), logger)
	if err != nil {
		return nil, fmt.Errorf("cipher init error: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager(cipher)
	if err := repos.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	issuer, err := auth.NewIssuer(
		cfg.AccessTokenSecret, cfg.RefreshTokenSecret,
		cfg.AccessTokenValidityDuration, cfg.RefreshTokenValidityDuration,
	)
	if err != nil {
		return nil, fmt.Errorf("issuer init error: %w", err)
	}

	authService := services.NewAuthService(db, repos, issuer, logger,
		services.WithFailClosedBlacklist(cfg.BlacklistFailClosed))

	httpServer := httpapi.NewServer(cfg, logger, authService, db, issuer.RefreshTTL())

	return &App{
		config:      cfg,
		logger:      logger,
		db:          db,
		authService: authService,
		httpServer:  httpServer,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// runBlacklistCleanup prunes expired blacklist rows at startup and then once
// per hour until shutdown.
func (app *App) runBlacklistCleanup(ctx context.Context) {
	app.authService.CleanupBlacklist(ctx)

	ticker := time.NewTicker(blacklistCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.authService.CleanupBlacklist(ctx)
		}
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...", "env", app.config.AppEnv)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.runBlacklistCleanup(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
}
