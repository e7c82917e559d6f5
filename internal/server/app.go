// Package server initializes and runs the vault server. It opens the
// database, runs migrations, wires repositories and services, and starts
// the HTTP API with graceful shutdown on OS signals.
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

	"github.com/securepass/vault/internal/logging"
	"github.com/securepass/vault/internal/server/config"
	"github.com/securepass/vault/internal/server/httpapi"
	"github.com/securepass/vault/internal/server/repositories/repomanager"
	"github.com/securepass/vault/internal/server/services"
)

// purgeInterval is how often the expired-session sweeper runs.
const purgeInterval = 1 * time.Hour

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	sessionService *services.SessionService
	authService    *services.AuthService
	vaultService   *services.VaultService
	backupService  *services.BackupService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	us := services.NewUserService(db, m)
	ss := services.NewSessionService(db, m, c)

	return &App{
		config:         c,
		logger:         logger,
		db:             db,
		sessionService: ss,
		authService:    services.NewAuthService(db, us, ss),
		vaultService:   services.NewVaultService(db, m),
		backupService:  services.NewBackupService(c),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := httpapi.NewServer(app.config.EndpointAddrHTTP, app.logger,
		app.authService, app.vaultService, app.backupService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// startSessionSweeper periodically removes expired session rows. Expired
// sessions already fail verification; this just keeps the table small.
func (app *App) startSessionSweeper(ctx context.Context) {

	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.sessionService.PurgeExpired(ctx)
			if err != nil {
				app.logger.Error(ctx, "session purge failed", "error", err.Error())
				continue
			}
			if n > 0 {
				app.logger.Info(ctx, "purged expired sessions", "count", n)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

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
		app.startSessionSweeper(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
