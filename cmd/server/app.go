package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/pairs/internal/config"
	"github.com/phrazzld/pairs/internal/game"
	"github.com/phrazzld/pairs/internal/service"
	"github.com/phrazzld/pairs/internal/service/auth"
	"github.com/phrazzld/pairs/internal/task"
)

// application holds the shared dependencies and owns their shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	scheduler      *task.TimerScheduler
	sessionService service.SessionService
	jwtService     auth.JWTService
}

// newApplication wires every dependency from cfg and starts the session janitor.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.scheduler = task.NewTimerScheduler(task.DefaultTimerSchedulerConfig(), logger)

	app.sessionService = service.NewSessionService(service.SessionServiceConfig{
		Engine:        engineConfig(cfg.Game),
		MaxSessions:   cfg.Session.MaxSessions,
		IdleTimeout:   cfg.Session.IdleTimeout(),
		SweepInterval: cfg.Session.SweepInterval(),
	}, app.scheduler, logger)
	app.sessionService.Start()

	logger.Info("Application initialized successfully")
	return app, nil
}

func engineConfig(cfg config.GameConfig) game.EngineConfig {
	return game.EngineConfig{
		PairCount:     cfg.PairCount,
		Symbols:       cfg.Symbols,
		MismatchDelay: cfg.MismatchDelay(),
	}
}

// Run serves HTTP until ctx is cancelled or the process is signalled.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup ends every game, which also closes open event streams, then
// stops the timer scheduler.
func (app *application) cleanup() {
	if app.sessionService != nil {
		app.sessionService.Stop()
	}
	if app.scheduler != nil {
		app.scheduler.Stop()
	}

	app.logger.Info("Application shutdown completed")
}
