package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/stepattend/internal/attend/authflow"
	"github.com/aussiebroadwan/stepattend/internal/attend/session"
	redisdrv "github.com/aussiebroadwan/stepattend/internal/attend/session/drivers/redis"
	sqlitedrv "github.com/aussiebroadwan/stepattend/internal/attend/session/drivers/sqlite"
	"github.com/aussiebroadwan/stepattend/pkg/attendsdk"
	"github.com/aussiebroadwan/stepattend/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application owns the client-side dependencies: the session store, one API
// client that reads its bearer token from that store, and the auth flows.
type Application struct {
	cfg    Config
	logger *slog.Logger

	store *session.Manager

	Client    *attendsdk.Client
	Login     *authflow.Machine
	Registrar *authflow.Registrar
}

// New creates an Application with all dependencies initialized.
func New(ctx context.Context, cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "attendctl",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
			Output:  cfg.LogOutput,
		}),
	}

	if err := app.initSession(ctx); err != nil {
		return nil, err
	}

	app.initClient()
	app.initFlows()

	return app, nil
}

// Store is the session store the application persists to.
func (app *Application) Store() session.Store {
	return app.store
}

// Session is the current persisted session.
func (app *Application) Session() session.Session {
	return session.Load(app.store)
}

// Logger is the application logger.
func (app *Application) Logger() *slog.Logger {
	return app.logger
}

// Close releases the session backend.
func (app *Application) Close() error {
	if err := app.store.Close(); err != nil {
		app.logger.Error("error closing session store", "error", err)
		return err
	}
	return nil
}

// initSession opens the configured session backend.
func (app *Application) initSession(ctx context.Context) error {
	var backend session.Backend

	switch app.cfg.SessionBackend {
	case BackendMemory:
		backend = session.NewMemoryBackend()

	case BackendRedis:
		store, err := redisdrv.Connect(ctx, app.cfg.RedisURL, app.cfg.RedisPrefix)
		if err != nil {
			return fmt.Errorf("failed to connect session store: %w", err)
		}
		backend = store

	default:
		store, err := sqlitedrv.Open(app.cfg.DatabaseFile)
		if err != nil {
			return fmt.Errorf("failed to initialize session database: %w", err)
		}
		backend = store
	}

	app.store = session.NewManager(backend, app.logger)
	app.logger.Debug("session store ready", "backend", app.cfg.SessionBackend)
	return nil
}

// initClient builds the single API client.
func (app *Application) initClient() {
	opts := []attendsdk.Option{
		attendsdk.WithTimeout(app.cfg.APITimeout),
		attendsdk.WithLogger(app.logger),
	}
	if app.cfg.RateLimit > 0 {
		opts = append(opts, attendsdk.WithRateLimit(app.cfg.RateLimit, app.cfg.RateBurst))
	}

	app.Client = attendsdk.NewClient(app.cfg.APIURL, app.store, opts...)
}

// initFlows wires the login machine and registrar to the client and store.
func (app *Application) initFlows() {
	app.Login = authflow.NewMachine(app.Client, app.store, app.logger)

	app.Registrar = authflow.NewRegistrar(app.Client, app.store, app.logger)
	app.Registrar.Delay = app.cfg.RegisterLoginDelay
}
