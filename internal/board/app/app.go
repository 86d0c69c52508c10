package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/consultboard/internal/board/http"
	"github.com/aussiebroadwan/consultboard/internal/board/service"
	"github.com/aussiebroadwan/consultboard/internal/board/store"
	"github.com/aussiebroadwan/consultboard/internal/board/store/drivers/postgres"
	"github.com/aussiebroadwan/consultboard/internal/board/store/drivers/sqlite"
	"github.com/aussiebroadwan/consultboard/pkg/boardevents"
	"github.com/aussiebroadwan/consultboard/pkg/jwtx"
	"github.com/aussiebroadwan/consultboard/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the board server with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	events   boardevents.Publisher
	bus      *boardevents.RedisBus // nil without BOARD_REDIS_URL
	verifier jwtx.Verifier         // nil without BOARD_JWT_SECRET
	registry *prometheus.Registry

	// Services
	clientService     *service.ClientService
	projectService    *service.ProjectService
	consultantService *service.ConsultantService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "board-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	ctx := context.Background()

	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}
	if err := app.initEvents(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	if err := app.initAuth(); err != nil {
		app.closeDeps()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler exposes the routed handler, mostly for tests.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("board service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"driver", app.cfg.DatabaseDriver,
		"namespace", app.cfg.Namespace,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down board service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.bus != nil {
		if err := app.bus.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
		}
	}

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("board service stopped")
	return nil
}

func (app *Application) closeDeps() {
	if app.bus != nil {
		_ = app.bus.Close()
	}
	_ = app.db.Close()
}

// initDatabase opens the configured driver and applies migrations
func (app *Application) initDatabase(ctx context.Context) error {
	var (
		db  store.Store
		err error
	)
	switch app.cfg.DatabaseDriver {
	case "postgres":
		db, err = postgres.NewStore(ctx, app.cfg.DatabaseURL)
	default:
		host := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
		db, err = sqlite.NewStore(host)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// initEvents connects the change publisher. Without Redis the board still
// works but viewers only converge on reload.
func (app *Application) initEvents(ctx context.Context) error {
	if app.cfg.RedisURL == "" {
		app.events = boardevents.NopPublisher{}
		app.logger.Warn("BOARD_REDIS_URL not set, change events will not be published")
		return nil
	}

	bus, err := boardevents.NewRedisBusFromURL(app.cfg.RedisURL, app.cfg.Namespace)
	if err != nil {
		return fmt.Errorf("failed to configure redis: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := bus.Ping(pingCtx); err != nil {
		// Publication failures are tolerated at runtime, so a cold Redis is too
		app.logger.Warn("redis not reachable at startup", "error", err)
	}

	app.bus = bus
	app.events = bus
	app.logger.Info("publishing change events", "channel", boardevents.Channel(app.cfg.Namespace))
	return nil
}

func (app *Application) initAuth() error {
	if app.cfg.JWTSecret == "" {
		app.logger.Warn("BOARD_JWT_SECRET not set, API is open to anyone who can reach it")
		return nil
	}

	v, err := jwtx.NewVerifierHS256([]byte(app.cfg.JWTSecret), app.cfg.JWTIssuer, 30*time.Second)
	if err != nil {
		return fmt.Errorf("failed to configure token verifier: %w", err)
	}
	app.verifier = v
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	deps := service.Deps{
		Store:   app.db,
		Events:  app.events,
		Metrics: service.NewMetrics(app.registry),
	}

	app.clientService = &service.ClientService{Deps: deps}
	app.projectService = &service.ProjectService{Deps: deps}
	app.consultantService = &service.ConsultantService{Deps: deps}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.verifier,
		BuildVersion,
		app.db,
		app.events,
		app.registry,
		app.logger,
	)

	// Wire services to router
	router.ClientService = app.clientService
	router.ProjectService = app.projectService
	router.ConsultantService = app.consultantService
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
