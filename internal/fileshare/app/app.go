package app

import (
	"context"
	"fmt"
	"io"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/fileshare/internal/fileshare/http"
	"github.com/aussiebroadwan/fileshare/internal/fileshare/service"
	"github.com/aussiebroadwan/fileshare/internal/fileshare/store"
	"github.com/aussiebroadwan/fileshare/internal/fileshare/store/drivers/sqlite"
	"github.com/aussiebroadwan/fileshare/internal/fileshare/templates"
	"github.com/aussiebroadwan/fileshare/pkg/sharesdk"
	"github.com/aussiebroadwan/fileshare/pkg/slogx"
	"github.com/spf13/afero"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the file sharing server with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger
	out    io.Writer

	// Core dependencies
	db    store.Store
	files afero.Fs

	// Services
	credentials   *service.CredentialService
	sessions      *service.SessionManager
	limiter       *service.LoginLimiter
	access        *service.AccessController
	content       *service.ContentService
	admin         *service.AdminService
	notifications *service.NotificationLog
	housekeeping  *service.HousekeepingService

	mu            sync.Mutex
	adminPassword string
	started       bool
	startTime     time.Time

	// HTTP server
	server    *http.Server
	router    *httpapi.Router
	listener  net.Listener
	serveErrs chan error
}

// ErrAlreadyStarted is returned by Start on a running application.
var ErrAlreadyStarted = errors.New("application already started")

// New creates a new Application instance with all dependencies initialized.
// The admin password is rotated here.
func New(cfg Config) (*Application, error) {
	osFs := afero.NewOsFs()
	if err := cfg.Validate(osFs); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		out: os.Stdout,
		logger: slogx.New(slogx.Config{
			Service: "fileshare",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		files:     afero.NewBasePathFs(osFs, cfg.RootDir),
		startTime: time.Now(),
		serveErrs: make(chan error, 1),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initServices(context.Background()); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initHTTP(osFs); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	return app, nil
}

// Handler returns the root HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

// AdminPassword returns the password generated for this run, "" after
// shutdown.
func (app *Application) AdminPassword() string {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.adminPassword
}

// Start binds the listen address, starts housekeeping and prints the
// banner, then serves in the background. It returns once the server is
// accepting connections.
func (app *Application) Start() error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.started {
		return ErrAlreadyStarted
	}

	ln, err := net.Listen("tcp", app.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", app.server.Addr, err)
	}
	app.listener = ln
	app.started = true
	app.startTime = time.Now()

	app.housekeeping.Start()

	app.logger.Info("fileshare starting",
		"addr", ln.Addr().String(),
		"root", app.cfg.RootDir,
		"version", BuildVersion,
	)
	printBanner(app.out, LANAddress(), app.cfg.Port, app.adminPassword)

	go func() {
		app.serveErrs <- app.server.Serve(ln)
	}()
	return nil
}

// Addr is the bound listen address, "" before Start.
func (app *Application) Addr() string {
	app.mu.Lock()
	defer app.mu.Unlock()
	if app.listener == nil {
		return ""
	}
	return app.listener.Addr().String()
}

// Status reports the same figures as the admin dashboard.
func (app *Application) Status(ctx context.Context) (sharesdk.StatusResponse, error) {
	app.mu.Lock()
	since := app.startTime
	app.mu.Unlock()
	return app.admin.Status(ctx, BuildVersion, since)
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	if err := app.Start(); err != nil {
		_ = app.Shutdown()
		return err
	}

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-app.serveErrs:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = app.Shutdown()
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

// Shutdown stops the server, forgets every session and the admin password,
// then closes the database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down fileshare...")

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

	app.mu.Lock()
	started := app.started
	app.started = false
	app.adminPassword = ""
	app.mu.Unlock()

	if started {
		app.housekeeping.Stop()
	}
	app.sessions.Clear()
	app.limiter.ClearAll()

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("fileshare stopped")
	return nil
}

// initDatabase opens the database and applies migrations
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(
		sqlite.DSN(app.cfg.DatabaseFile),
		sqlite.WithQueryTimeout(app.cfg.DBTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
	return nil
}

// initServices builds the services and rotates the admin password
func (app *Application) initServices(ctx context.Context) error {
	app.credentials = &service.CredentialService{Store: app.db}
	app.sessions = service.NewSessionManager(app.credentials, app.cfg.TokenTTL, app.cfg.IdleTimeout)
	app.credentials.Invalidator = app.sessions

	app.limiter = service.NewLoginLimiter(app.cfg.RateLimitAttempts, app.cfg.RateLimitWindow)
	app.access = service.NewAccessController(app.db, app.cfg.SharedPathsCache)
	app.content = &service.ContentService{FS: app.files, Access: app.access}
	app.notifications = service.NewNotificationLog(app.cfg.MaxNotifications)

	app.admin = &service.AdminService{
		Store:         app.db,
		FS:            app.files,
		Credentials:   app.credentials,
		Sessions:      app.sessions,
		Limiter:       app.limiter,
		Access:        app.access,
		Notifications: app.notifications,
	}

	app.housekeeping = service.NewHousekeepingService(
		app.sessions,
		app.limiter,
		app.logger,
		app.cfg.HousekeepingInterval,
	)

	password, err := app.credentials.CreateAdminIfAbsent(ctx)
	if err != nil {
		return fmt.Errorf("failed to bootstrap admin account: %w", err)
	}
	app.adminPassword = password
	app.logger.Info("admin password rotated")

	return nil
}

// initHTTP initializes the HTTP router and server. Page overrides are read
// from the real filesystem, not the serving root.
func (app *Application) initHTTP(osFs afero.Fs) error {
	pages, err := templates.Load(osFs, app.cfg.TemplateDir)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	router := httpapi.NewRouter(
		BuildVersion,
		app.db,
		app.sessions,
		app.logger,
		app.cfg.TrustProxyHeaders,
	)

	// Wire services to router
	router.FS = app.files
	router.Pages = &httpapi.Pages{Set: pages}
	router.Credentials = app.credentials
	router.Limiter = app.limiter
	router.Content = app.content
	router.Admin = app.admin
	router.DetailedLoginErrors = app.cfg.DetailedLoginErrors
	router.Status = app.Status
	router.ApplyRoutes()

	app.router = router

	// No write timeout: downloads of large files run as long as they need.
	app.server = &http.Server{
		Addr:              app.cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return nil
}
