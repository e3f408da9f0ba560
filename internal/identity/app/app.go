package app

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/syndly/syndly/internal/identity/http"
	"github.com/syndly/syndly/internal/identity/presence"
	"github.com/syndly/syndly/internal/identity/service"
	"github.com/syndly/syndly/internal/identity/store"
	"github.com/syndly/syndly/internal/identity/store/drivers/sqlite"
	"github.com/syndly/syndly/pkg/idx"
	"github.com/syndly/syndly/pkg/jwtx"
	"github.com/syndly/syndly/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application encapsulates the identity service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	signer   *jwtx.Signer
	presence *presence.Registry

	tokenService      *service.TokenService
	provisionService  *service.ProvisionService
	onboardingService *service.OnboardingService
	twoFactorService  *service.TwoFactorService
	seedService       *service.SeedService
	outboxService     *service.OutboxService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg:      cfg,
		presence: presence.NewRegistry(),
		logger: slogx.New(slogx.Config{
			Service: "identity-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initSigner(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()

	if err := app.seed(context.Background()); err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("seed defaults: %w", err)
	}

	app.initHTTP()
	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.outboxService.Start()

	app.logger.Info("identity service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully stops the HTTP server, the outbox loop and the store.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down identity service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.outboxService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("identity service stopped")
	return nil
}

func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initSigner loads the PKCS8 Ed25519 key, or generates an ephemeral one
// when no key file is configured. Ephemeral keys invalidate all sessions
// on restart, which is acceptable for dev only.
func (app *Application) initSigner() error {
	kid := idx.New().String()

	if app.cfg.SigningKeyPEM == "" {
		app.logger.Warn("no signing key configured, using ephemeral key")
		_, key, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return fmt.Errorf("generate ephemeral key: %w", err)
		}
		signer, err := jwtx.NewSignerFromKey(kid, app.cfg.Issuer, key)
		if err != nil {
			return err
		}
		app.signer = signer
		return nil
	}

	pemKey, err := os.ReadFile(app.cfg.SigningKeyPEM)
	if err != nil {
		return fmt.Errorf("read signing key: %w", err)
	}
	signer, err := jwtx.NewSigner(kid, app.cfg.Issuer, pemKey)
	if err != nil {
		return err
	}
	app.signer = signer
	return nil
}

func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		Store:      app.db,
		Signer:     app.signer,
		Issuer:     app.cfg.Issuer,
		SessionTTL: app.cfg.SessionTTL,
	}

	app.provisionService = &service.ProvisionService{
		Store:  app.db,
		PackID: app.cfg.DefaultPackID,
	}

	app.onboardingService = &service.OnboardingService{
		Store:  app.db,
		Oracle: service.ContractStatusOracle{},
	}

	app.twoFactorService = &service.TwoFactorService{
		Store: app.db,
		Token: app.tokenService,
	}

	app.seedService = &service.SeedService{Store: app.db}

	app.outboxService = &service.OutboxService{
		Store:       app.db,
		Dispatcher:  logDispatcher{logger: app.logger},
		Logger:      app.logger,
		Interval:    app.cfg.OutboxInterval,
		MaxAttempts: app.cfg.OutboxMaxAttempts,
	}
}

// seed installs the default permission catalog and standard pack on a
// fresh database; a populated store is left untouched.
func (app *Application) seed(ctx context.Context) error {
	return app.seedService.SeedIfEmpty(ctx,
		defaultPack(app.cfg.DefaultPackID),
		defaultPermissions(),
		defaultRoles(),
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.presence, app.logger)

	router.TokenService = app.tokenService
	router.ProvisionService = app.provisionService
	router.OnboardingService = app.onboardingService
	router.TwoFactorService = app.twoFactorService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// logDispatcher is the development mail sink: it logs instead of
// delivering. Production deployments inject a real relay.
type logDispatcher struct {
	logger *slog.Logger
}

func (d logDispatcher) Send(_ context.Context, recipient, subject, _ string) error {
	d.logger.Info("outbound email", "recipient", recipient, "subject", subject)
	return nil
}
