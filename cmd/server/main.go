package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dukerupert/flipcart/internal"
	"github.com/dukerupert/flipcart/internal/auth"
	"github.com/dukerupert/flipcart/internal/bootstrap"
	"github.com/dukerupert/flipcart/internal/domain"
	"github.com/dukerupert/flipcart/internal/email"
	"github.com/dukerupert/flipcart/internal/handler"
	"github.com/dukerupert/flipcart/internal/handler/admin"
	"github.com/dukerupert/flipcart/internal/handler/storefront"
	"github.com/dukerupert/flipcart/internal/middleware"
	"github.com/dukerupert/flipcart/internal/router"
	"github.com/dukerupert/flipcart/internal/routes"
	"github.com/dukerupert/flipcart/internal/storage"
	"github.com/dukerupert/flipcart/internal/telemetry"
	"github.com/dukerupert/flipcart/internal/worker"
)

const shutdownTimeout = 15 * time.Second

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)
	slog.SetDefault(logger)

	// Error tracking
	flushSentry, err := telemetry.InitSentry(telemetry.SentryConfig{
		DSN:              cfg.Sentry.DSN,
		Enabled:          cfg.Sentry.Enabled,
		Environment:      cfg.Sentry.Environment,
		Release:          cfg.Sentry.Release,
		SampleRate:       cfg.Sentry.SampleRate,
		TracesSampleRate: cfg.Sentry.TracesSampleRate,
		Debug:            cfg.Sentry.Debug,
	}, logger)
	if err != nil {
		return err
	}
	defer flushSentry()

	// Settings record
	settingsStore, err := bootstrap.Settings(cfg)
	if err != nil {
		return err
	}
	if cfg.SettingsKey == "" && cfg.Env == "prod" {
		logger.Warn("SETTINGS_KEY not set, the SMTP password is stored in plain text")
	}
	defaultOrder := bootstrap.DefaultOrder(settingsStore)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := middleware.NewMetrics("flipcart", registry)
	catalogMetrics := telemetry.NewCatalogMetrics("flipcart", registry)

	// Catalog
	backend, err := bootstrap.OpenCatalog(ctx, cfg.Catalog, defaultOrder, logger)
	if err != nil {
		return err
	}
	defer backend.Close()
	catalogStore := telemetry.InstrumentCatalog(backend.Store, catalogMetrics)

	// Admin auth
	account, err := bootstrap.AdminAccount(cfg.Admin, logger)
	if err != nil {
		return err
	}
	authService, err := auth.NewService(cfg.SessionSecret, account, auth.WithTTL(cfg.Admin.TokenTTL))
	if err != nil {
		return fmt.Errorf("auth initialization failed: %w", err)
	}

	// Image storage
	images, err := storage.NewStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}
	logger.Info("Image storage ready", "provider", cfg.Storage.Provider)

	notifier := email.NewNotifier(settingsStore, cfg.Email.Host, int(cfg.Email.Port), nil, logger)
	mailPool := worker.NewPool(worker.Config{Name: "mail", MaxConcurrency: 2}, logger)
	poolCtx, stopPool := context.WithCancel(context.Background())
	poolDone := make(chan error, 1)
	go func() { poolDone <- mailPool.Start(poolCtx) }()
	defer func() {
		stopPool()
		<-poolDone
	}()

	defaultLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	defer defaultLimiter.Stop()
	loginLimiter := middleware.NewRateLimiter(middleware.LoginRateLimiterConfig())
	defer loginLimiter.Stop()

	r := router.New(
		router.Recovery(logger),
		telemetry.SentryMiddleware(),
		middleware.RequestID,
		middleware.WithClientIP(),
		middleware.WithRequestLogger(logger),
		httpMetrics.Middleware,
		middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig()),
		middleware.Timeout(middleware.DefaultTimeout),
		router.Logger(logger),
	)

	routes.RegisterStorefrontRoutes(r.Group(defaultLimiter.Middleware), routes.StorefrontDeps{
		ProductHandler:  storefront.NewProductHandler(catalogStore),
		SettingsHandler: storefront.NewSettingsHandler(settingsStore),
		Settings:        settingsStore,
	})
	routes.RegisterAdminRoutes(r, routes.AdminDeps{
		AuthHandler:     admin.NewAuthHandler(authService, catalogMetrics),
		ProductHandler:  admin.NewProductHandler(catalogStore),
		UploadHandler:   admin.NewUploadHandler(catalogStore, images, notifier, catalogMetrics, mailPool),
		SettingsHandler: admin.NewSettingsHandler(settingsStore),
		Verifier:        authService,
		Settings:        settingsStore,
		LoginLimiter:    loginLimiter,
	})

	ops := routes.OpsDeps{
		HealthHandler:  healthHandler(backend.Ping),
		MetricsHandler: httpMetrics.Handler(),
	}
	if local, ok := images.(*storage.LocalStorage); ok {
		ops.UploadsDir = local.BasePath()
		ops.UploadsURL = cfg.Storage.LocalURL
	}
	routes.RegisterOpsRoutes(r, ops)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router.CORS(cfg.CORSOrigins)(r),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "addr", srv.Addr, "env", cfg.Env, "catalog", cfg.Catalog.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

func healthHandler(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := ping(ctx); err != nil {
			handler.ErrorResponse(w, r, domain.WrapError(err, domain.EUNAVAILABLE, "health", "catalog backend unavailable"))
			return
		}
		handler.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
