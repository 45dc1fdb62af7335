package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/dukerupert/flipcart/internal/domain"
)

// SentryConfig holds configuration for Sentry error tracking
type SentryConfig struct {
	DSN              string
	Enabled          bool
	Environment      string
	Release          string
	SampleRate       float64 // 0 means 1.0
	TracesSampleRate float64
	Debug            bool
}

var sentryEnabled bool

// InitSentry initializes the Sentry client. The returned cleanup flushes
// pending events and should run on shutdown.
func InitSentry(cfg SentryConfig, logger *slog.Logger) (func(), error) {
	sentryEnabled = false

	if !cfg.Enabled {
		logger.Info("Sentry disabled (SENTRY_ENABLED=false)")
		return func() {}, nil
	}
	if cfg.DSN == "" {
		logger.Warn("Sentry DSN not configured, disabling error tracking")
		return func() {}, nil
	}

	sampleRate := cfg.SampleRate
	if sampleRate == 0 {
		sampleRate = 1.0
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		SampleRate:       sampleRate,
		TracesSampleRate: cfg.TracesSampleRate,
		Debug:            cfg.Debug,
		BeforeSend:       scrubEvent,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Sentry: %w", err)
	}
	sentryEnabled = true

	logger.Info("Sentry initialized",
		"environment", cfg.Environment,
		"release", cfg.Release,
		"sample_rate", sampleRate,
	)
	return func() { sentry.Flush(2 * time.Second) }, nil
}

// scrubEvent drops credentials before an event leaves the process.
func scrubEvent(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	if event.Request != nil {
		delete(event.Request.Headers, "Authorization")
		delete(event.Request.Headers, "Cookie")
	}
	return event
}

// IsEnabled returns whether Sentry is currently enabled
func IsEnabled() bool {
	return sentryEnabled
}

// SentryMiddleware gives each request its own hub carrying the request, and
// reports panics before re-raising them for the router's Recovery.
func SentryMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsEnabled() {
				next.ServeHTTP(w, r)
				return
			}

			hub := sentry.CurrentHub().Clone()
			hub.Scope().SetRequest(r)
			ctx := sentry.SetHubOnContext(r.Context(), hub)

			defer func() {
				if err := recover(); err != nil {
					hub.RecoverWithContext(ctx, err)
					panic(err)
				}
			}()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SentryAdminContext tags the request hub with the signed-in admin. Place it
// after the admin auth middleware.
func SentryAdminContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			if admin := domain.AdminFromContext(r.Context()); admin != nil {
				hub.ConfigureScope(func(scope *sentry.Scope) {
					scope.SetUser(sentry.User{
						ID:       strconv.FormatInt(admin.ID, 10),
						Username: admin.Username,
					})
				})
			}
		}
		next.ServeHTTP(w, r)
	})
}

// CaptureErrorFromContext reports err on the request hub, or the global hub
// outside a request.
func CaptureErrorFromContext(ctx context.Context, err error, extras map[string]interface{}) {
	if !IsEnabled() || err == nil {
		return
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		for key, value := range extras {
			scope.SetExtra(key, value)
		}
		hub.CaptureException(err)
	})
}

// AddBreadcrumb records a catalog event on the request hub.
func AddBreadcrumb(ctx context.Context, category, message string, data map[string]interface{}) {
	if !IsEnabled() {
		return
	}
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.AddBreadcrumb(&sentry.Breadcrumb{
		Category: category,
		Message:  message,
		Data:     data,
		Level:    sentry.LevelInfo,
	}, nil)
}
