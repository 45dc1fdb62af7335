package middleware

import (
	"context"
	"log/slog"
	"net/http"
)

// LoggerContextKey is the context key for storing the request-scoped logger
const LoggerContextKey contextKey = "logger"

// WithRequestLogger stores a logger carrying the request id, method, path and
// client ip in the context. Place it after RequestID and WithClientIP.
func WithRequestLogger(baseLogger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestLogger := baseLogger.With(
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
			if requestID := GetRequestID(r.Context()); requestID != "" {
				requestLogger = requestLogger.With(slog.String("request_id", requestID))
			}
			if ip := GetClientIPFromContext(r.Context()); ip != "" {
				requestLogger = requestLogger.With(slog.String("ip", ip))
			}

			ctx := context.WithValue(r.Context(), LoggerContextKey, requestLogger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithAdminLogger adds the signed-in admin to the request logger. Place it
// after RequireAdmin.
func WithAdminLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		admin := GetAdmin(r.Context())
		if admin == nil {
			next.ServeHTTP(w, r)
			return
		}
		logger := GetLogger(r.Context()).With(slog.String("user", admin.Username))
		ctx := context.WithValue(r.Context(), LoggerContextKey, logger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetLogger retrieves the request-scoped logger from the context.
// If no logger is found, returns the provided fallback logger.
// If no fallback is provided, returns slog.Default().
func GetLogger(ctx context.Context, fallback ...*slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*slog.Logger); ok {
		return logger
	}
	if len(fallback) > 0 && fallback[0] != nil {
		return fallback[0]
	}
	return slog.Default()
}
