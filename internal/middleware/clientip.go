package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
)

// ClientIPContextKey is the context key for storing the client IP address
const ClientIPContextKey contextKey = "client_ip"

// WithClientIP stores the client address in the context. It trusts
// X-Forwarded-For and X-Real-IP, so the app must only be reachable through
// a proxy that sets them.
func WithClientIP() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), ClientIPContextKey, GetClientIP(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClientIPFromContext returns the address stored by WithClientIP, falling
// back to "" when the middleware did not run.
func GetClientIPFromContext(ctx context.Context) string {
	if ip, ok := ctx.Value(ClientIPContextKey).(string); ok {
		return ip
	}
	return ""
}

// clientIP prefers the context value and reads the request otherwise.
func clientIP(r *http.Request) string {
	if ip := GetClientIPFromContext(r.Context()); ip != "" {
		return ip
	}
	return GetClientIP(r)
}

// GetClientIP extracts the client IP from the request: the first
// X-Forwarded-For entry, then X-Real-IP, then RemoteAddr.
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
