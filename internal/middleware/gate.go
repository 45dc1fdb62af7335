package middleware

import (
	"net/http"

	"github.com/dukerupert/flipcart/internal/domain"
)

// AllowAdminIP admits only clients on the settings allow-list. An empty list
// admits everyone. The list is read on every request so changes apply
// without a restart.
func AllowAdminIP(settings domain.SettingsStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := settings.Get(r.Context())
			if err != nil {
				respondWithError(w, r, err)
				return
			}

			ip := clientIP(r)
			if !s.AllowsIP(ip) {
				GetLogger(r.Context()).Warn("admin request from disallowed ip", "ip", ip)
				respondWithError(w, r, domain.ErrIPNotAllowed)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Maintenance answers 503 while the maintenance flag is set. If the settings
// cannot be read the storefront stays open.
func Maintenance(settings domain.SettingsStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := settings.Get(r.Context())
			if err != nil {
				GetLogger(r.Context()).Error("maintenance check failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if s.Maintenance {
				w.Header().Set("Retry-After", "300")
				respondWithError(w, r, domain.ErrMaintenance)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
