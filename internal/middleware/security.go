package middleware

import (
	"net/http"
	"strconv"
)

// SecurityHeadersConfig configures security headers
type SecurityHeadersConfig struct {
	// ContentSecurityPolicy sets the Content-Security-Policy header
	ContentSecurityPolicy string

	// FrameOptions sets X-Frame-Options
	FrameOptions string

	// ContentTypeNosniff sets X-Content-Type-Options: nosniff
	ContentTypeNosniff bool

	// ReferrerPolicy sets Referrer-Policy
	ReferrerPolicy string

	// HSTSMaxAge sets Strict-Transport-Security max-age in seconds; 0 disables it.
	HSTSMaxAge int
}

// DefaultSecurityHeadersConfig suits a JSON API: nothing it returns should
// ever be rendered or framed.
func DefaultSecurityHeadersConfig() SecurityHeadersConfig {
	return SecurityHeadersConfig{
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		FrameOptions:          "DENY",
		ContentTypeNosniff:    true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		HSTSMaxAge:            31536000,
	}
}

// SecurityHeaders adds security headers to all responses
func SecurityHeaders(config SecurityHeadersConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if config.FrameOptions != "" {
				h.Set("X-Frame-Options", config.FrameOptions)
			}
			if config.ContentTypeNosniff {
				h.Set("X-Content-Type-Options", "nosniff")
			}
			if config.ReferrerPolicy != "" {
				h.Set("Referrer-Policy", config.ReferrerPolicy)
			}
			if config.ContentSecurityPolicy != "" {
				h.Set("Content-Security-Policy", config.ContentSecurityPolicy)
			}
			if config.HSTSMaxAge > 0 {
				h.Set("Strict-Transport-Security", "max-age="+strconv.Itoa(config.HSTSMaxAge)+"; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}
