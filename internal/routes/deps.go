package routes

import (
	"net/http"

	"github.com/dukerupert/flipcart/internal/domain"
	"github.com/dukerupert/flipcart/internal/handler/admin"
	"github.com/dukerupert/flipcart/internal/handler/storefront"
	"github.com/dukerupert/flipcart/internal/middleware"
)

// StorefrontDeps contains dependencies for the public catalog routes
type StorefrontDeps struct {
	ProductHandler  *storefront.ProductHandler
	SettingsHandler *storefront.SettingsHandler

	// Settings backs the maintenance gate.
	Settings domain.SettingsStore
}

// AdminDeps contains dependencies for the console API
type AdminDeps struct {
	AuthHandler     *admin.AuthHandler
	ProductHandler  *admin.ProductHandler
	UploadHandler   *admin.UploadHandler
	SettingsHandler *admin.SettingsHandler

	// Verifier checks bearer tokens; Settings backs the IP allow-list.
	Verifier middleware.TokenVerifier
	Settings domain.SettingsStore

	// LoginLimiter throttles POST /api/auth/login per client IP.
	LoginLimiter *middleware.RateLimiter
}

// OpsDeps contains dependencies for health and metrics routes
type OpsDeps struct {
	HealthHandler  http.HandlerFunc
	MetricsHandler http.Handler

	// UploadsDir is served under UploadsURL when images are stored locally.
	UploadsDir string
	UploadsURL string
}
