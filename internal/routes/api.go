package routes

import (
	"github.com/dukerupert/flipcart/internal/router"
)

// RegisterOpsRoutes registers health, metrics and local image routes. They
// are not gated by maintenance mode or admin auth.
func RegisterOpsRoutes(r *router.Router, deps OpsDeps) {
	r.Get("/health", deps.HealthHandler)
	if deps.MetricsHandler != nil {
		r.Get("/metrics", deps.MetricsHandler.ServeHTTP)
	}
	if deps.UploadsDir != "" {
		r.Static(deps.UploadsURL, deps.UploadsDir)
	}
}
