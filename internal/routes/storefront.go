package routes

import (
	"github.com/dukerupert/flipcart/internal/middleware"
	"github.com/dukerupert/flipcart/internal/router"
)

// RegisterStorefrontRoutes registers the public catalog routes. They answer
// 503 while the store is in maintenance mode.
func RegisterStorefrontRoutes(r *router.Router, deps StorefrontDeps) {
	api := r.Route("/api/products",
		middleware.Maintenance(deps.Settings),
		middleware.MaxBodySize(middleware.DefaultMaxBodySize),
	)

	api.Get("", deps.ProductHandler.List)
	api.Get("/settings", deps.SettingsHandler.Public)
	api.Get("/{id}", deps.ProductHandler.Detail)
}
