package routes

import (
	"github.com/dukerupert/flipcart/internal/middleware"
	"github.com/dukerupert/flipcart/internal/router"
	"github.com/dukerupert/flipcart/internal/telemetry"
)

// RegisterAdminRoutes registers the console API. Every route is limited to
// the settings IP allow-list; everything except login also needs a bearer
// token.
func RegisterAdminRoutes(r *router.Router, deps AdminDeps) {
	gated := r.Group(middleware.AllowAdminIP(deps.Settings))

	// Auth
	auth := gated.Route("/api/auth", middleware.MaxBodySize(middleware.DefaultMaxBodySize))
	auth.Post("/login", deps.AuthHandler.Login, deps.LoginLimiter.Middleware)

	// Everything below requires a valid token
	admin := gated.Group(
		middleware.RequireAdmin(deps.Verifier),
		middleware.WithAdminLogger,
		telemetry.SentryAdminContext,
	)
	admin.Get("/api/auth/me", deps.AuthHandler.Me)

	// Product management
	products := admin.Route("/api/products", middleware.MaxBodySize(middleware.DefaultMaxBodySize))
	products.Post("", deps.ProductHandler.Upsert)
	products.Post("/add", deps.ProductHandler.Upsert)
	products.Put("/{id}", deps.ProductHandler.Update)
	products.Delete("/{id}", deps.ProductHandler.Delete)
	products.Post("/delete", deps.ProductHandler.DeleteRecord)
	products.Post("/delete-all", deps.ProductHandler.DeleteAll)
	products.Post("/update-order", deps.ProductHandler.UpdateOrder)

	// Uploads
	uploads := admin.Route("/api/products", middleware.MaxBodySize(middleware.UploadMaxBodySize))
	uploads.Post("/upload-csv", deps.UploadHandler.UploadCSV)
	uploads.Post("/upload-image", deps.UploadHandler.UploadImage)

	// Settings
	settings := admin.Route("/api/settings", middleware.MaxBodySize(middleware.DefaultMaxBodySize))
	settings.Get("", deps.SettingsHandler.Get)
	settings.Put("", deps.SettingsHandler.Update)
}
