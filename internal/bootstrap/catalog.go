package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dukerupert/flipcart/internal"
	"github.com/dukerupert/flipcart/internal/catalog"
	"github.com/dukerupert/flipcart/internal/domain"
	"github.com/dukerupert/flipcart/internal/postgres"
)

// Catalog is an opened catalog backend.
type Catalog struct {
	Store domain.CatalogStore

	// Ping reports whether the backend can serve requests.
	Ping func(ctx context.Context) error

	// Close releases connections. Safe to call on every backend.
	Close func()
}

// OpenCatalog builds the configured backend and loads it. The postgres
// backend is migrated before use.
func OpenCatalog(ctx context.Context, cfg internal.CatalogConfig, defaultOrder catalog.DefaultOrderFunc, logger *slog.Logger) (*Catalog, error) {
	noPing := func(context.Context) error { return nil }

	switch cfg.Backend {
	case internal.BackendPostgres:
		logger.Info("Running database migrations...")
		if err := internal.Migrate(ctx, cfg.DatabaseURL, logger); err != nil {
			return nil, fmt.Errorf("migration failed: %w", err)
		}

		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("database pool creation failed: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("database ping failed: %w", err)
		}
		logger.Info("Database connection established")

		return &Catalog{
			Store: postgres.NewCatalogStore(pool, cfg.DBTimeout, defaultOrder),
			Ping:  pool.Ping,
			Close: pool.Close,
		}, nil

	case internal.BackendFile:
		snapshot := catalog.NewFileStore(cfg.File)
		var source catalog.Source = snapshot
		if cfg.SeedCSV != "" {
			source = catalog.WithSeedFallback(snapshot, catalog.NewCSVSource(cfg.SeedCSV))
		}
		store := catalog.NewStore(
			catalog.WithSource(source),
			catalog.WithPersister(snapshot),
			catalog.WithDefaultOrder(defaultOrder),
			catalog.WithLogger(logger),
		)
		if err := store.Load(ctx); err != nil {
			return nil, err
		}
		return &Catalog{Store: store, Ping: noPing, Close: func() {}}, nil

	case internal.BackendMemory, "":
		opts := []catalog.Option{
			catalog.WithDefaultOrder(defaultOrder),
			catalog.WithLogger(logger),
		}
		if cfg.SeedCSV != "" {
			opts = append(opts, catalog.WithSource(catalog.NewCSVSource(cfg.SeedCSV)))
		}
		store := catalog.NewStore(opts...)
		if err := store.Load(ctx); err != nil {
			return nil, err
		}
		return &Catalog{Store: store, Ping: noPing, Close: func() {}}, nil

	default:
		return nil, fmt.Errorf("unknown catalog backend %q", cfg.Backend)
	}
}
