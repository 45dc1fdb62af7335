package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/flipcart/internal"
	"github.com/dukerupert/flipcart/internal/domain"
)

const seedCSV = "name,color,size,storage,selling_price,mrp\nPhone A,Red,,,100,120\nPhone A,Blue\nPhone B,Green\n"

func writeSeed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.csv")
	require.NoError(t, os.WriteFile(path, []byte(seedCSV), 0o644))
	return path
}

func fixedOrder(context.Context) string { return domain.DefaultDisplayOrder }

func TestOpenCatalog(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("memory seeded from csv", func(t *testing.T) {
		c, err := OpenCatalog(ctx, internal.CatalogConfig{
			Backend: internal.BackendMemory,
			SeedCSV: writeSeed(t),
		}, fixedOrder, logger)
		require.NoError(t, err)
		defer c.Close()

		res, err := c.Store.List(ctx, domain.ListParams{Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 2, res.Total)
		assert.NoError(t, c.Ping(ctx))
	})

	t.Run("file persists across opens", func(t *testing.T) {
		cfg := internal.CatalogConfig{
			Backend: internal.BackendFile,
			File:    filepath.Join(t.TempDir(), "catalog.json"),
			SeedCSV: writeSeed(t),
		}
		c, err := OpenCatalog(ctx, cfg, fixedOrder, logger)
		require.NoError(t, err)
		_, err = c.Store.ImportCSV(ctx, []byte("name,color\nPhone C,Black\n"))
		require.NoError(t, err)

		reopened, err := OpenCatalog(ctx, cfg, fixedOrder, logger)
		require.NoError(t, err)
		res, err := reopened.Store.List(ctx, domain.ListParams{Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 3, res.Total)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := OpenCatalog(ctx, internal.CatalogConfig{Backend: "redis"}, fixedOrder, logger)
		assert.Error(t, err)
	})
}
