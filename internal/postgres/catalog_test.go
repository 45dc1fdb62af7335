//go:build integration

package postgres_test

// Run with: go test -tags integration ./internal/postgres/...

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/dukerupert/flipcart/internal"
	"github.com/dukerupert/flipcart/internal/catalog"
	"github.com/dukerupert/flipcart/internal/domain"
	"github.com/dukerupert/flipcart/internal/postgres"
)

const header = "Name,Color,Size,Storage,Selling Price,MRP,Features,Img1,Img2,Img3,Img4,Img5,Display Order\n"

func setupStore(t *testing.T) *postgres.CatalogStore {
	t.Helper()
	return postgres.NewCatalogStore(setupPool(t), 10*time.Second, nil)
}

func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("flipcart_test"),
		tcpostgres.WithUsername("flipcart"),
		tcpostgres.WithPassword("flipcart"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(pgC) })

	url, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, internal.Migrate(ctx, url, logger))

	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func listAll(t *testing.T, store domain.CatalogStore, search string) []domain.Product {
	t.Helper()
	res, err := store.List(context.Background(), domain.ListParams{Limit: 100, Search: search})
	require.NoError(t, err)
	return res.Items
}

func TestCatalogStore_Integration(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	t.Run("import groups rows and inherits cells", func(t *testing.T) {
		csv := header +
			"Phone X,Black,,64GB,\"19,999\",\"24,999\",Fast,a.jpg,,,,,5\n" +
			"-,Blue,,-,-,-,-,b.jpg,,,,,\n" +
			"Phone Y,Red,,128GB,999,1999,,c.jpg,,,,,2\n"

		res, err := store.ImportCSV(ctx, []byte(csv))
		require.NoError(t, err)
		assert.Equal(t, 3, res.Imported)
		assert.Equal(t, 2, res.Created)

		items := listAll(t, store, "")
		require.Len(t, items, 2)
		assert.Equal(t, "Phone Y", items[0].Name)
		assert.Equal(t, "Phone X", items[1].Name)

		x := items[1]
		require.Len(t, x.Variants, 2)
		assert.Equal(t, "Blue", x.Variants[1].Color)
		assert.Equal(t, "64GB", x.Variants[1].Storage)
		assert.Equal(t, "Blue", x.Color)
		assert.True(t, x.FromCSV)
	})

	t.Run("get by hash returns aggregates", func(t *testing.T) {
		items := listAll(t, store, "phone x")
		require.Len(t, items, 1)

		detail, err := store.Get(ctx, catalog.ContentHash(items[0].ID))
		require.NoError(t, err)
		assert.Equal(t, "Phone X", detail.Name)
		assert.ElementsMatch(t, []string{"64GB"}, detail.Storages)
		assert.Len(t, detail.Colors, 2)
		assert.Equal(t, int64(20), detail.DiscountPercent)
	})

	t.Run("search matches variant color", func(t *testing.T) {
		items := listAll(t, store, "RED")
		require.Len(t, items, 1)
		assert.Equal(t, "Phone Y", items[0].Name)
	})

	t.Run("upsert replaces variants", func(t *testing.T) {
		p, err := store.Upsert(ctx, domain.UpsertProductParams{
			Name: "Phone Y",
			Variants: []domain.VariantInput{
				{VariantFields: domain.VariantFields{Color: "Green", SellingPrice: "100"}},
			},
		})
		require.NoError(t, err)
		require.Len(t, p.Variants, 1)
		assert.Equal(t, "Green", p.Color)
		assert.Equal(t, "Phone Y", p.Variants[0].Name)
		assert.Empty(t, p.DisplayOrder, "manual products without an order stay unordered")
	})

	t.Run("update rename conflict", func(t *testing.T) {
		items := listAll(t, store, "phone y")
		require.Len(t, items, 1)

		_, err := store.Update(ctx, items[0].ID, domain.UpsertProductParams{
			Name:     "Phone X",
			Variants: []domain.VariantInput{{Name: "v"}},
		})
		assert.True(t, domain.IsCode(err, domain.ECONFLICT))
	})

	t.Run("order and images", func(t *testing.T) {
		items := listAll(t, store, "phone y")
		require.Len(t, items, 1)
		p := items[0]

		require.NoError(t, store.UpdateOrder(ctx, p.ID, " 1 "))
		require.NoError(t, store.SetVariantImage(ctx, p.Variants[0].ID, 3, "https://cdn/x.jpg"))

		detail, err := store.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "1", detail.DisplayOrder)
		assert.Equal(t, "https://cdn/x.jpg", detail.Variants[0].Image3)

		err = store.SetVariantImage(ctx, "missing", 1, "u")
		assert.True(t, domain.IsCode(err, domain.ENOTFOUND))
	})

	t.Run("delete all", func(t *testing.T) {
		require.NoError(t, store.DeleteAll(ctx))
		assert.Empty(t, listAll(t, store, ""))

		_, err := store.Get(ctx, "1")
		assert.True(t, domain.IsCode(err, domain.ENOTFOUND))
	})
}

func TestCatalogStore_TransactionBounds(t *testing.T) {
	pool := setupPool(t)
	store := postgres.NewCatalogStore(pool, time.Second, nil)
	ctx := context.Background()

	_, err := store.ImportCSV(ctx, []byte(header+"Phone A,Red\n"))
	require.NoError(t, err)

	t.Run("failed import rolls back earlier rows", func(t *testing.T) {
		_, err := store.ImportCSV(ctx, []byte(header+"Fresh One,Red\nBad\x00Name,Blue\n"))
		require.Error(t, err)
		assert.True(t, domain.IsCode(err, domain.EINTERNAL))

		assert.Equal(t, []string{"Phone A"}, names(listAll(t, store, "")))
	})

	t.Run("failed replace keeps the catalog", func(t *testing.T) {
		_, err := store.ReplaceCSV(ctx, []byte(header+"Fresh One,Red\nBad\x00Name,Blue\n"))
		require.Error(t, err)

		assert.Equal(t, []string{"Phone A"}, names(listAll(t, store, "")))
	})

	t.Run("replace swaps the catalog", func(t *testing.T) {
		res, err := store.ReplaceCSV(ctx, []byte(header+"Phone B,Blue\n"))
		require.NoError(t, err)
		assert.Equal(t, 1, res.Created)

		assert.Equal(t, []string{"Phone B"}, names(listAll(t, store, "")))
	})

	t.Run("statements are bounded by the store timeout", func(t *testing.T) {
		lock, err := pool.Begin(ctx)
		require.NoError(t, err)
		defer func() { _ = lock.Rollback(ctx) }()
		_, err = lock.Exec(ctx, `LOCK TABLE products IN ACCESS EXCLUSIVE MODE`)
		require.NoError(t, err)

		start := time.Now()
		_, err = store.List(ctx, domain.ListParams{Limit: 10})
		require.Error(t, err)
		assert.True(t, domain.IsCode(err, domain.EINTERNAL))
		assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
		assert.Less(t, time.Since(start), 5*time.Second)
	})
}

func names(items []domain.Product) []string {
	out := make([]string, 0, len(items))
	for _, p := range items {
		out = append(out, p.Name)
	}
	return out
}
