package telemetry_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/flipcart/internal/domain"
	"github.com/dukerupert/flipcart/internal/telemetry"
)

// mockCatalog implements domain.CatalogStore with overridable funcs.
type mockCatalog struct {
	domain.CatalogStore
	ListFunc      func(ctx context.Context, params domain.ListParams) (*domain.ListResult, error)
	GetFunc       func(ctx context.Context, identity string) (*domain.ProductDetail, error)
	ImportCSVFunc func(ctx context.Context, data []byte) (*domain.ImportResult, error)
	UpsertFunc    func(ctx context.Context, params domain.UpsertProductParams) (*domain.Product, error)
}

func (m *mockCatalog) List(ctx context.Context, params domain.ListParams) (*domain.ListResult, error) {
	return m.ListFunc(ctx, params)
}

func (m *mockCatalog) Get(ctx context.Context, identity string) (*domain.ProductDetail, error) {
	return m.GetFunc(ctx, identity)
}

func (m *mockCatalog) ImportCSV(ctx context.Context, data []byte) (*domain.ImportResult, error) {
	return m.ImportCSVFunc(ctx, data)
}

func (m *mockCatalog) Upsert(ctx context.Context, params domain.UpsertProductParams) (*domain.Product, error) {
	return m.UpsertFunc(ctx, params)
}

func TestInstrumentCatalog(t *testing.T) {
	ctx := context.Background()
	metrics := telemetry.NewCatalogMetrics("test", prometheus.NewRegistry())

	mock := &mockCatalog{
		ListFunc: func(_ context.Context, p domain.ListParams) (*domain.ListResult, error) {
			if p.Search == "none" {
				return &domain.ListResult{}, nil
			}
			return &domain.ListResult{Total: 1, Filtered: 1}, nil
		},
		GetFunc: func(_ context.Context, id string) (*domain.ProductDetail, error) {
			if id == "missing" {
				return nil, domain.NotFound("catalog.get", "product", id)
			}
			return &domain.ProductDetail{}, nil
		},
		ImportCSVFunc: func(context.Context, []byte) (*domain.ImportResult, error) {
			return &domain.ImportResult{
				Imported: 4,
				Created:  2,
				Skipped:  []domain.SkippedRow{{Row: 3, Reason: "name is empty"}},
			}, nil
		},
		UpsertFunc: func(context.Context, domain.UpsertProductParams) (*domain.Product, error) {
			return nil, domain.NewValidationError("catalog.upsert", "name", "name is required")
		},
	}
	store := telemetry.InstrumentCatalog(mock, metrics)

	_, err := store.List(ctx, domain.ListParams{Search: "phone"})
	require.NoError(t, err)
	_, err = store.List(ctx, domain.ListParams{Search: "none"})
	require.NoError(t, err)
	_, err = store.List(ctx, domain.ListParams{})
	require.NoError(t, err)

	_, err = store.Get(ctx, "1")
	require.NoError(t, err)
	_, err = store.Get(ctx, "missing")
	require.Error(t, err)

	_, err = store.ImportCSV(ctx, []byte("x"))
	require.NoError(t, err)

	_, err = store.Upsert(ctx, domain.UpsertProductParams{})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ProductSearches.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ProductSearches.WithLabelValues("empty")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ProductViews))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.StoreOps.WithLabelValues("list", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StoreOps.WithLabelValues("get", domain.ENOTFOUND)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StoreOps.WithLabelValues("upsert", domain.EINVALID)))
	assert.Equal(t, 4.0, testutil.ToFloat64(metrics.ImportedRows))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SkippedRows))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.ProductsCreated.WithLabelValues("csv")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Imports.WithLabelValues("ok")))
}

func TestCatalogMetrics_RecordImportFailure(t *testing.T) {
	metrics := telemetry.NewCatalogMetrics("test", prometheus.NewRegistry())
	metrics.RecordImport(nil, assert.AnError)
	metrics.RecordLogin(assert.AnError)
	metrics.RecordLogin(nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Imports.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Logins.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Logins.WithLabelValues("ok")))
}

func TestInitSentry_Disabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cleanup, err := telemetry.InitSentry(telemetry.SentryConfig{Enabled: false}, logger)
	require.NoError(t, err)
	cleanup()
	assert.False(t, telemetry.IsEnabled())

	cleanup, err = telemetry.InitSentry(telemetry.SentryConfig{Enabled: true}, logger)
	require.NoError(t, err)
	cleanup()
	assert.False(t, telemetry.IsEnabled())

	// no-ops while disabled
	telemetry.CaptureErrorFromContext(context.Background(), assert.AnError, nil)
	telemetry.AddBreadcrumb(context.Background(), "catalog", "import", nil)
}
