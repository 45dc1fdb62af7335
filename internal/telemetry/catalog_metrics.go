package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dukerupert/flipcart/internal/domain"
)

// CatalogMetrics holds the business-level catalog collectors.
type CatalogMetrics struct {
	// Storefront
	ProductViews    prometheus.Counter
	ProductSearches *prometheus.CounterVec // outcome: hit, empty

	// Imports
	Imports         *prometheus.CounterVec // result: ok, failed
	ImportedRows    prometheus.Counter
	SkippedRows     prometheus.Counter
	ProductsCreated *prometheus.CounterVec // source: csv, manual

	// Store operations
	StoreOps      *prometheus.CounterVec   // op, code
	StoreDuration *prometheus.HistogramVec // op

	// Admin
	Logins       *prometheus.CounterVec // result: ok, failed
	ImageUploads *prometheus.CounterVec // result: ok, failed
}

// NewCatalogMetrics creates the collectors and registers them with reg. A
// nil reg uses the default Prometheus registry.
func NewCatalogMetrics(namespace string, reg prometheus.Registerer) *CatalogMetrics {
	if namespace == "" {
		namespace = "flipcart"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	subsystem := "catalog"

	return &CatalogMetrics{
		ProductViews: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "product_views_total",
			Help:      "Total product detail reads",
		}),
		ProductSearches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "searches_total",
			Help:      "Total list requests carrying a search term",
		}, []string{"outcome"}),
		Imports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "imports_total",
			Help:      "Total CSV imports",
		}, []string{"result"}),
		ImportedRows: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "imported_rows_total",
			Help:      "Total CSV rows appended as variants",
		}),
		SkippedRows: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "skipped_rows_total",
			Help:      "Total CSV rows skipped during import",
		}),
		ProductsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "products_created_total",
			Help:      "Total products created",
		}, []string{"source"}),
		StoreOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "store_operations_total",
			Help:      "Catalog store operations by outcome code",
		}, []string{"op", "code"}),
		StoreDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "store_operation_duration_seconds",
			Help:      "Catalog store operation latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "admin",
			Name:      "logins_total",
			Help:      "Admin login attempts",
		}, []string{"result"}),
		ImageUploads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "admin",
			Name:      "image_uploads_total",
			Help:      "Admin image uploads",
		}, []string{"result"}),
	}
}

// RecordImport records the outcome of one CSV import.
func (m *CatalogMetrics) RecordImport(res *domain.ImportResult, err error) {
	if err != nil || res == nil {
		m.Imports.WithLabelValues("failed").Inc()
		return
	}
	m.Imports.WithLabelValues("ok").Inc()
	m.ImportedRows.Add(float64(res.Imported))
	m.SkippedRows.Add(float64(len(res.Skipped)))
	m.ProductsCreated.WithLabelValues("csv").Add(float64(res.Created))
}

// RecordLogin records an admin login attempt.
func (m *CatalogMetrics) RecordLogin(err error) {
	m.Logins.WithLabelValues(result(err)).Inc()
}

// RecordImageUpload records an admin image upload.
func (m *CatalogMetrics) RecordImageUpload(err error) {
	m.ImageUploads.WithLabelValues(result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "failed"
	}
	return "ok"
}
