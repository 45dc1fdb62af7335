package telemetry

import (
	"context"
	"strings"
	"time"

	"github.com/dukerupert/flipcart/internal/domain"
)

// instrumentedCatalog records metrics around every catalog operation.
type instrumentedCatalog struct {
	next    domain.CatalogStore
	metrics *CatalogMetrics
}

// InstrumentCatalog wraps store so each call is counted by outcome and timed.
func InstrumentCatalog(store domain.CatalogStore, metrics *CatalogMetrics) domain.CatalogStore {
	return &instrumentedCatalog{next: store, metrics: metrics}
}

func (c *instrumentedCatalog) observe(op string, start time.Time, err error) {
	code := "ok"
	switch {
	case domain.IsValidationError(err):
		code = domain.EINVALID
	case err != nil:
		code = domain.ErrorCode(err)
	}
	c.metrics.StoreOps.WithLabelValues(op, code).Inc()
	c.metrics.StoreDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (c *instrumentedCatalog) List(ctx context.Context, params domain.ListParams) (*domain.ListResult, error) {
	start := time.Now()
	res, err := c.next.List(ctx, params)
	c.observe("list", start, err)

	if err == nil && strings.TrimSpace(params.Search) != "" {
		outcome := "hit"
		if res.Filtered == 0 {
			outcome = "empty"
		}
		c.metrics.ProductSearches.WithLabelValues(outcome).Inc()
	}
	return res, err
}

func (c *instrumentedCatalog) Get(ctx context.Context, identity string) (*domain.ProductDetail, error) {
	start := time.Now()
	detail, err := c.next.Get(ctx, identity)
	c.observe("get", start, err)
	if err == nil {
		c.metrics.ProductViews.Inc()
	}
	return detail, err
}

func (c *instrumentedCatalog) Upsert(ctx context.Context, params domain.UpsertProductParams) (*domain.Product, error) {
	start := time.Now()
	p, err := c.next.Upsert(ctx, params)
	c.observe("upsert", start, err)
	return p, err
}

func (c *instrumentedCatalog) Update(ctx context.Context, identity string, params domain.UpsertProductParams) (*domain.Product, error) {
	start := time.Now()
	p, err := c.next.Update(ctx, identity, params)
	c.observe("update", start, err)
	return p, err
}

func (c *instrumentedCatalog) ImportCSV(ctx context.Context, data []byte) (*domain.ImportResult, error) {
	start := time.Now()
	res, err := c.next.ImportCSV(ctx, data)
	c.observe("import", start, err)
	c.metrics.RecordImport(res, err)
	return res, err
}

func (c *instrumentedCatalog) ReplaceCSV(ctx context.Context, data []byte) (*domain.ImportResult, error) {
	start := time.Now()
	res, err := c.next.ReplaceCSV(ctx, data)
	c.observe("replace", start, err)
	c.metrics.RecordImport(res, err)
	return res, err
}

func (c *instrumentedCatalog) UpdateOrder(ctx context.Context, identity, order string) error {
	start := time.Now()
	err := c.next.UpdateOrder(ctx, identity, order)
	c.observe("update_order", start, err)
	return err
}

func (c *instrumentedCatalog) Delete(ctx context.Context, identity string) error {
	start := time.Now()
	err := c.next.Delete(ctx, identity)
	c.observe("delete", start, err)
	return err
}

func (c *instrumentedCatalog) DeleteVariant(ctx context.Context, variantID string) error {
	start := time.Now()
	err := c.next.DeleteVariant(ctx, variantID)
	c.observe("delete_variant", start, err)
	return err
}

func (c *instrumentedCatalog) DeleteAll(ctx context.Context) error {
	start := time.Now()
	err := c.next.DeleteAll(ctx)
	c.observe("delete_all", start, err)
	return err
}

func (c *instrumentedCatalog) SetVariantImage(ctx context.Context, variantID string, slot int, url string) error {
	start := time.Now()
	err := c.next.SetVariantImage(ctx, variantID, slot, url)
	c.observe("set_image", start, err)
	return err
}
