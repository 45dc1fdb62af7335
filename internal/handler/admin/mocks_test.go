package admin

import (
	"context"
	"io"
	"strings"

	"github.com/dukerupert/flipcart/internal/domain"
	"github.com/dukerupert/flipcart/internal/email"
)

// mockCatalog implements domain.CatalogStore for testing. Unset funcs panic
// through the nil embedded interface.
type mockCatalog struct {
	domain.CatalogStore
	upsertFunc        func(ctx context.Context, params domain.UpsertProductParams) (*domain.Product, error)
	updateFunc        func(ctx context.Context, identity string, params domain.UpsertProductParams) (*domain.Product, error)
	importFunc        func(ctx context.Context, data []byte) (*domain.ImportResult, error)
	updateOrderFunc   func(ctx context.Context, identity, order string) error
	deleteFunc        func(ctx context.Context, identity string) error
	deleteVariantFunc func(ctx context.Context, variantID string) error
	deleteAllFunc     func(ctx context.Context) error
	setImageFunc      func(ctx context.Context, variantID string, slot int, url string) error
}

func (m *mockCatalog) Upsert(ctx context.Context, params domain.UpsertProductParams) (*domain.Product, error) {
	return m.upsertFunc(ctx, params)
}

func (m *mockCatalog) Update(ctx context.Context, identity string, params domain.UpsertProductParams) (*domain.Product, error) {
	return m.updateFunc(ctx, identity, params)
}

func (m *mockCatalog) ImportCSV(ctx context.Context, data []byte) (*domain.ImportResult, error) {
	return m.importFunc(ctx, data)
}

func (m *mockCatalog) UpdateOrder(ctx context.Context, identity, order string) error {
	return m.updateOrderFunc(ctx, identity, order)
}

func (m *mockCatalog) Delete(ctx context.Context, identity string) error {
	return m.deleteFunc(ctx, identity)
}

func (m *mockCatalog) DeleteVariant(ctx context.Context, variantID string) error {
	return m.deleteVariantFunc(ctx, variantID)
}

func (m *mockCatalog) DeleteAll(ctx context.Context) error {
	return m.deleteAllFunc(ctx)
}

func (m *mockCatalog) SetVariantImage(ctx context.Context, variantID string, slot int, url string) error {
	return m.setImageFunc(ctx, variantID, slot, url)
}

type mockStorage struct {
	put     map[string]string
	deleted []string
	putErr  error
}

func (m *mockStorage) Put(_ context.Context, key string, content io.Reader, _ string) (string, error) {
	if m.putErr != nil {
		return "", m.putErr
	}
	var b strings.Builder
	_, _ = io.Copy(&b, content)
	if m.put == nil {
		m.put = make(map[string]string)
	}
	m.put[key] = b.String()
	return m.URL(key), nil
}

func (m *mockStorage) Delete(_ context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *mockStorage) URL(key string) string { return "/uploads/" + key }

func (m *mockStorage) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.put[key]
	return ok, nil
}

type mockNotifier struct {
	reports []email.ImportReport
	err     error
}

func (m *mockNotifier) SendImportReport(_ context.Context, report email.ImportReport) error {
	m.reports = append(m.reports, report)
	return m.err
}

type recorder struct {
	logins  []error
	uploads []error
}

func (r *recorder) RecordLogin(err error)       { r.logins = append(r.logins, err) }
func (r *recorder) RecordImageUpload(err error) { r.uploads = append(r.uploads, err) }

type mockSettings struct {
	current *domain.Settings
	getErr  error
	updated *domain.Settings
}

func (m *mockSettings) Get(context.Context) (*domain.Settings, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.current, nil
}

func (m *mockSettings) Update(_ context.Context, s domain.Settings) (*domain.Settings, error) {
	m.updated = &s
	return &s, nil
}
