package catalog

import (
	"context"
	"log/slog"
	"maps"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dukerupert/flipcart/internal/domain"
)

// Store is an in-memory catalog. Readers work on immutable snapshots; each
// write builds a new snapshot, persists it when a Persister is configured,
// and only then publishes it.
type Store struct {
	mu  sync.Mutex
	cur atomic.Pointer[state]

	source       Source
	persister    Persister
	defaultOrder DefaultOrderFunc
	newVariantID func() string
	logger       *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithSource sets where Load reads the initial catalog from.
func WithSource(src Source) Option {
	return func(s *Store) { s.source = src }
}

// WithPersister makes every write durable before it becomes visible.
func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

// WithDefaultOrder sets the display order used by manual submissions that
// carry none.
func WithDefaultOrder(fn DefaultOrderFunc) Option {
	return func(s *Store) { s.defaultOrder = fn }
}

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// NewStore returns an empty store. Call Load to populate it from its source.
func NewStore(opts ...Option) *Store {
	s := &Store{
		newVariantID: uuid.NewString,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cur.Store(newState())
	return s
}

// Load replaces the catalog with the contents of the configured source.
// Without a source the catalog is left empty.
func (s *Store) Load(ctx context.Context) error {
	const op = "catalog.load"

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.source == nil {
		return nil
	}

	snap, err := s.source.Load(ctx)
	if err != nil {
		return domain.Internal(err, op, "failed to load catalog")
	}
	st := fromSnapshot(snap)
	s.cur.Store(st)

	s.logger.Info("catalog loaded", "source", s.source.Name(), "products", len(st.products))
	return nil
}

// Reload re-reads the source, discarding the current catalog.
func (s *Store) Reload(ctx context.Context) error {
	return s.Load(ctx)
}

// Len returns the number of products, including variant-less ones.
func (s *Store) Len() int {
	return len(s.cur.Load().products)
}

func (s *Store) write(ctx context.Context, op string, fn func(*tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := begin(s.cur.Load(), s.newVariantID)
	if err := fn(t); err != nil {
		return err
	}

	if s.persister != nil {
		if err := s.persister.Save(ctx, t.state.snapshot()); err != nil {
			return domain.Internal(err, op, "failed to save catalog")
		}
	}

	s.cur.Store(t.state)
	return nil
}

// =============================================================================
// Writes
// =============================================================================

// Upsert creates a product, or replaces every variant of the product with
// the same name. The product copies its fields from the first variant.
func (s *Store) Upsert(ctx context.Context, params domain.UpsertProductParams) (*domain.Product, error) {
	const op = "catalog.upsert"

	sub, err := PrepareSubmission(ctx, op, params, s.defaultOrder)
	if err != nil {
		return nil, err
	}

	var out domain.Product
	err = s.write(ctx, op, func(t *tx) error {
		id, ok := t.byName[sub.Name]
		if !ok {
			id = t.createProduct("", sub.Name, sub.DisplayOrder, false)
		}
		out = View(t.replace(id, sub))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces the product addressed by identity and may rename it.
func (s *Store) Update(ctx context.Context, identity string, params domain.UpsertProductParams) (*domain.Product, error) {
	const op = "catalog.update"

	sub, err := PrepareSubmission(ctx, op, params, s.defaultOrder)
	if err != nil {
		return nil, err
	}

	var out domain.Product
	err = s.write(ctx, op, func(t *tx) error {
		id, ok := t.lookup(identity)
		if !ok {
			return domain.NotFound(op, "product", identity)
		}
		if other, taken := t.byName[sub.Name]; taken && other != id {
			return domain.Conflict(op, "a product with this name already exists")
		}
		t.rename(id, sub.Name)
		out = View(t.replace(id, sub))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ImportCSV appends every data row of a CSV document. The import is applied
// as a whole or not at all.
func (s *Store) ImportCSV(ctx context.Context, data []byte) (*domain.ImportResult, error) {
	return s.importCSV(ctx, "catalog.import", data, false)
}

// ReplaceCSV empties the catalog and imports a CSV document in one commit. A
// document that fails to parse or apply leaves the catalog untouched.
func (s *Store) ReplaceCSV(ctx context.Context, data []byte) (*domain.ImportResult, error) {
	return s.importCSV(ctx, "catalog.replace", data, true)
}

func (s *Store) importCSV(ctx context.Context, op string, data []byte, replace bool) (*domain.ImportResult, error) {
	records, err := ParseCSV(op, data)
	if err != nil {
		return nil, err
	}

	var result *domain.ImportResult
	err = s.write(ctx, op, func(t *tx) error {
		if replace {
			t.clear()
		}
		var gerr error
		result, gerr = Group(ctx, t, records)
		return gerr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateOrder sets the display order of a product.
func (s *Store) UpdateOrder(ctx context.Context, identity, order string) error {
	const op = "catalog.update_order"

	return s.write(ctx, op, func(t *tx) error {
		id, ok := t.lookup(identity)
		if !ok {
			return domain.NotFound(op, "product", identity)
		}
		t.mutable(id).DisplayOrder = strings.TrimSpace(order)
		return nil
	})
}

// Delete removes a product and its variants.
func (s *Store) Delete(ctx context.Context, identity string) error {
	return s.write(ctx, "catalog.delete", func(t *tx) error {
		if id, ok := t.lookup(identity); ok {
			t.remove(id)
		}
		return nil
	})
}

// DeleteVariant removes one variant. The product keeps its mirrored fields.
func (s *Store) DeleteVariant(ctx context.Context, variantID string) error {
	return s.write(ctx, "catalog.delete_variant", func(t *tx) error {
		productID, ok := t.variants[variantID]
		if !ok {
			return nil
		}
		p := t.mutable(productID)
		for i, v := range p.Variants {
			if v.ID == variantID {
				p.Variants = append(p.Variants[:i], p.Variants[i+1:]...)
				break
			}
		}
		delete(t.variants, variantID)
		return nil
	})
}

// DeleteAll empties the catalog. Generated ids are not reused afterwards.
func (s *Store) DeleteAll(ctx context.Context) error {
	return s.write(ctx, "catalog.delete_all", func(t *tx) error {
		t.clear()
		return nil
	})
}

// SetVariantImage records url in the 1-based image slot of a variant.
func (s *Store) SetVariantImage(ctx context.Context, variantID string, slot int, url string) error {
	const op = "catalog.set_image"

	if slot < 1 || slot > domain.ImageSlots {
		return domain.Errorf(domain.EINVALID, op, "image slot must be between 1 and %d", domain.ImageSlots)
	}

	return s.write(ctx, op, func(t *tx) error {
		productID, ok := t.variants[variantID]
		if !ok {
			return domain.NotFound(op, "variant", variantID)
		}
		p := t.mutable(productID)
		for i := range p.Variants {
			if p.Variants[i].ID == variantID {
				p.Variants[i].SetImage(slot, url)
			}
		}
		return nil
	})
}

// =============================================================================
// Reads
// =============================================================================

// List returns one page of the products that have variants and match the
// search, in display order.
func (s *Store) List(ctx context.Context, params domain.ListParams) (*domain.ListResult, error) {
	const op = "catalog.list"

	if err := ValidateListParams(op, params); err != nil {
		return nil, err
	}

	st := s.cur.Load()
	matched := make([]*domain.Product, 0, len(st.products))
	for _, p := range st.products {
		if len(p.Variants) == 0 || !Matches(p, params.Search) {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool {
		return Less(matched[i], matched[j])
	})

	start, end := Page(len(matched), params)
	items := make([]domain.Product, 0, end-start)
	for _, p := range matched[start:end] {
		items = append(items, View(p))
	}

	return &domain.ListResult{
		Items:    items,
		Total:    len(matched),
		Filtered: len(matched),
	}, nil
}

// Get returns a product by id or content hash.
func (s *Store) Get(ctx context.Context, identity string) (*domain.ProductDetail, error) {
	const op = "catalog.get"

	st := s.cur.Load()
	id, ok := st.lookup(identity)
	if !ok || len(st.products[id].Variants) == 0 {
		return nil, domain.NotFound(op, "product", identity)
	}
	return Detail(st.products[id]), nil
}

// =============================================================================
// State
// =============================================================================

type state struct {
	products map[string]*domain.Product
	byName   map[string]string
	byHash   map[string]string
	variants map[string]string
	nextID   int64
	seq      int64
}

func newState() *state {
	return &state{
		products: make(map[string]*domain.Product),
		byName:   make(map[string]string),
		byHash:   make(map[string]string),
		variants: make(map[string]string),
	}
}

// lookup resolves a raw id or a content hash.
func (st *state) lookup(identity string) (string, bool) {
	identity = strings.TrimSpace(identity)
	if _, ok := st.products[identity]; ok {
		return identity, true
	}
	id, ok := st.byHash[strings.ToLower(identity)]
	return id, ok
}

// tx is a copy-on-write transaction over a state. A product is cloned the
// first time the transaction writes to it.
type tx struct {
	*state
	owned        map[string]bool
	newVariantID func() string
}

func begin(st *state, newVariantID func() string) *tx {
	return &tx{
		state: &state{
			products: maps.Clone(st.products),
			byName:   maps.Clone(st.byName),
			byHash:   maps.Clone(st.byHash),
			variants: maps.Clone(st.variants),
			nextID:   st.nextID,
			seq:      st.seq,
		},
		owned:        make(map[string]bool),
		newVariantID: newVariantID,
	}
}

// clear drops every product but keeps the id and sequence counters.
func (t *tx) clear() {
	nextID, seq := t.nextID, t.seq
	t.state = newState()
	t.nextID, t.seq = nextID, seq
	t.owned = make(map[string]bool)
}

func (t *tx) mutable(id string) *domain.Product {
	p := t.products[id]
	if p == nil || t.owned[id] {
		return p
	}
	c := clone(p)
	t.products[id] = &c
	t.owned[id] = true
	return &c
}

func (t *tx) generateID() string {
	for {
		t.nextID++
		id := strconv.FormatInt(t.nextID, 10)
		if _, taken := t.products[id]; !taken {
			return id
		}
	}
}

func (t *tx) createProduct(id, name, order string, fromCSV bool) string {
	if id == "" {
		id = t.generateID()
	}
	t.seq++
	t.products[id] = &domain.Product{
		ID:           id,
		Name:         name,
		DisplayOrder: order,
		FromCSV:      fromCSV,
		Seq:          t.seq,
		Variants:     []domain.Variant{},
	}
	t.owned[id] = true
	t.byName[name] = id
	t.byHash[ContentHash(id)] = id
	return id
}

func (t *tx) appendVariant(p *domain.Product, name string, fields domain.VariantFields) {
	v := domain.Variant{
		ID:            t.newVariantID(),
		ProductID:     p.ID,
		Name:          name,
		VariantFields: fields,
	}
	p.Variants = append(p.Variants, v)
	t.variants[v.ID] = p.ID
}

// replace swaps the whole variant list of a product for the submission.
func (t *tx) replace(id string, sub *Submission) *domain.Product {
	p := t.mutable(id)
	for _, v := range p.Variants {
		delete(t.variants, v.ID)
	}
	p.Variants = make([]domain.Variant, 0, len(sub.Records))
	for _, rec := range sub.Records {
		t.appendVariant(p, rec.Name, rec.VariantFields)
	}
	p.DisplayOrder = sub.DisplayOrder
	p.VariantFields = sub.Mirror()
	return p
}

func (t *tx) rename(id, name string) {
	p := t.mutable(id)
	if p.Name == name {
		return
	}
	if t.byName[p.Name] == id {
		delete(t.byName, p.Name)
	}
	p.Name = name
	t.byName[name] = id
}

func (t *tx) remove(id string) {
	p := t.products[id]
	if p == nil {
		return
	}
	for _, v := range p.Variants {
		delete(t.variants, v.ID)
	}
	if t.byName[p.Name] == id {
		delete(t.byName, p.Name)
	}
	delete(t.byHash, ContentHash(id))
	delete(t.products, id)
}

// Sink implementation used by ImportCSV.

func (t *tx) HasProduct(_ context.Context, id string) (bool, error) {
	_, ok := t.products[id]
	return ok, nil
}

func (t *tx) ProductByName(_ context.Context, name string) (string, bool, error) {
	id, ok := t.byName[name]
	return id, ok, nil
}

func (t *tx) CreateProduct(_ context.Context, id string, rec Record) (string, error) {
	return t.createProduct(id, rec.Name, rec.DisplayOrder, true), nil
}

func (t *tx) AppendVariant(_ context.Context, productID string, rec Record, setOrder bool) error {
	p := t.mutable(productID)
	t.appendVariant(p, rec.Name, rec.VariantFields)
	p.VariantFields = rec.VariantFields
	if setOrder {
		p.DisplayOrder = rec.DisplayOrder
	}
	return nil
}
