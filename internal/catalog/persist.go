package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"

	"github.com/dukerupert/flipcart/internal/domain"
)

// Snapshot is the serialized form of a catalog.
type Snapshot struct {
	NextID   int64           `json:"next_id"`
	Seq      int64           `json:"seq"`
	Products []StoredProduct `json:"products"`
}

// StoredProduct carries the creation sequence that the public JSON form of a
// product leaves out.
type StoredProduct struct {
	domain.Product
	Seq int64 `json:"seq"`
}

// Source provides the catalog a Store starts from.
type Source interface {
	Name() string
	Load(ctx context.Context) (*Snapshot, error)
}

// Persister durably records a catalog.
type Persister interface {
	Save(ctx context.Context, snap *Snapshot) error
}

func (st *state) snapshot() *Snapshot {
	snap := &Snapshot{
		NextID:   st.nextID,
		Seq:      st.seq,
		Products: make([]StoredProduct, 0, len(st.products)),
	}
	for _, p := range st.products {
		sp := StoredProduct{Product: *p, Seq: p.Seq}
		sp.Hash = ""
		snap.Products = append(snap.Products, sp)
	}
	sort.Slice(snap.Products, func(i, j int) bool {
		return snap.Products[i].Seq < snap.Products[j].Seq
	})
	return snap
}

func fromSnapshot(snap *Snapshot) *state {
	st := newState()
	if snap == nil {
		return st
	}
	st.nextID = snap.NextID
	st.seq = snap.Seq

	for _, sp := range snap.Products {
		p := clone(&sp.Product)
		p.Seq = sp.Seq
		p.Hash = ""
		if p.Seq > st.seq {
			st.seq = p.Seq
		}
		st.products[p.ID] = &p
		st.byName[p.Name] = p.ID
		st.byHash[ContentHash(p.ID)] = p.ID
		for _, v := range p.Variants {
			st.variants[v.ID] = p.ID
		}
	}
	return st
}

// FileStore keeps the catalog as a JSON document on disk. It is both the
// Source and the Persister of a file-backed Store.
type FileStore struct {
	path string
}

// NewFileStore returns a FileStore for path. The file need not exist yet.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Name() string {
	return "file:" + f.path
}

// Load reads the snapshot. A missing file is an empty catalog.
func (f *FileStore) Load(ctx context.Context) (*Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode catalog file %s: %w", f.path, err)
	}
	return &snap, nil
}

// Save replaces the file atomically so a crash never leaves half a catalog.
func (f *FileStore) Save(ctx context.Context, snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create catalog dir: %w", err)
	}
	if err := atomic.WriteFile(f.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write catalog file: %w", err)
	}
	return nil
}

// CSVSource builds the catalog by importing a CSV file into an empty catalog.
type CSVSource struct {
	path string
}

// NewCSVSource returns a source reading the CSV file at path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

func (c *CSVSource) Name() string {
	return "csv:" + c.path
}

func (c *CSVSource) Load(ctx context.Context) (*Snapshot, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("read seed csv: %w", err)
	}
	records, err := ParseCSV("catalog.seed", data)
	if err != nil {
		return nil, err
	}

	t := begin(newState(), uuid.NewString)
	if _, err := Group(ctx, t, records); err != nil {
		return nil, err
	}
	return t.state.snapshot(), nil
}

// seeded falls back to a seed source while the primary source is empty.
type seeded struct {
	primary Source
	seed    Source
}

// WithSeedFallback returns a source that reads primary, and seed when
// primary holds no products.
func WithSeedFallback(primary, seed Source) Source {
	if seed == nil {
		return primary
	}
	return &seeded{primary: primary, seed: seed}
}

func (s *seeded) Name() string {
	return s.primary.Name()
}

func (s *seeded) Load(ctx context.Context) (*Snapshot, error) {
	snap, err := s.primary.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(snap.Products) > 0 {
		return snap, nil
	}
	return s.seed.Load(ctx)
}
