package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dukerupert/flipcart/internal/catalog"
	"github.com/dukerupert/flipcart/internal/domain"
)

// importSink folds CSV records into the catalog inside one transaction.
// Variants are buffered and written with COPY on flush.
type importSink struct {
	tx           pgx.Tx
	newVariantID func() string

	names     map[string]string
	known     map[string]bool
	positions map[string]int
	mirrors   map[string]domain.VariantFields
	orders    map[string]string
	touched   []string
	pending   [][]any
}

var _ catalog.Sink = (*importSink)(nil)

func newImportSink(tx pgx.Tx, newVariantID func() string) *importSink {
	return &importSink{
		tx:           tx,
		newVariantID: newVariantID,
		names:        make(map[string]string),
		known:        make(map[string]bool),
		positions:    make(map[string]int),
		mirrors:      make(map[string]domain.VariantFields),
		orders:       make(map[string]string),
	}
}

func (s *importSink) HasProduct(ctx context.Context, id string) (bool, error) {
	if ok, cached := s.known[id]; cached {
		return ok, nil
	}
	var ok bool
	if err := s.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("check product id: %w", err)
	}
	s.known[id] = ok
	return ok, nil
}

func (s *importSink) ProductByName(ctx context.Context, name string) (string, bool, error) {
	if id, ok := s.names[name]; ok {
		return id, true, nil
	}
	var id string
	err := s.tx.QueryRow(ctx, `SELECT id FROM products WHERE name = $1 FOR UPDATE`, name).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("find product by name: %w", err)
	}
	s.names[name] = id
	s.known[id] = true
	return id, true, nil
}

func (s *importSink) CreateProduct(ctx context.Context, id string, rec catalog.Record) (string, error) {
	if id == "" {
		var err error
		if id, err = generateID(ctx, s.tx); err != nil {
			return "", err
		}
	}
	if _, err := s.tx.Exec(ctx,
		`INSERT INTO products (id, name, disp_order, from_csv) VALUES ($1, $2, $3, TRUE)`,
		id, rec.Name, rec.DisplayOrder); err != nil {
		return "", fmt.Errorf("insert product: %w", err)
	}
	s.names[rec.Name] = id
	s.known[id] = true
	s.positions[id] = 0
	return id, nil
}

func (s *importSink) AppendVariant(ctx context.Context, productID string, rec catalog.Record, setOrder bool) error {
	pos, ok := s.positions[productID]
	if !ok {
		if err := s.tx.QueryRow(ctx,
			`SELECT COALESCE(MAX(position) + 1, 0) FROM product_variants WHERE product_id = $1`,
			productID).Scan(&pos); err != nil {
			return fmt.Errorf("next variant position: %w", err)
		}
	}
	s.pending = append(s.pending, variantRow(s.newVariantID(), productID, pos, rec))
	s.positions[productID] = pos + 1

	if _, seen := s.mirrors[productID]; !seen {
		s.touched = append(s.touched, productID)
	}
	s.mirrors[productID] = rec.VariantFields
	if setOrder {
		s.orders[productID] = rec.DisplayOrder
	}
	return nil
}

// flush writes buffered variants and the last mirror of every touched
// product.
func (s *importSink) flush(ctx context.Context) error {
	if err := copyVariants(ctx, s.tx, s.pending); err != nil {
		return err
	}

	for _, id := range s.touched {
		m := s.mirrors[id]
		order, setOrder := s.orders[id]
		if _, err := s.tx.Exec(ctx, `UPDATE products SET
				color = $2, size = $3, storage = $4, selling_price = $5, mrp = $6, features = $7,
				img1 = $8, img2 = $9, img3 = $10, img4 = $11, img5 = $12,
				disp_order = CASE WHEN $13 THEN $14 ELSE disp_order END,
				updated_at = NOW()
			WHERE id = $1`,
			id, m.Color, m.Size, m.Storage, m.SellingPrice, m.MRP, m.Features,
			m.Image1, m.Image2, m.Image3, m.Image4, m.Image5,
			setOrder, order); err != nil {
			return fmt.Errorf("update product mirror: %w", err)
		}
	}
	return nil
}
