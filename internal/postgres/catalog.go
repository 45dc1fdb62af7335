package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dukerupert/flipcart/internal/catalog"
	"github.com/dukerupert/flipcart/internal/domain"
)

// CatalogStore implements domain.CatalogStore using PostgreSQL. Every write
// runs in one transaction.
type CatalogStore struct {
	pool         *pgxpool.Pool
	timeout      time.Duration
	defaultOrder catalog.DefaultOrderFunc
	newVariantID func() string
}

// Compile-time check that CatalogStore implements domain.CatalogStore.
var _ domain.CatalogStore = (*CatalogStore)(nil)

// NewCatalogStore creates a PostgreSQL-backed catalog. A zero timeout leaves
// operations bounded only by the caller's context.
func NewCatalogStore(pool *pgxpool.Pool, timeout time.Duration, defaults catalog.DefaultOrderFunc) *CatalogStore {
	return &CatalogStore{
		pool:         pool,
		timeout:      timeout,
		defaultOrder: defaults,
		newVariantID: uuid.NewString,
	}
}

const productColumns = `id, seq, name, disp_order, from_csv,
	color, size, storage, selling_price, mrp, features, img1, img2, img3, img4, img5`

const variantColumns = `id, product_id, name,
	color, size, storage, selling_price, mrp, features, img1, img2, img3, img4, img5`

// sortKey mirrors catalog.OrderKey: integers up to 18 digits, zero and
// anything else sort last.
const sortKey = `CASE WHEN btrim(disp_order) ~ '^[+-]?[0-9]{1,18}$'
	THEN NULLIF(btrim(disp_order)::bigint, 0) END`

// imageColumns maps image slots to their column; slot 1 is index 0.
var imageColumns = [domain.ImageSlots]string{"img1", "img2", "img3", "img4", "img5"}

func (s *CatalogStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// inTx runs fn in a transaction under the store timeout. fn must issue its
// statements with the context it is given. Domain errors from fn pass
// through; any other failure is reported as an internal error for op.
func (s *CatalogStore) inTx(ctx context.Context, op string, opts pgx.TxOptions, fn func(context.Context, pgx.Tx) error) (err error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.pool.BeginTx(ctx, opts)
	if err != nil {
		return domain.Internal(err, op, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}
	}()

	if err = fn(ctx, tx); err != nil {
		return storeError(err, op)
	}

	if err = tx.Commit(ctx); err != nil {
		return domain.Internal(err, op, "failed to commit transaction")
	}
	return nil
}

func storeError(err error, op string) error {
	var de *domain.Error
	var ve *domain.ValidationError
	if errors.As(err, &de) || errors.As(err, &ve) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domain.WrapError(err, domain.ECONFLICT, op, "a product with this name already exists")
	}
	return domain.Internal(err, op, "catalog storage failed")
}

var readOnly = pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}

// =============================================================================
// STOREFRONT OPERATIONS
// =============================================================================

// List returns one page of products that have variants and match the search.
func (s *CatalogStore) List(ctx context.Context, params domain.ListParams) (*domain.ListResult, error) {
	const op = "catalog.list"

	if err := catalog.ValidateListParams(op, params); err != nil {
		return nil, err
	}

	search := strings.TrimSpace(params.Search)
	pattern := "%" + escapeLike(search) + "%"
	where := `EXISTS (SELECT 1 FROM product_variants v WHERE v.product_id = p.id)
		AND ($1 = '' OR p.name ILIKE $2 OR EXISTS (
			SELECT 1 FROM product_variants v
			WHERE v.product_id = p.id
			  AND (v.name ILIKE $2 OR v.color ILIKE $2 OR v.size ILIKE $2 OR v.storage ILIKE $2)))`

	result := &domain.ListResult{Items: []domain.Product{}}
	err := s.inTx(ctx, op, readOnly, func(ctx context.Context, tx pgx.Tx) error {
		var count int
		if err := tx.QueryRow(ctx, `SELECT count(*) FROM products p WHERE `+where, search, pattern).Scan(&count); err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		result.Total = count
		result.Filtered = count

		rows, err := tx.Query(ctx, `SELECT `+productColumns+` FROM products p WHERE `+where+`
			ORDER BY `+sortKey+` ASC NULLS LAST, seq DESC
			OFFSET $3 LIMIT $4`, search, pattern, params.Offset, params.Limit)
		if err != nil {
			return fmt.Errorf("list products: %w", err)
		}
		products, err := pgx.CollectRows(rows, scanProduct)
		if err != nil {
			return fmt.Errorf("scan products: %w", err)
		}
		if err := loadVariants(ctx, tx, products); err != nil {
			return err
		}

		for i := range products {
			result.Items = append(result.Items, catalog.View(&products[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Get returns a product by id or content hash.
func (s *CatalogStore) Get(ctx context.Context, identity string) (*domain.ProductDetail, error) {
	const op = "catalog.get"

	var detail *domain.ProductDetail
	err := s.inTx(ctx, op, readOnly, func(ctx context.Context, tx pgx.Tx) error {
		id, ok, err := lookup(ctx, tx, identity, false)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFound(op, "product", identity)
		}

		rows, err := tx.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("get product: %w", err)
		}
		p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
		if err != nil {
			return fmt.Errorf("scan product: %w", err)
		}

		products := []domain.Product{p}
		if err := loadVariants(ctx, tx, products); err != nil {
			return err
		}
		if len(products[0].Variants) == 0 {
			return domain.NotFound(op, "product", identity)
		}
		detail = catalog.Detail(&products[0])
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// =============================================================================
// ADMIN OPERATIONS
// =============================================================================

// Upsert creates a product or replaces the variants of the product with the
// same name.
func (s *CatalogStore) Upsert(ctx context.Context, params domain.UpsertProductParams) (*domain.Product, error) {
	const op = "catalog.upsert"

	sub, err := catalog.PrepareSubmission(ctx, op, params, s.defaultOrder)
	if err != nil {
		return nil, err
	}

	var out *domain.Product
	err = s.inTx(ctx, op, pgx.TxOptions{}, func(ctx context.Context, tx pgx.Tx) error {
		var id string
		err := tx.QueryRow(ctx, `SELECT id FROM products WHERE name = $1 FOR UPDATE`, sub.Name).Scan(&id)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			if id, err = generateID(ctx, tx); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO products (id, name, disp_order, from_csv) VALUES ($1, $2, $3, FALSE)`,
				id, sub.Name, sub.DisplayOrder); err != nil {
				return fmt.Errorf("insert product: %w", err)
			}
		case err != nil:
			return fmt.Errorf("find product by name: %w", err)
		}

		out, err = s.replace(ctx, tx, id, sub)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces the product addressed by identity and may rename it.
func (s *CatalogStore) Update(ctx context.Context, identity string, params domain.UpsertProductParams) (*domain.Product, error) {
	const op = "catalog.update"

	sub, err := catalog.PrepareSubmission(ctx, op, params, s.defaultOrder)
	if err != nil {
		return nil, err
	}

	var out *domain.Product
	err = s.inTx(ctx, op, pgx.TxOptions{}, func(ctx context.Context, tx pgx.Tx) error {
		id, ok, err := lookup(ctx, tx, identity, true)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFound(op, "product", identity)
		}

		var taken bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM products WHERE name = $1 AND id <> $2)`,
			sub.Name, id).Scan(&taken); err != nil {
			return fmt.Errorf("check product name: %w", err)
		}
		if taken {
			return domain.Conflict(op, "a product with this name already exists")
		}

		if _, err := tx.Exec(ctx, `UPDATE products SET name = $2 WHERE id = $1`, id, sub.Name); err != nil {
			return fmt.Errorf("rename product: %w", err)
		}

		out, err = s.replace(ctx, tx, id, sub)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// replace swaps the variant list of a product for the submission and
// returns the stored product.
func (s *CatalogStore) replace(ctx context.Context, tx pgx.Tx, id string, sub *catalog.Submission) (*domain.Product, error) {
	if _, err := tx.Exec(ctx, `DELETE FROM product_variants WHERE product_id = $1`, id); err != nil {
		return nil, fmt.Errorf("delete variants: %w", err)
	}

	rows := make([][]any, 0, len(sub.Records))
	for i, rec := range sub.Records {
		rows = append(rows, variantRow(s.newVariantID(), id, i, rec))
	}
	if err := copyVariants(ctx, tx, rows); err != nil {
		return nil, err
	}

	m := sub.Mirror()
	if _, err := tx.Exec(ctx, `UPDATE products SET
			disp_order = $2, color = $3, size = $4, storage = $5, selling_price = $6, mrp = $7,
			features = $8, img1 = $9, img2 = $10, img3 = $11, img4 = $12, img5 = $13, updated_at = NOW()
		WHERE id = $1`,
		id, sub.DisplayOrder, m.Color, m.Size, m.Storage, m.SellingPrice, m.MRP,
		m.Features, m.Image1, m.Image2, m.Image3, m.Image4, m.Image5); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	pgRows, err := tx.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("reload product: %w", err)
	}
	p, err := pgx.CollectExactlyOneRow(pgRows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("scan product: %w", err)
	}
	products := []domain.Product{p}
	if err := loadVariants(ctx, tx, products); err != nil {
		return nil, err
	}
	out := catalog.View(&products[0])
	return &out, nil
}

// ImportCSV appends every data row of a CSV document in one transaction.
func (s *CatalogStore) ImportCSV(ctx context.Context, data []byte) (*domain.ImportResult, error) {
	return s.importCSV(ctx, "catalog.import", data, false)
}

// ReplaceCSV empties the catalog and imports a CSV document in the same
// transaction.
func (s *CatalogStore) ReplaceCSV(ctx context.Context, data []byte) (*domain.ImportResult, error) {
	return s.importCSV(ctx, "catalog.replace", data, true)
}

func (s *CatalogStore) importCSV(ctx context.Context, op string, data []byte, replace bool) (*domain.ImportResult, error) {
	records, err := catalog.ParseCSV(op, data)
	if err != nil {
		return nil, err
	}

	var result *domain.ImportResult
	err = s.inTx(ctx, op, pgx.TxOptions{}, func(ctx context.Context, tx pgx.Tx) error {
		if replace {
			if _, err := tx.Exec(ctx, `TRUNCATE product_variants, products`); err != nil {
				return fmt.Errorf("clear catalog: %w", err)
			}
		}
		sink := newImportSink(tx, s.newVariantID)
		res, err := catalog.Group(ctx, sink, records)
		if err != nil {
			return err
		}
		if err := sink.flush(ctx); err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateOrder sets the display order of a product.
func (s *CatalogStore) UpdateOrder(ctx context.Context, identity, order string) error {
	const op = "catalog.update_order"

	return s.inTx(ctx, op, pgx.TxOptions{}, func(ctx context.Context, tx pgx.Tx) error {
		id, ok, err := lookup(ctx, tx, identity, true)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFound(op, "product", identity)
		}
		_, err = tx.Exec(ctx, `UPDATE products SET disp_order = $2, updated_at = NOW() WHERE id = $1`,
			id, strings.TrimSpace(order))
		return err
	})
}

// Delete removes a product; its variants go with it through the foreign key.
func (s *CatalogStore) Delete(ctx context.Context, identity string) error {
	const op = "catalog.delete"

	return s.inTx(ctx, op, pgx.TxOptions{}, func(ctx context.Context, tx pgx.Tx) error {
		id, ok, err := lookup(ctx, tx, identity, true)
		if err != nil || !ok {
			return err
		}
		_, err = tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
		return err
	})
}

// DeleteVariant removes a single variant.
func (s *CatalogStore) DeleteVariant(ctx context.Context, variantID string) error {
	return s.inTx(ctx, "catalog.delete_variant", pgx.TxOptions{}, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM product_variants WHERE id = $1`, variantID)
		return err
	})
}

// DeleteAll empties the catalog. Sequences keep counting.
func (s *CatalogStore) DeleteAll(ctx context.Context) error {
	return s.inTx(ctx, "catalog.delete_all", pgx.TxOptions{}, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `TRUNCATE product_variants, products`)
		return err
	})
}

// SetVariantImage records url in the 1-based image slot of a variant.
func (s *CatalogStore) SetVariantImage(ctx context.Context, variantID string, slot int, url string) error {
	const op = "catalog.set_image"

	if slot < 1 || slot > domain.ImageSlots {
		return domain.Errorf(domain.EINVALID, op, "image slot must be between 1 and %d", domain.ImageSlots)
	}

	return s.inTx(ctx, op, pgx.TxOptions{}, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			fmt.Sprintf(`UPDATE product_variants SET %s = $2 WHERE id = $1`, imageColumns[slot-1]),
			variantID, url)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.NotFound(op, "variant", variantID)
		}
		return nil
	})
}

// =============================================================================
// HELPERS
// =============================================================================

// lookup resolves a raw id or a content hash; a raw id match wins.
func lookup(ctx context.Context, tx pgx.Tx, identity string, forUpdate bool) (string, bool, error) {
	identity = strings.TrimSpace(identity)
	query := `SELECT id FROM products WHERE id = $1 OR md5(id) = lower($1)
		ORDER BY (id = $1) DESC LIMIT 1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var id string
	err := tx.QueryRow(ctx, query, identity).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup product: %w", err)
	}
	return id, true, nil
}

// generateID draws numeric ids from product_id_seq, skipping ids that were
// supplied explicitly by an import.
func generateID(ctx context.Context, tx pgx.Tx) (string, error) {
	for {
		var n int64
		if err := tx.QueryRow(ctx, `SELECT nextval('product_id_seq')`).Scan(&n); err != nil {
			return "", fmt.Errorf("next product id: %w", err)
		}
		id := strconv.FormatInt(n, 10)

		var taken bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&taken); err != nil {
			return "", fmt.Errorf("check product id: %w", err)
		}
		if !taken {
			return id, nil
		}
	}
}

func scanProduct(row pgx.CollectableRow) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Seq, &p.Name, &p.DisplayOrder, &p.FromCSV,
		&p.Color, &p.Size, &p.Storage, &p.SellingPrice, &p.MRP, &p.Features,
		&p.Image1, &p.Image2, &p.Image3, &p.Image4, &p.Image5)
	p.Variants = []domain.Variant{}
	return p, err
}

func scanVariant(row pgx.CollectableRow) (domain.Variant, error) {
	var v domain.Variant
	err := row.Scan(&v.ID, &v.ProductID, &v.Name,
		&v.Color, &v.Size, &v.Storage, &v.SellingPrice, &v.MRP, &v.Features,
		&v.Image1, &v.Image2, &v.Image3, &v.Image4, &v.Image5)
	return v, err
}

// loadVariants fills in the variants of products, in position order.
func loadVariants(ctx context.Context, tx pgx.Tx, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, len(products))
	index := make(map[string]int, len(products))
	for i, p := range products {
		ids[i] = p.ID
		index[p.ID] = i
	}

	rows, err := tx.Query(ctx, `SELECT `+variantColumns+` FROM product_variants
		WHERE product_id = ANY($1) ORDER BY product_id, position`, ids)
	if err != nil {
		return fmt.Errorf("list variants: %w", err)
	}
	variants, err := pgx.CollectRows(rows, scanVariant)
	if err != nil {
		return fmt.Errorf("scan variants: %w", err)
	}

	for _, v := range variants {
		i := index[v.ProductID]
		products[i].Variants = append(products[i].Variants, v)
	}
	return nil
}

var variantCopyColumns = []string{
	"id", "product_id", "position", "name",
	"color", "size", "storage", "selling_price", "mrp", "features",
	"img1", "img2", "img3", "img4", "img5",
}

func variantRow(id, productID string, position int, rec catalog.Record) []any {
	return []any{
		id, productID, int32(position), rec.Name,
		rec.Color, rec.Size, rec.Storage, rec.SellingPrice, rec.MRP, rec.Features,
		rec.Image1, rec.Image2, rec.Image3, rec.Image4, rec.Image5,
	}
}

func copyVariants(ctx context.Context, tx pgx.Tx, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"product_variants"}, variantCopyColumns, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("copy variants: %w", err)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
