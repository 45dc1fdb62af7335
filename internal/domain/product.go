package domain

import (
	"context"
)

// =============================================================================
// CATALOG DOMAIN TYPES
// =============================================================================

// DefaultDisplayOrder is stored for CSV rows that carry no explicit display
// order. Manual submissions without one are left unordered.
const DefaultDisplayOrder = "99999"

// ImageSlots is the number of image URLs a variant can hold.
const ImageSlots = 5

// VariantFields holds the inheritable per-row attributes of a catalog row.
// Prices are kept as the text that was submitted; the query layer parses them
// when it needs a number.
type VariantFields struct {
	Color        string `json:"color"`
	Size         string `json:"size"`
	Storage      string `json:"storage"`
	SellingPrice string `json:"selling_price"`
	MRP          string `json:"mrp"`
	Features     string `json:"features"`
	Image1       string `json:"img1"`
	Image2       string `json:"img2"`
	Image3       string `json:"img3"`
	Image4       string `json:"img4"`
	Image5       string `json:"img5"`
}

// Image returns the URL stored in the 1-based image slot.
func (f VariantFields) Image(slot int) string {
	switch slot {
	case 1:
		return f.Image1
	case 2:
		return f.Image2
	case 3:
		return f.Image3
	case 4:
		return f.Image4
	case 5:
		return f.Image5
	}
	return ""
}

// SetImage stores url in the 1-based image slot. It reports false when the
// slot is out of range.
func (f *VariantFields) SetImage(slot int, url string) bool {
	switch slot {
	case 1:
		f.Image1 = url
	case 2:
		f.Image2 = url
	case 3:
		f.Image3 = url
	case 4:
		f.Image4 = url
	case 5:
		f.Image5 = url
	default:
		return false
	}
	return true
}

// Variant is one purchasable configuration of a product.
type Variant struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	VariantFields
}

// Product groups variants sharing a name. The embedded VariantFields mirror
// one of the product's variants and are what list views render.
type Product struct {
	ID           string    `json:"id"`
	Hash         string    `json:"md5_id"`
	Name         string    `json:"name"`
	DisplayOrder string    `json:"disp_order"`
	FromCSV      bool      `json:"from_csv"`
	Seq          int64     `json:"-"`
	Variants     []Variant `json:"variants"`
	VariantFields
}

// ColorOption pairs a distinct variant color with the first image seen for it.
type ColorOption struct {
	Color string `json:"color_name"`
	Image string `json:"color_img"`
}

// ProductDetail is the storefront view of a single product.
type ProductDetail struct {
	Product
	Sizes           []string      `json:"sizes"`
	Storages        []string      `json:"storages"`
	Colors          []ColorOption `json:"colors"`
	DiscountPercent int64         `json:"discount_percent"`
}

// ListParams selects a page of the catalog.
type ListParams struct {
	Offset int
	Limit  int
	Search string
}

// ListResult is one page of products. Total and Filtered both report the
// number of products that matched the search before paging.
type ListResult struct {
	Items    []Product
	Total    int
	Filtered int
}

// VariantInput is one row of a manual variant submission. Empty fields and
// "-" inherit from the previous row.
type VariantInput struct {
	Name string `json:"name"`
	VariantFields
}

// UpsertProductParams describes a manual product submission.
type UpsertProductParams struct {
	Name         string
	DisplayOrder string
	Variants     []VariantInput
}

// SkippedRow reports a CSV data row that was not imported.
type SkippedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportResult summarizes a CSV import.
type ImportResult struct {
	Imported int          `json:"imported"`
	Created  int          `json:"created"`
	Skipped  []SkippedRow `json:"skipped,omitempty"`
}

// =============================================================================
// CATALOG STORE INTERFACE
// =============================================================================

// CatalogStore is implemented by every catalog backend. Every write is atomic:
// concurrent readers observe either the state before or after it.
type CatalogStore interface {
	// -------------------------------------------------------------------------
	// Storefront Operations (read-only)
	// -------------------------------------------------------------------------

	// List returns a filtered, sorted page of products that have variants.
	List(ctx context.Context, params ListParams) (*ListResult, error)

	// Get returns a product by id or by the md5 hex of its id.
	Get(ctx context.Context, identity string) (*ProductDetail, error)

	// -------------------------------------------------------------------------
	// Admin Operations
	// -------------------------------------------------------------------------

	// Upsert creates a product or replaces the variants of the product with
	// the same name.
	Upsert(ctx context.Context, params UpsertProductParams) (*Product, error)

	// Update replaces the product addressed by identity, possibly renaming it.
	Update(ctx context.Context, identity string, params UpsertProductParams) (*Product, error)

	// ImportCSV appends every data row of a CSV document to the catalog.
	ImportCSV(ctx context.Context, data []byte) (*ImportResult, error)

	// ReplaceCSV empties the catalog and imports a CSV document as one
	// change. On error the catalog is left as it was.
	ReplaceCSV(ctx context.Context, data []byte) (*ImportResult, error)

	// UpdateOrder changes only the display order of a product.
	UpdateOrder(ctx context.Context, identity, order string) error

	// Delete removes a product and its variants. Missing products are ignored.
	Delete(ctx context.Context, identity string) error

	// DeleteVariant removes a single variant. Missing variants are ignored.
	DeleteVariant(ctx context.Context, variantID string) error

	// DeleteAll empties the catalog.
	DeleteAll(ctx context.Context) error

	// SetVariantImage records url in the 1-based image slot of a variant.
	SetVariantImage(ctx context.Context, variantID string, slot int, url string) error
}
