package catalog

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/dukerupert/flipcart/internal/domain"
)

// ContentHash is the public identifier of a product: the lowercase hex md5
// of its id.
func ContentHash(id string) string {
	sum := md5.Sum([]byte(id))
	return hex.EncodeToString(sum[:])
}

// maxOrderDigits keeps every ordered value inside int64.
const maxOrderDigits = 18

// OrderKey parses a display order. ok is false for values that sort last:
// empty, zero, non-integer or too long.
func OrderKey(order string) (key int64, ok bool) {
	order = strings.TrimSpace(order)
	digits := strings.TrimLeft(order, "+-")
	if len(digits) == 0 || len(digits) > maxOrderDigits || len(order)-len(digits) > 1 {
		return 0, false
	}
	n, err := strconv.ParseInt(order, 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

// Less orders products by ascending display order with unordered products
// last, newest first among equals.
func Less(a, b *domain.Product) bool {
	ak, aok := OrderKey(a.DisplayOrder)
	bk, bok := OrderKey(b.DisplayOrder)
	if aok != bok {
		return aok
	}
	if aok && ak != bk {
		return ak < bk
	}
	return a.Seq > b.Seq
}

// Matches reports whether the product name or any variant's name, color,
// size or storage contains search, ignoring case.
func Matches(p *domain.Product, search string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	contains := func(s string) bool {
		return strings.Contains(strings.ToLower(s), search)
	}
	if contains(p.Name) {
		return true
	}
	for _, v := range p.Variants {
		if contains(v.Name) || contains(v.Color) || contains(v.Size) || contains(v.Storage) {
			return true
		}
	}
	return false
}

// ValidateListParams rejects negative offsets and non-positive limits.
func ValidateListParams(op string, params domain.ListParams) error {
	if params.Offset < 0 {
		return domain.Invalid(op, "start must not be negative")
	}
	if params.Limit <= 0 {
		return domain.Invalid(op, "length must be positive")
	}
	return nil
}

// Page returns the [offset, offset+limit) window of n items.
func Page(n int, params domain.ListParams) (start, end int) {
	start = min(params.Offset, n)
	end = n
	if params.Limit < n-start {
		end = start + params.Limit
	}
	return start, end
}

// Detail builds the storefront view of a product with its variant
// aggregates. The product is copied.
func Detail(p *domain.Product) *domain.ProductDetail {
	d := &domain.ProductDetail{
		Product:         clone(p),
		Sizes:           []string{},
		Storages:        []string{},
		Colors:          []domain.ColorOption{},
		DiscountPercent: DiscountPercent(p.MRP, p.SellingPrice),
	}
	d.Hash = ContentHash(p.ID)

	seenSize := make(map[string]bool)
	seenStorage := make(map[string]bool)
	seenColor := make(map[string]bool)
	for _, v := range p.Variants {
		if v.Size != "" && !seenSize[v.Size] {
			seenSize[v.Size] = true
			d.Sizes = append(d.Sizes, v.Size)
		}
		if v.Storage != "" && !seenStorage[v.Storage] {
			seenStorage[v.Storage] = true
			d.Storages = append(d.Storages, v.Storage)
		}
		if !seenColor[v.Color] {
			seenColor[v.Color] = true
			d.Colors = append(d.Colors, domain.ColorOption{Color: v.Color, Image: v.Image1})
		}
	}
	return d
}

// View returns a copy of p ready to be served, with its hash filled in.
func View(p *domain.Product) domain.Product {
	out := clone(p)
	out.Hash = ContentHash(p.ID)
	return out
}

func clone(p *domain.Product) domain.Product {
	out := *p
	out.Variants = make([]domain.Variant, len(p.Variants))
	copy(out.Variants, p.Variants)
	return out
}
