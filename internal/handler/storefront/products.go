// Package storefront serves the public catalog endpoints.
package storefront

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/dukerupert/flipcart/internal/domain"
	"github.com/dukerupert/flipcart/internal/handler"
)

// Default page window when the client sends no start/length.
const (
	defaultStart  = 0
	defaultLength = 10
)

// Catalog is the read side of the catalog store.
type Catalog interface {
	List(ctx context.Context, params domain.ListParams) (*domain.ListResult, error)
	Get(ctx context.Context, identity string) (*domain.ProductDetail, error)
}

// ProductHandler serves product listings and product detail.
type ProductHandler struct {
	catalog Catalog
}

// NewProductHandler creates a new product handler
func NewProductHandler(catalog Catalog) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// listResponse keeps the DataTables field names the storefront grid reads.
type listResponse struct {
	Success         int              `json:"success"`
	Status          int              `json:"status"`
	Message         string           `json:"message"`
	RecordsTotal    int              `json:"recordsTotal"`
	RecordsFiltered int              `json:"recordsFiltered"`
	Data            []domain.Product `json:"data"`
}

type detailResponse struct {
	Success int                   `json:"success"`
	Status  int                   `json:"status"`
	Message string                `json:"message"`
	Data    *domain.ProductDetail `json:"data"`
}

// List handles GET /api/products?start=&length=&search=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	const op = "storefront.list"
	q := r.URL.Query()

	start, err := intParam(q.Get("start"), defaultStart)
	if err != nil {
		handler.ErrorResponse(w, r, domain.Invalid(op, "start must be an integer"))
		return
	}
	length, err := intParam(q.Get("length"), defaultLength)
	if err != nil {
		handler.ErrorResponse(w, r, domain.Invalid(op, "length must be an integer"))
		return
	}

	res, err := h.catalog.List(r.Context(), domain.ListParams{
		Offset: start,
		Limit:  length,
		Search: q.Get("search"),
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	items := res.Items
	if items == nil {
		items = []domain.Product{}
	}
	handler.WriteJSON(w, http.StatusOK, listResponse{
		Success:         1,
		Status:          1,
		Message:         "success.",
		RecordsTotal:    res.Total,
		RecordsFiltered: res.Filtered,
		Data:            items,
	})
}

// Detail handles GET /api/products/{id}. The id may be the raw product id or
// its md5 hash.
func (h *ProductHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		handler.ErrorResponse(w, r, domain.Invalid("storefront.detail", "ID is required"))
		return
	}

	detail, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.WriteJSON(w, http.StatusOK, detailResponse{
		Success: 1,
		Status:  1,
		Message: "success.",
		Data:    detail,
	})
}

func intParam(raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
