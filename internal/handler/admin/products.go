package admin

import (
	"net/http"
	"strings"

	"github.com/dukerupert/flipcart/internal/domain"
	"github.com/dukerupert/flipcart/internal/handler"
	"github.com/dukerupert/flipcart/internal/telemetry"
)

// Delete targets accepted by POST /api/products/delete. VERIENT is the
// spelling the console sends.
const (
	deleteProduct = "PRODUCT"
	deleteVariant = "VERIENT"
)

// ProductHandler handles catalog writes from the console.
type ProductHandler struct {
	catalog domain.CatalogStore
}

// NewProductHandler creates a new product handler
func NewProductHandler(catalog domain.CatalogStore) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

func (h *ProductHandler) decodeProduct(r *http.Request, op string) (domain.UpsertProductParams, error) {
	var payload productPayload
	if err := handler.DecodeJSON(r, op, &payload); err != nil {
		return domain.UpsertProductParams{}, err
	}
	return payload.params(op)
}

// Upsert handles POST /api/products and POST /api/products/add
func (h *ProductHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	const op = "admin.upsert"

	params, err := h.decodeProduct(r, op)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	product, err := h.catalog.Upsert(r.Context(), params)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	audit(r, "Add", "add_product", "product_id", product.ID, "variants", len(product.Variants))
	telemetry.AddBreadcrumb(r.Context(), "catalog", "product upserted", map[string]interface{}{"product_id": product.ID})
	handler.WriteJSON(w, http.StatusOK, handler.Message{Success: 1, Message: "Data added successfully", Data: product})
}

// Update handles PUT /api/products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "admin.update"

	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		handler.ErrorResponse(w, r, domain.Invalid(op, "ID is required"))
		return
	}

	params, err := h.decodeProduct(r, op)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	product, err := h.catalog.Update(r.Context(), id, params)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	audit(r, "Update", "update_product", "product_id", product.ID)
	handler.WriteJSON(w, http.StatusOK, handler.Message{Success: 1, Message: "Product updated", Data: product})
}

// Delete handles DELETE /api/products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		handler.ErrorResponse(w, r, domain.Invalid("admin.delete", "ID is required"))
		return
	}
	h.delete(w, r, deleteProduct, id)
}

type deleteRequest struct {
	ID   flexString `json:"id" validate:"required"`
	Type string     `json:"type" validate:"required,oneof=PRODUCT VERIENT VARIANT"`
}

// DeleteRecord handles POST /api/products/delete {id, type}
func (h *ProductHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	const op = "admin.delete"

	var req deleteRequest
	if err := handler.DecodeJSON(r, op, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	req.ID = flexString(strings.TrimSpace(req.ID.String()))
	req.Type = strings.ToUpper(strings.TrimSpace(req.Type))
	if err := handler.Validate(op, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	kind := req.Type
	if kind == "VARIANT" {
		kind = deleteVariant
	}
	h.delete(w, r, kind, req.ID.String())
}

func (h *ProductHandler) delete(w http.ResponseWriter, r *http.Request, kind, id string) {
	var err error
	if kind == deleteVariant {
		err = h.catalog.DeleteVariant(r.Context(), id)
	} else {
		err = h.catalog.Delete(r.Context(), id)
	}
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	audit(r, "Delete", "delete_record", "type", kind, "id", id)
	handler.WriteJSON(w, http.StatusOK, handler.Message{Success: 1, Message: "Data deleted successfully."})
}

// DeleteAll handles POST /api/products/delete-all
func (h *ProductHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteAll(r.Context()); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	audit(r, "Delete", "delete_all_record")
	handler.WriteJSON(w, http.StatusOK, handler.Message{Success: 1, Message: "All data deleted successfully."})
}

type orderRequest struct {
	ID           flexString `json:"id" validate:"required"`
	DisplayOrder flexString `json:"disp_order"`
}

// UpdateOrder handles POST /api/products/update-order {id, disp_order}
func (h *ProductHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	const op = "admin.update_order"

	var req orderRequest
	if err := handler.DecodeJSON(r, op, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	req.ID = flexString(strings.TrimSpace(req.ID.String()))
	if err := handler.Validate(op, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if err := h.catalog.UpdateOrder(r.Context(), req.ID.String(), req.DisplayOrder.String()); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	audit(r, "Update", "update_product_order", "id", req.ID.String(), "disp_order", req.DisplayOrder.String())
	handler.WriteJSON(w, http.StatusOK, handler.Message{Success: 1, Message: "Order updated successfully."})
}
