package storefront

import (
	"net/http"

	"github.com/dukerupert/flipcart/internal/domain"
	"github.com/dukerupert/flipcart/internal/handler"
)

// SettingsHandler exposes the storefront-safe subset of the settings record.
type SettingsHandler struct {
	settings domain.SettingsStore
}

func NewSettingsHandler(settings domain.SettingsStore) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

type publicSettingsResponse struct {
	Success bool                  `json:"success"`
	Data    domain.PublicSettings `json:"data"`
}

// Public handles GET /api/products/settings
func (h *SettingsHandler) Public(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Get(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, publicSettingsResponse{Success: true, Data: s.Public()})
}
