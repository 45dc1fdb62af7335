package admin

import (
	"net/http"
	"strings"

	"github.com/dukerupert/flipcart/internal/domain"
	"github.com/dukerupert/flipcart/internal/handler"
)

// SettingsHandler reads and writes the store settings record.
type SettingsHandler struct {
	settings domain.SettingsStore
}

func NewSettingsHandler(settings domain.SettingsStore) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get handles GET /api/settings. The mail password is never sent back.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Get(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	out := *s
	out.AdminEmailPassword = ""
	handler.WriteJSON(w, http.StatusOK, struct {
		Success bool            `json:"success"`
		Data    domain.Settings `json:"data"`
	}{true, out})
}

type settingsRequest struct {
	CompanyName        string     `json:"cmp_name" validate:"max=200"`
	CompanyEmail       string     `json:"cmp_email" validate:"omitempty,email"`
	AdminEmail         string     `json:"admin_email" validate:"omitempty,email"`
	AdminEmailPassword string     `json:"admin_email_password"`
	Contact1           string     `json:"contact1"`
	Contact2           string     `json:"contact2"`
	Address            string     `json:"address"`
	ShowGPay           flexBool   `json:"show_gpay"`
	ShowPhonePe        flexBool   `json:"show_phonepe"`
	ShowPaytm          flexBool   `json:"show_paytm"`
	PayType            flexBool   `json:"pay_type"`
	PaymentScript      string     `json:"payment_script"`
	AllowedIP          string     `json:"allowed_ip"`
	UPI                string     `json:"upi"`
	Pixel              string     `json:"pixel"`
	Maintenance        flexBool   `json:"maintenance"`
	DefaultOrder       flexString `json:"default_disp_order"`
}

func (req settingsRequest) settings() domain.Settings {
	return domain.Settings{
		CompanyName:        strings.TrimSpace(req.CompanyName),
		CompanyEmail:       strings.TrimSpace(req.CompanyEmail),
		AdminEmail:         strings.TrimSpace(req.AdminEmail),
		AdminEmailPassword: req.AdminEmailPassword,
		Contact1:           req.Contact1,
		Contact2:           req.Contact2,
		Address:            req.Address,
		ShowGPay:           bool(req.ShowGPay),
		ShowPhonePe:        bool(req.ShowPhonePe),
		ShowPaytm:          bool(req.ShowPaytm),
		PayType:            bool(req.PayType),
		PaymentScript:      req.PaymentScript,
		AllowedIP:          req.AllowedIP,
		UPI:                req.UPI,
		Pixel:              req.Pixel,
		Maintenance:        bool(req.Maintenance),
		DefaultOrder:       req.DefaultOrder.String(),
	}
}

// Update handles PUT /api/settings. A blank admin_email_password keeps the
// stored one.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "admin.update_settings"

	var req settingsRequest
	if err := handler.Bind(r, op, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if _, err := h.settings.Update(r.Context(), req.settings()); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	audit(r, "Update", "update_settings")
	handler.WriteJSON(w, http.StatusOK, struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}{true, "Settings updated successfully"})
}
