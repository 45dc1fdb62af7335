package admin

import (
	"context"
	"net/http"
	"strings"

	"github.com/dukerupert/flipcart/internal/domain"
	"github.com/dukerupert/flipcart/internal/handler"
	"github.com/dukerupert/flipcart/internal/middleware"
)

// Authenticator checks console credentials and issues a bearer token.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, *domain.Admin, error)
}

// LoginRecorder counts login attempts.
type LoginRecorder interface {
	RecordLogin(err error)
}

// AuthHandler handles console login.
type AuthHandler struct {
	auth    Authenticator
	metrics LoginRecorder
}

// NewAuthHandler creates a new auth handler. metrics may be nil.
func NewAuthHandler(auth Authenticator, metrics LoginRecorder) *AuthHandler {
	return &AuthHandler{auth: auth, metrics: metrics}
}

// loginRequest accepts "email" as an alias for username; the console form
// labels the field that way.
type loginRequest struct {
	Username string `json:"username" validate:"required_without=Email"`
	Email    string `json:"email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Success int           `json:"success"`
	Message string        `json:"message"`
	Token   string        `json:"token"`
	Data    *domain.Admin `json:"data"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	const op = "admin.login"

	var req loginRequest
	if err := handler.Bind(r, op, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = strings.TrimSpace(req.Email)
	}

	token, admin, err := h.auth.Login(r.Context(), username, req.Password)
	if h.metrics != nil {
		h.metrics.RecordLogin(err)
	}
	logger := middleware.GetLogger(r.Context())
	if err != nil {
		logger.Warn("admin login failed", "username", username, "ip", middleware.GetClientIP(r))
		handler.ErrorResponse(w, r, err)
		return
	}

	logger.Info("admin logged in", "user", admin.Username, "ip", middleware.GetClientIP(r))
	handler.WriteJSON(w, http.StatusOK, loginResponse{
		Success: 1,
		Message: "User logged in successfully.",
		Token:   token,
		Data:    admin,
	})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	admin := middleware.GetAdmin(r.Context())
	if admin == nil {
		handler.UnauthorizedResponse(w, r)
		return
	}
	handler.WriteJSON(w, http.StatusOK, struct {
		Success bool          `json:"success"`
		Data    *domain.Admin `json:"data"`
	}{true, admin})
}
