package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/flipcart/internal/domain"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := map[string]int{
		domain.EINVALID:      http.StatusBadRequest,
		domain.EUNAUTHORIZED: http.StatusUnauthorized,
		domain.EFORBIDDEN:    http.StatusForbidden,
		domain.ENOTFOUND:     http.StatusNotFound,
		domain.ECONFLICT:     http.StatusConflict,
		domain.ETOOLARGE:     http.StatusRequestEntityTooLarge,
		domain.ERATELIMIT:    http.StatusTooManyRequests,
		domain.EUNAVAILABLE:  http.StatusServiceUnavailable,
		domain.EINTERNAL:     http.StatusInternalServerError,
		"something_else":     http.StatusInternalServerError,
	}
	for code, want := range tests {
		assert.Equal(t, want, ErrorCodeToHTTPStatus(code), code)
	}
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "missing product",
			err:         domain.NotFound("catalog.get", "product", "42"),
			wantStatus:  http.StatusNotFound,
			wantCode:    domain.ENOTFOUND,
			wantMessage: "product not found: 42",
		},
		{
			name:        "bad paging",
			err:         domain.Invalid("catalog.list", "length must be positive"),
			wantStatus:  http.StatusBadRequest,
			wantCode:    domain.EINVALID,
			wantMessage: "length must be positive",
		},
		{
			name:        "name taken on rename",
			err:         domain.Conflict("catalog.update", "a product with this name already exists"),
			wantStatus:  http.StatusConflict,
			wantCode:    domain.ECONFLICT,
			wantMessage: "a product with this name already exists",
		},
		{
			name:        "ip gate",
			err:         domain.ErrIPNotAllowed,
			wantStatus:  http.StatusForbidden,
			wantCode:    domain.EFORBIDDEN,
			wantMessage: "Access denied from this IP address",
		},
		{
			name:        "store failure hides the cause",
			err:         domain.Internal(errors.New("disk full: /var/lib/catalog.json"), "catalog.save", "failed to save catalog"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    domain.EINTERNAL,
			wantMessage: "An internal error occurred. Please try again later.",
		},
		{
			name:        "foreign error is internal",
			err:         errors.New("boom"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    domain.EINTERNAL,
			wantMessage: "An internal error occurred. Please try again later.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ErrorResponse(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil), tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			body := decodeError(t, rec)
			assert.Equal(t, 0, body.Success)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Equal(t, tt.wantMessage, body.Error.Message)
			assert.NotContains(t, rec.Body.String(), "disk full")
		})
	}
}

func TestErrorResponse_PlainTextOutsideAPI(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrorResponse(rec, httptest.NewRequest(http.MethodGet, "/uploads/missing.png", nil),
		domain.NotFound("static", "file", "missing.png"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rec.Body.String(), "file not found")
}

func TestErrorResponse_ValidationFields(t *testing.T) {
	err := domain.NewValidationError("admin.upsert", "variants", "at least one variant is required")
	err = domain.AddFieldError(err, "name", "is required")

	rec := httptest.NewRecorder()
	ErrorResponse(rec, httptest.NewRequest(http.MethodPost, "/api/products", nil), err)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, domain.EINVALID, body.Error.Code)
	assert.Equal(t, "Validation failed", body.Error.Message)
	assert.Equal(t, map[string]string{
		"variants": "at least one variant is required",
		"name":     "is required",
	}, body.Error.Fields)
}

func TestValidationErrorResponse_FallsBack(t *testing.T) {
	rec := httptest.NewRecorder()
	ValidationErrorResponse(rec, httptest.NewRequest(http.MethodGet, "/api/products/9", nil),
		domain.NotFound("catalog.get", "product", "9"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Nil(t, decodeError(t, rec).Error.Fields)
}

func TestUnauthorizedResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	UnauthorizedResponse(rec, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authorized, token missing or invalid", decodeError(t, rec).Error.Message)
}

func TestAcceptsJSON(t *testing.T) {
	tests := []struct {
		path   string
		header map[string]string
		want   bool
	}{
		{"/api/products", nil, true},
		{"/uploads/a.png", nil, false},
		{"/health", map[string]string{"Accept": "application/json"}, true},
		{"/health", map[string]string{"Content-Type": "application/json"}, true},
		{"/health", map[string]string{"Accept": "text/html"}, false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, tt.path, nil)
		for k, v := range tt.header {
			r.Header.Set(k, v)
		}
		assert.Equal(t, tt.want, acceptsJSON(r), "%s %v", tt.path, tt.header)
	}
}
