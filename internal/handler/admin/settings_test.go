package admin

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/flipcart/internal/domain"
)

func TestSettingsHandler_Get(t *testing.T) {
	h := NewSettingsHandler(&mockSettings{current: &domain.Settings{
		CompanyName:        "Acme",
		AdminEmail:         "owner@acme.test",
		AdminEmailPassword: "app-password",
	}})

	w := httptest.NewRecorder()
	h.Get(w, adminRequest(http.MethodGet, "/api/settings", ""))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cmp_name":"Acme"`)
	assert.NotContains(t, w.Body.String(), "app-password")
}

func TestSettingsHandler_GetError(t *testing.T) {
	h := NewSettingsHandler(&mockSettings{getErr: domain.Internal(errors.New("eof"), "settings.get", "failed")})

	w := httptest.NewRecorder()
	h.Get(w, adminRequest(http.MethodGet, "/api/settings", ""))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSettingsHandler_Update(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		check          func(t *testing.T, s *domain.Settings)
	}{
		{
			name:           "legacy numeric toggles",
			body:           `{"cmp_name":" Acme ","admin_email":"owner@acme.test","show_gpay":1,"show_paytm":"0","pay_type":true,"default_disp_order":500}`,
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, s *domain.Settings) {
				assert.Equal(t, "Acme", s.CompanyName)
				assert.True(t, s.ShowGPay)
				assert.False(t, s.ShowPaytm)
				assert.True(t, s.PayType)
				assert.Equal(t, "500", s.DefaultOrder)
			},
		},
		{
			name:           "invalid admin email",
			body:           `{"admin_email":"not-an-email"}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockSettings{}
			h := NewSettingsHandler(store)

			w := httptest.NewRecorder()
			h.Update(w, adminRequest(http.MethodPut, "/api/settings", tt.body))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.check != nil {
				require.NotNil(t, store.updated)
				tt.check(t, store.updated)
			} else {
				assert.Nil(t, store.updated)
			}
		})
	}
}
