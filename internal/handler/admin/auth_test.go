package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/flipcart/internal/domain"
)

type mockAuth struct {
	loginFunc func(ctx context.Context, username, password string) (string, *domain.Admin, error)
}

func (m *mockAuth) Login(ctx context.Context, username, password string) (string, *domain.Admin, error) {
	return m.loginFunc(ctx, username, password)
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		wantUser       string
	}{
		{name: "username", body: `{"username":"admin","password":"hunter22"}`, expectedStatus: http.StatusOK, wantUser: "admin"},
		{name: "email alias", body: `{"email":" admin ","password":"hunter22"}`, expectedStatus: http.StatusOK, wantUser: "admin"},
		{name: "wrong password", body: `{"username":"admin","password":"nope"}`, expectedStatus: http.StatusUnauthorized, wantUser: "admin"},
		{name: "missing password", body: `{"username":"admin"}`, expectedStatus: http.StatusBadRequest},
		{name: "missing username", body: `{"password":"hunter22"}`, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser string
			rec := &recorder{}
			h := NewAuthHandler(&mockAuth{
				loginFunc: func(_ context.Context, username, password string) (string, *domain.Admin, error) {
					gotUser = username
					if password != "hunter22" {
						return "", nil, domain.Unauthorized("auth.login", "Invalid username or password")
					}
					return "tok", &domain.Admin{ID: 1, Username: username, Role: "admin"}, nil
				},
			}, rec)

			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			h.Login(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.wantUser, gotUser)
			if tt.wantUser != "" {
				assert.Len(t, rec.logins, 1)
			} else {
				assert.Empty(t, rec.logins)
			}

			if tt.expectedStatus == http.StatusOK {
				var body loginResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Equal(t, "tok", body.Token)
				assert.Equal(t, "admin", body.Data.Username)
			}
		})
	}
}

func TestAuthHandler_Me(t *testing.T) {
	h := NewAuthHandler(nil, nil)

	w := httptest.NewRecorder()
	h.Me(w, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	h.Me(w, adminRequest(http.MethodGet, "/api/auth/me", ""))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"admin"`)
}
