package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/dukerupert/flipcart/internal/domain"
)

// TokenVerifier resolves a bearer token to the admin it was issued to.
type TokenVerifier interface {
	Verify(token string) (*domain.Admin, error)
}

// RequireAdmin rejects requests without a valid "Authorization: Bearer"
// token and stores the admin in the context.
func RequireAdmin(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				respondWithError(w, r, domain.ErrAdminRequired)
				return
			}

			admin, err := verifier.Verify(token)
			if err != nil {
				respondWithError(w, r, domain.ErrAdminRequired)
				return
			}

			ctx := domain.NewContextWithAdmin(r.Context(), admin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// GetAdmin returns the admin stored by RequireAdmin, or nil.
func GetAdmin(ctx context.Context) *domain.Admin {
	return domain.AdminFromContext(ctx)
}
