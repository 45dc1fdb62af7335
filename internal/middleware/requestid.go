package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/dukerupert/flipcart/internal/domain"
)

// RequestIDHeader is the header name for request ID
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLength caps ids accepted from upstream proxies.
const maxRequestIDLength = 128

// RequestID reuses the inbound X-Request-ID when present and generates one
// otherwise. The id is echoed in the response and stored in the context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, requestID)
		ctx := domain.NewContextWithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from the context
func GetRequestID(ctx context.Context) string {
	return domain.RequestIDFromContext(ctx)
}
