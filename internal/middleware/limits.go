package middleware

import (
	"net/http"
	"time"
)

// Common size limits
const (
	KB = 1024
	MB = 1024 * KB

	// DefaultMaxBodySize bounds JSON request bodies.
	DefaultMaxBodySize = 1 * MB

	// UploadMaxBodySize bounds CSV and image uploads.
	UploadMaxBodySize = 20 * MB
)

// MaxBodySize rejects bodies whose declared length exceeds maxBytes with
// 413 and caps the rest with http.MaxBytesReader.
func MaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodySize
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				respondTooLarge(w, r, "Request body too large")
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// DefaultTimeout bounds a request's handler time.
const DefaultTimeout = 30 * time.Second

const timeoutBody = `{"error":{"code":"unavailable","message":"Request timeout"}}`

// Timeout cancels the request context after d and answers 503 if the
// handler has not written yet.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	if d <= 0 {
		d = DefaultTimeout
	}
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, timeoutBody)
	}
}
