// Package middleware holds the HTTP middleware in front of the catalog API:
// request ids, request-scoped loggers, metrics, rate limits, body limits and
// the admin and storefront gates.
package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dukerupert/flipcart/internal/domain"
)

type contextKey string

// These helpers mirror handler.ErrorResponse and stay self-contained because
// handler imports middleware.

// respondWithError writes err as a JSON error for API and JSON clients, and
// as plain text otherwise.
func respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.ErrorCode(err)
	message := domain.ErrorMessage(err)
	status := errorCodeToHTTPStatus(code)

	attrs := []any{
		"error", err.Error(),
		"code", code,
		"status", status,
	}
	logger := GetLogger(r.Context())
	if status >= 500 {
		logger.Error("middleware error", attrs...)
	} else {
		logger.Info("middleware error", attrs...)
	}

	if !acceptsJSON(r) {
		http.Error(w, message, status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func respondTooManyRequests(w http.ResponseWriter, r *http.Request) {
	respondWithError(w, r, domain.Errorf(domain.ERATELIMIT, "", "Too many requests"))
}

func respondTooLarge(w http.ResponseWriter, r *http.Request, message string) {
	respondWithError(w, r, domain.Errorf(domain.ETOOLARGE, "", "%s", message))
}

// errorCodeToHTTPStatus maps domain error codes to HTTP status codes.
func errorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case domain.EFORBIDDEN:
		return http.StatusForbidden
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT:
		return http.StatusConflict
	case domain.ETOOLARGE:
		return http.StatusRequestEntityTooLarge
	case domain.ERATELIMIT:
		return http.StatusTooManyRequests
	case domain.EUNAVAILABLE:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// acceptsJSON reports whether the client should get a JSON error. Every
// /api route answers in JSON.
func acceptsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json")
}
