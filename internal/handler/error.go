package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dukerupert/flipcart/internal/domain"
	"github.com/dukerupert/flipcart/internal/middleware"
	"github.com/dukerupert/flipcart/internal/telemetry"
)

// errorBody is the JSON error envelope. success is kept at 0 for the admin
// console, which branches on it.
type errorBody struct {
	Success int         `json:"success"`
	Error   errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ErrorResponse writes err with the status matching its domain code. Internal
// errors are logged with their cause and reported to Sentry; the client only
// sees a generic message.
func ErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	if domain.IsValidationError(err) {
		ValidationErrorResponse(w, r, err)
		return
	}

	code := domain.ErrorCode(err)
	message := domain.ErrorMessage(err)
	status := ErrorCodeToHTTPStatus(code)

	logger := middleware.GetLogger(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			"error", errString(err),
			"op", domain.ErrorOp(err),
			"code", code,
			"status", status,
		)
		telemetry.CaptureErrorFromContext(r.Context(), err, map[string]interface{}{
			"op":   domain.ErrorOp(err),
			"path": r.URL.Path,
		})
	} else {
		logger.Info("request rejected",
			"error", errString(err),
			"code", code,
			"status", status,
		)
	}

	writeError(w, r, status, errorDetail{Code: code, Message: message})
}

// ValidationErrorResponse writes the field errors of a ValidationError. Other
// errors fall back to ErrorResponse.
func ValidationErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	if !domain.IsValidationError(err) {
		ErrorResponse(w, r, err)
		return
	}

	fields := domain.GetValidationFields(err)
	middleware.GetLogger(r.Context()).Info("validation failed", "fields", fields)

	writeError(w, r, http.StatusBadRequest, errorDetail{
		Code:    domain.EINVALID,
		Message: "Validation failed",
		Fields:  fields,
	})
}

// UnauthorizedResponse answers a request that needs an admin token.
func UnauthorizedResponse(w http.ResponseWriter, r *http.Request) {
	ErrorResponse(w, r, domain.ErrAdminRequired)
}

// ErrorCodeToHTTPStatus maps domain error codes to HTTP status codes.
func ErrorCodeToHTTPStatus(code string) int {
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

func writeError(w http.ResponseWriter, r *http.Request, status int, detail errorDetail) {
	if !acceptsJSON(r) {
		http.Error(w, detail.Message, status)
		return
	}
	WriteJSON(w, status, errorBody{Error: detail})
}

// acceptsJSON reports whether the client expects a JSON error body.
func acceptsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") || strings.HasSuffix(r.URL.Path, ".json") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json")
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
