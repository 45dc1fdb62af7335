package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes. The HTTP layer maps each to a status.
const (
	EINVALID      = "invalid"      // 400 bad input, unreadable CSV
	EUNAUTHORIZED = "unauthorized" // 401 admin token missing or invalid
	EFORBIDDEN    = "forbidden"    // 403 client IP not on the admin allow-list
	ENOTFOUND     = "not_found"    // 404 product or variant
	ECONFLICT     = "conflict"     // 409 product name already taken
	ETOOLARGE     = "too_large"    // 413 request or upload over the size limit
	ERATELIMIT    = "rate_limit"   // 429
	EINTERNAL     = "internal"     // 500 details are logged, never shown
	EUNAVAILABLE  = "unavailable"  // 503 maintenance mode, backend down
)

const internalMessage = "An internal error occurred. Please try again later."

// Error is the error type every catalog operation returns.
type Error struct {
	// Code is one of the E* constants.
	Code string

	// Message is safe to show to the caller unless Code is EINTERNAL.
	Message string

	// Op names the failing operation, e.g. "catalog.upsert". Logged only.
	Op string

	// Err is the wrapped cause, if any.
	Err error
}

func (e *Error) Error() string {
	parts := make([]string, 0, 3)
	if e.Op != "" {
		parts = append(parts, e.Op)
	}
	parts = append(parts, e.Message)
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error {
	return e.Err
}

func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// ErrorCode returns the code of err: "" for nil, EINTERNAL for anything that
// is not an *Error. Check IsValidationError first; a ValidationError has no
// code of its own.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := asError(err); ok {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage returns the message to show the caller. Internal and foreign
// errors collapse to a generic sentence.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := asError(err); ok && e.Code != EINTERNAL {
		return e.Message
	}
	return internalMessage
}

// ErrorOp returns the operation recorded on err, for logging.
func ErrorOp(err error) string {
	if e, ok := asError(err); ok {
		return e.Op
	}
	return ""
}

// IsCode reports whether err carries code.
func IsCode(err error, code string) bool {
	return ErrorCode(err) == code
}

func newError(code, op, message string, err error) error {
	return &Error{Code: code, Op: op, Message: message, Err: err}
}

// Errorf builds an error with a formatted message.
func Errorf(code, op, format string, args ...any) error {
	return newError(code, op, fmt.Sprintf(format, args...), nil)
}

// WrapError attaches a code and message to err. It returns nil for a nil err.
func WrapError(err error, code, op, message string) error {
	if err == nil {
		return nil
	}
	return newError(code, op, message, err)
}

func Invalid(op, message string) error      { return newError(EINVALID, op, message, nil) }
func Unauthorized(op, message string) error { return newError(EUNAUTHORIZED, op, message, nil) }
func Conflict(op, message string) error     { return newError(ECONFLICT, op, message, nil) }

// NotFound reports a missing resource, e.g. NotFound(op, "product", id).
func NotFound(op, resource, identifier string) error {
	return newError(ENOTFOUND, op, fmt.Sprintf("%s not found: %s", resource, identifier), nil)
}

// Internal wraps a store or I/O failure. Callers see only a generic message.
func Internal(err error, op, message string) error {
	return newError(EINTERNAL, op, message, err)
}

// Errors returned by the HTTP gates in front of the catalog.
var (
	ErrMaintenance   = &Error{Code: EUNAVAILABLE, Message: "The store is under maintenance. Please check back soon."}
	ErrAdminRequired = &Error{Code: EUNAUTHORIZED, Message: "Not authorized, token missing or invalid"}
	ErrIPNotAllowed  = &Error{Code: EFORBIDDEN, Message: "Access denied from this IP address"}
)

// ValidationError reports per-field problems in a submission. Fields are
// keyed by their JSON name.
type ValidationError struct {
	Op     string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	var msg string
	if len(e.Fields) == 1 {
		for field, m := range e.Fields {
			msg = field + ": " + m
		}
	} else {
		msg = fmt.Sprintf("validation failed for %d fields", len(e.Fields))
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

// NewValidationError reports a single bad field.
func NewValidationError(op, field, message string) error {
	return &ValidationError{Op: op, Fields: map[string]string{field: message}}
}

// AddFieldError records field on err when it is already a ValidationError,
// and starts a new one otherwise.
func AddFieldError(err error, field, message string) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		ve.Fields[field] = message
		return ve
	}
	return &ValidationError{Fields: map[string]string{field: message}}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// GetValidationFields returns the field map of a ValidationError, or nil.
func GetValidationFields(err error) map[string]string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}
