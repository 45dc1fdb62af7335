package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dukerupert/flipcart/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names so clients can match them.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// DecodeJSON reads the request body into dst. Malformed bodies are EINVALID
// and bodies cut off by MaxBodySize are ETOOLARGE.
func DecodeJSON(r *http.Request, op string, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return nil
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return domain.Errorf(domain.ETOOLARGE, op, "request body exceeds %d bytes", tooLarge.Limit)
	case errors.Is(err, io.EOF):
		return domain.Invalid(op, "request body is empty")
	default:
		return domain.WrapError(err, domain.EINVALID, op, "invalid JSON body")
	}
}

// Validate runs the struct's validate tags and converts failures into a
// domain.ValidationError keyed by JSON field name.
func Validate(op string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.Internal(err, op, "validation failed")
	}

	var out error
	for _, fe := range verrs {
		msg := fieldMessage(fe)
		if out == nil {
			out = domain.NewValidationError(op, fe.Field(), msg)
			continue
		}
		out = domain.AddFieldError(out, fe.Field(), msg)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return fe.Field() + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "email":
		return fe.Field() + " must be a valid email address"
	case "ip":
		return fe.Field() + " must be an IP address"
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}

// Bind decodes and validates a JSON request body.
func Bind(r *http.Request, op string, dst any) error {
	if err := DecodeJSON(r, op, dst); err != nil {
		return err
	}
	return Validate(op, dst)
}

// Message is the success envelope used by the admin write endpoints.
type Message struct {
	Success int    `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}
