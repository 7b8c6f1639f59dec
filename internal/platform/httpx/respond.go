// Package httpx provides JSON response, request decoding and error rendering
// helpers shared by HTTP handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/harapan-ngo/harapan-cms/internal/apperr"
)

// HandlerFunc is an HTTP handler that reports failures by returning them.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Data is the success envelope.
type Data struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// OK sends a success envelope wrapping data.
func OK(w http.ResponseWriter, status int, data any) {
	JSON(w, status, Data{Success: true, Data: data})
}

// DecodeJSON decodes the JSON request body into target.
func DecodeJSON(r *http.Request, target any) error {
	if r.Body == nil {
		return apperr.Validation(apperr.FieldError{Field: "body", Message: "Request body is required"})
	}
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		switch {
		case errors.Is(err, io.EOF):
			return apperr.Validation(apperr.FieldError{Field: "body", Message: "Request body is required"})
		case errors.Is(err, io.ErrUnexpectedEOF):
			return apperr.Validation(apperr.FieldError{Field: "body", Message: "Request body is not valid JSON"})
		}
		return err
	}
	return nil
}

// ParseID reads the named chi URL parameter as a UUID.
func ParseID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, apperr.MalformedID(err)
	}
	return id, nil
}

// NewValidator returns a validator that reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return v
}
