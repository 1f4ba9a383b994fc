// Package apperror defines the error taxonomy shared by the services and
// translated to HTTP statuses by the handlers.
package apperror

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation           = errors.New("validation failed")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrNotFound             = errors.New("not found")
	ErrPayloadTooLarge      = errors.New("payload too large")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrNoOpChange           = errors.New("no-op change")
	ErrRateLimited          = errors.New("rate limited")
)

// FieldError describes one failing input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type AppError struct {
	Err     error        // one of the sentinels above
	Message string       // safe to show to clients
	Fields  []FieldError // populated for validation failures
}

func (e *AppError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Validation returns a validation error carrying every failing field.
func Validation(fields ...FieldError) *AppError {
	return &AppError{Err: ErrValidation, Message: "Validation failed", Fields: fields}
}

// Invalid is shorthand for a single-field validation error.
func Invalid(field, message string) *AppError {
	return Validation(FieldError{Field: field, Message: message})
}

func InvalidCredentials(message string) *AppError {
	return &AppError{Err: ErrInvalidCredentials, Message: message}
}

func Unauthorized(message string) *AppError {
	return &AppError{Err: ErrUnauthorized, Message: message}
}

func Forbidden(message string) *AppError {
	return &AppError{Err: ErrForbidden, Message: message}
}

func NotFound(resource, id string) *AppError {
	if id == "" {
		return &AppError{Err: ErrNotFound, Message: fmt.Sprintf("%s not found", resource)}
	}
	return &AppError{Err: ErrNotFound, Message: fmt.Sprintf("%s not found with id %s", resource, id)}
}

func PayloadTooLarge(limit int64) *AppError {
	return &AppError{Err: ErrPayloadTooLarge, Message: fmt.Sprintf("File too large. Maximum size is %dMB", limit>>20)}
}

func UnsupportedMediaType(message string) *AppError {
	return &AppError{Err: ErrUnsupportedMediaType, Message: message}
}

func NoOpChange(message string) *AppError {
	return &AppError{Err: ErrNoOpChange, Message: message}
}

func RateLimited() *AppError {
	return &AppError{Err: ErrRateLimited, Message: "Too many requests, please try again later"}
}
