// Package apperror defines the domain error taxonomy shared by every layer.
//
// Lower layers return *AppError values wrapping one of the sentinels below.
// Callers test the KIND with errors.Is(err, apperror.ErrNotFound) and read the
// human-readable text with errors.As. Only the HTTP layer turns kinds into
// status codes (see handler/response.go).
package apperror

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrStore        = errors.New("store error")
)

// InvalidCredentials is the only message a failed login ever produces.
// Unknown email and wrong password must be indistinguishable to the caller.
const InvalidCredentials = "Invalid credentials"

type AppError struct {
	Err     error    // sentinel kind
	Message string   // Human-readable error message
	Field   string   // Optional: field causing the error
	Fields  []string // Optional: every field that failed validation
	Cause   error    // Optional: underlying driver error, never shown to clients
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap exposes both the sentinel and the cause so errors.Is matches either.
func (e *AppError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
		Fields:  []string{field},
	}
}

// MissingFields reports every required field absent from a create or update payload.
// The message names them in the order given.
func MissingFields(fields ...string) *AppError {
	e := &AppError{
		Err:     ErrValidation,
		Message: "missing required fields: " + strings.Join(fields, ", "),
		Fields:  fields,
	}
	if len(fields) == 1 {
		e.Field = fields[0]
	}
	return e
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized means the caller must (re-)authenticate. HTTP maps it to 401.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Store wraps a persistence failure. op names what was attempted ("listing services").
// The driver error is kept as Cause: it shows up in Error() for logs, while
// Message (what clients see) stays generic.
func Store(op string, cause error) *AppError {
	return &AppError{
		Err:     ErrStore,
		Message: "store: " + op + " failed",
		Cause:   cause,
	}
}
