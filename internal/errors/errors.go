package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/vytor/stormstats/internal/replay"
)

// Error codes
const (
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeUnprocessable   = "UNPROCESSABLE_REPLAY"
	ErrCodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
	ErrCodeUnavailable     = "SERVICE_UNAVAILABLE"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code    string // Error code (e.g., "NOT_FOUND", "VALIDATION_ERROR")
	Message string // Human-readable error message
	Detail  string // Diagnostic detail, safe to show but not localized
	Status  int    // HTTP status code
	Err     error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id any) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  http.StatusNotFound,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  http.StatusBadRequest,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewPayloadTooLargeError creates a new PAYLOAD_TOO_LARGE error
func NewPayloadTooLargeError(limit int64) *AppError {
	return &AppError{
		Code:    ErrCodePayloadTooLarge,
		Message: fmt.Sprintf("upload exceeds the %d byte limit", limit),
		Status:  http.StatusRequestEntityTooLarge,
	}
}

// NewUnavailableError creates a new SERVICE_UNAVAILABLE error
func NewUnavailableError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeUnavailable,
		Message: message,
		Status:  http.StatusServiceUnavailable,
		Err:     err,
	}
}

// FromReplay maps a replay pipeline error onto an AppError. Errors that are
// not pipeline errors become internal errors.
func FromReplay(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	var re *replay.Error
	if !stderrors.As(err, &re) {
		return NewInternalError(err)
	}

	out := &AppError{Message: re.Message, Detail: re.Detail, Err: err}
	switch re.Kind {
	case replay.KindNotFound:
		out.Code, out.Status = ErrCodeNotFound, http.StatusNotFound
	case replay.KindInvalidFormat, replay.KindTooSmall:
		out.Code, out.Status = ErrCodeValidation, http.StatusBadRequest
	case replay.KindTooLarge:
		out.Code, out.Status = ErrCodePayloadTooLarge, http.StatusRequestEntityTooLarge
	default:
		out.Code, out.Status = ErrCodeUnprocessable, http.StatusUnprocessableEntity
	}
	return out
}
