package errors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	StatusFail  = "fail"
	StatusError = "error"
)

// AppError is the single error type carried through the request pipeline.
// Operational errors are anticipated failures whose message is safe to show a
// client; anything else is treated as a programming fault.
type AppError struct {
	Message       string   `json:"message"`
	StatusCode    int      `json:"statusCode"`
	Status        string   `json:"status"`
	IsOperational bool     `json:"isOperational"`
	Errors        []string `json:"errors,omitempty"`
	Err           error    `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %s (caused by: %v)", e.StatusCode, e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Status, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithErrors(errs ...string) *AppError {
	e.Errors = append(e.Errors, errs...)
	return e
}

// StatusFor maps an HTTP status onto the envelope status: "fail" for client
// errors, "error" for everything else.
func StatusFor(statusCode int) string {
	if statusCode >= 400 && statusCode < 500 {
		return StatusFail
	}
	return StatusError
}

func New(message string, statusCode int) *AppError {
	return &AppError{
		Message:       message,
		StatusCode:    statusCode,
		Status:        StatusFor(statusCode),
		IsOperational: true,
	}
}

func Wrap(err error, message string, statusCode int) *AppError {
	appErr := New(message, statusCode)
	appErr.Err = err
	return appErr
}

func BadRequest(message string) *AppError {
	return New(message, http.StatusBadRequest)
}

func Validation(message string, violations []string) *AppError {
	return New(message, http.StatusBadRequest).WithErrors(violations...)
}

func InvalidID(resource string) *AppError {
	return New(fmt.Sprintf("Invalid %s ID", resource), http.StatusBadRequest)
}

func NotFound(resource string) *AppError {
	return New(fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func Unauthorized(message string) *AppError {
	return New(message, http.StatusUnauthorized)
}

func Forbidden(message string) *AppError {
	return New(message, http.StatusForbidden)
}

func TooManyRequests(message string) *AppError {
	return New(message, http.StatusTooManyRequests)
}

// Internal marks an unexpected failure. Its message is hidden from clients in
// production.
func Internal(message string, err error) *AppError {
	return &AppError{
		Message:       message,
		StatusCode:    http.StatusInternalServerError,
		Status:        StatusError,
		IsOperational: false,
		Err:           err,
	}
}

// CastError reports a value that cannot be converted to the type its field
// requires, such as a malformed ObjectID or a non-numeric price filter.
type CastError struct {
	Path  string
	Value string
	Err   error
}

func (e *CastError) Error() string {
	return fmt.Sprintf("cast to %s failed for value %q", e.Path, e.Value)
}

func (e *CastError) Unwrap() error {
	return e.Err
}

// PanicError carries a value recovered from a panicking handler together with
// the goroutine stack at the point of recovery.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
