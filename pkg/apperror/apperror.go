package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the single typed application error carried from the services to
// the HTTP boundary. It pairs a user-facing message with the HTTP status the
// boundary should answer with, optionally wrapping an internal cause.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an application error with an explicit HTTP status
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// Wrap attaches an internal cause that is logged but never sent to clients
func Wrap(status int, message string, err error) *Error {
	return &Error{Status: status, Message: message, Err: err}
}

func NotFound(what string) *Error {
	return &Error{Status: http.StatusNotFound, Message: what + " not found"}
}

func Validation(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Message: message}
}

// InsufficientStock names the offending product, per the order contract
func InsufficientStock(productName string) *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Message: fmt.Sprintf("insufficient stock for product %s", productName),
	}
}

// AlreadyResolved rejects a second resolution of a stock request
func AlreadyResolved(currentStatus string) *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Message: "stock request already " + currentStatus,
	}
}

// FromError extracts the application error, or nil for unexpected errors
func FromError(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}
