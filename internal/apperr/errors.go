// Package apperr defines the error taxonomy shared by services and handlers.
// Handlers map these to HTTP statuses; services never see status codes.
package apperr

import (
	"errors"
	"fmt"
)

// ErrNotFound signals that an entity id is absent from its collection.
var ErrNotFound = errors.New("not found")

// ErrInsufficientStock signals a deduction larger than the available stock.
var ErrInsufficientStock = errors.New("insufficient stock")

// ValidationError reports missing or invalid input fields.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validation builds a ValidationError with a formatted message.
func Validation(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StorageError wraps a file read/write failure in the record store.
type StorageError struct {
	Op         string
	Collection string
	Err        error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// MirrorError wraps a mirror-database failure. The mirror service converts
// connectivity failures into structured statuses instead of returning these
// to HTTP callers; MirrorError surfaces only from explicit upload/download.
type MirrorError struct {
	Op  string
	Err error
}

func (e *MirrorError) Error() string {
	return fmt.Sprintf("mirror %s: %v", e.Op, e.Err)
}

func (e *MirrorError) Unwrap() error { return e.Err }
