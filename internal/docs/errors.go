package docs

import (
	"errors"
	"fmt"

	"docvault/internal/database"
)

// ErrNotFound is returned when a direct coordinator call targets a missing
// document. Background paths treat the same condition as a silent no-op.
var ErrNotFound = database.ErrNotFound

// ValidationError reports malformed input rejected synchronously. It is
// never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StorageError wraps a primary-file storage failure that must surface to
// the caller. Thumbnail storage failures never carry this type; they are
// logged and swallowed.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage " + e.Op + " failed: " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorage reports whether err is a StorageError.
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
