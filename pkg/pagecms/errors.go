package pagecms

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrPageNotFound indicates no page matched a well-formed identifier
	ErrPageNotFound = errors.New("page not found")

	// ErrBlockNotFound indicates the page exists but no block matched
	ErrBlockNotFound = errors.New("content block not found")

	// ErrSlugExists indicates a write collided with another page's slug
	ErrSlugExists = errors.New("page slug already exists")

	// ErrObjectNotFound indicates no stored object matched a storage key
	ErrObjectNotFound = errors.New("object not found")
)

// ValidationError describes malformed or missing caller input. Operations
// return it before any repository or storage access is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError constructs a ValidationError for a field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// PageError represents an error from a page operation
type PageError struct {
	PageID uuid.UUID
	Op     string
	Err    error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page operation %s failed for page %s: %v", e.Op, e.PageID, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

// StorageError represents an error related to storage operations
type StorageError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
