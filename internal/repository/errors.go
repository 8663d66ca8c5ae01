package repository

import (
	"errors"
	"fmt"
)

// DuplicateKeyError is returned when a write violates the uniqueness of a field.
type DuplicateKeyError struct {
	Field string // "name" or "no"
	Value any
	Err   error // underlying driver error, if any
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key %s: %v", e.Field, e.Value)
}

func (e *DuplicateKeyError) Unwrap() error {
	return e.Err
}

// KeyValue returns the offending key as a single-entry map.
func (e *DuplicateKeyError) KeyValue() map[string]any {
	return map[string]any{e.Field: e.Value}
}

// AsDuplicateKey extracts a DuplicateKeyError from err's chain.
func AsDuplicateKey(err error) (*DuplicateKeyError, bool) {
	var dup *DuplicateKeyError
	if errors.As(err, &dup) {
		return dup, true
	}
	return nil, false
}

// ErrNotFound represents a resource not found error in the repository layer.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s with ID '%s' not found", e.Resource, e.ID)
}

// IsNotFound checks if an error is a repository not found error.
func IsNotFound(err error) bool {
	var nf ErrNotFound
	return errors.As(err, &nf)
}

// NewNotFound creates a new ErrNotFound.
func NewNotFound(resource, id string) ErrNotFound {
	return ErrNotFound{Resource: resource, ID: id}
}
