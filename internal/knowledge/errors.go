// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"errors"
	"fmt"
)

// ErrNotFound reports a lookup for an entry ID that is not in the store.
// Wrapped errors carry the offending ID; match with errors.Is.
var ErrNotFound = errors.New("entry not found")

// ValidationError reports input rejected before any state mutation.
// The store is unchanged when one is returned.
type ValidationError struct {
	// Field names the rejected input: "content", "category", or "confidence".
	Field string

	// Message describes why the value was rejected.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// PersistError reports a failure writing or reading the backing documents.
// The in-memory store remains valid; completed mutations are not rolled back.
type PersistError struct {
	// Path is the document that failed.
	Path string

	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *PersistError) Error() string {
	return fmt.Sprintf("persisting %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *PersistError) Unwrap() error {
	return e.Err
}
