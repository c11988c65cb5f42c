package catalog

import (
	"errors"
	"fmt"
)

// ErrNotLoaded is returned by discovery operations before the first
// successful catalog load. "No results" is never an error; an unloaded
// catalog is.
var ErrNotLoaded = errors.New("catalog not loaded")

// DuplicateIdentifierError indicates a corrupt source feed: two records in
// one load batch share an identifier. The store rejects the whole batch.
type DuplicateIdentifierError struct {
	Identifier string
}

func (e *DuplicateIdentifierError) Error() string {
	return fmt.Sprintf("duplicate catalog identifier %q", e.Identifier)
}

// EntityNotFoundError indicates a by-identifier lookup miss.
type EntityNotFoundError struct {
	Identifier string
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("catalog entity %q not found", e.Identifier)
}
