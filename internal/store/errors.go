package store

import (
	"errors"
	"fmt"

	"github.com/roach88/adrgov/internal/adr"
)

var (
	// ErrNotFound is returned when no record matches the lookup.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a save races another writer or tries
	// to create a record that already exists.
	ErrConflict = errors.New("version conflict")

	// ErrHistoryRewrite is returned when a save would drop history entries.
	ErrHistoryRewrite = errors.New("history is append-only")
)

// StoreError wraps every failure returned by this package.
type StoreError struct {
	Op  string // "load", "save", "find", "list"
	ID  int64  // record id, or thread id for "find"; 0 when not applicable
	Err error
}

func (e *StoreError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("store: %s %s: %v", e.Op, adr.Key(e.ID), e.Err)
	}
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsNotFound returns true if err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict returns true if err wraps ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
