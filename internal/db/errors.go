package db

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a load or delete targets a missing project.
	ErrNotFound = errors.New("record not found")

	// ErrCorruptRow marks a row whose required parts cannot be decoded.
	ErrCorruptRow = errors.New("corrupt project row")
)

// PersistenceError reports a store-level failure. The caller's in-memory
// project is never modified when one is returned.
type PersistenceError struct {
	Op  string
	ID  string
	Err error
}

func (e *PersistenceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("store %s %s: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
