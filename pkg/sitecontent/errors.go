package sitecontent

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrNotFound indicates the targeted document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrValidation indicates malformed caller input; nothing was persisted.
	ErrValidation = errors.New("invalid document fields")

	// ErrStoreUnavailable indicates the backing document database is
	// unreachable or degraded. Write paths fail outright with nothing
	// persisted; read paths degrade to empty results (see ListResult).
	ErrStoreUnavailable = errors.New("document store unavailable")
)

// StoreError wraps a failed store operation with its collection and
// document id.
type StoreError struct {
	Collection string
	ID         string
	Op         string
	Err        error
}

func (e *StoreError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("store operation %s failed for collection %s: %v", e.Op, e.Collection, e.Err)
	}
	return fmt.Sprintf("store operation %s failed for %s/%s: %v", e.Op, e.Collection, e.ID, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
