package docstore

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the requested document does not exist.
var ErrNotFound = errors.New("docstore: not found")

// StoreError wraps an I/O failure from a store backend and records whether
// the operation is worth retrying. Transient failures (connection loss,
// serialization conflicts, timeouts) are retryable; everything else is
// permanent and must surface to the caller unchanged.
type StoreError struct {
	Op         string
	Collection string
	Retryable  bool
	Err        error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("docstore: %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is a transient store failure.
func IsRetryable(err error) bool {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return false
}
