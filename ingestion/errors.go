package ingestion

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreRequired is returned when a document store is not provided.
	ErrStoreRequired = errors.New("document store required")

	// ErrInvalidMaxAttempts is returned when a retry is configured with no attempts.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrAllSourcesFailed is returned when every source of a phase failed.
	ErrAllSourcesFailed = errors.New("all sources failed")

	// ErrSourceNotConfigured is returned when a selected phase has no source adapter.
	ErrSourceNotConfigured = errors.New("source not configured")
)

// CommitError reports a batch write that stopped part way. Written counts the
// records durably committed, in order, before the failing chunk.
type CommitError struct {
	Collection string
	Written    int
	Err        error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit %s: %d records written before failure: %v", e.Collection, e.Written, e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}
