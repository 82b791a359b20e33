package adapter

import (
	"time"

	m "testpulse/internal/model"
)

// ResultStore is the append-only repository of test case records. Records are
// keyed by timestamp and insertion order; there is no update or delete.
type ResultStore interface {
	// Append persists one record. A persistence error is fatal to the
	// caller's operation; there are no partial writes.
	Append(result m.TestCaseResult) error
	// QuerySince returns every record at or after the cutoff, newest first.
	QuerySince(cutoff time.Time) ([]m.TestCaseResult, error)
	Close() error
}
