// Package ledger persists observed test durations across runs and turns
// them into time-savings estimates.
//
// The ledger is strictly best-effort: an unavailable or corrupt store
// degrades to a no-op implementation, so callers never branch on
// availability and a broken cache can never fail a run.
package ledger

import (
	"time"
)

// Entry is one persisted duration.
type Entry struct {
	TestID   string
	Seconds  float64
	Recorded time.Time
}

// RunRecord summarizes one engine invocation.
type RunRecord struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	TotalItems   int
	RemovedItems int
	SkipEnabled  bool
}

// Store is the persistence capability for the ledger.
type Store interface {
	// Available reports whether writes will actually persist. Purely
	// informational; all methods are safe to call either way.
	Available() bool

	// Durations returns the persisted test-id → seconds mapping. Missing
	// or unreadable state yields an empty map, never an error.
	Durations() map[string]float64

	// Entries returns the persisted durations with their recording
	// timestamps, slowest first.
	Entries() []Entry

	// Record upserts the given durations. Entries for tests not present
	// in the argument are left untouched (merge, not replace).
	Record(durations map[string]float64) error

	// RecordRun appends a run summary.
	RecordRun(run RunRecord) error

	// Runs returns the most recent run summaries, newest first.
	Runs(limit int) []RunRecord

	// Clear drops all persisted durations.
	Clear() error

	Close() error
}

// noopStore is the degraded implementation used when no database can be
// opened.
type noopStore struct{}

// NewNoop returns a Store that persists nothing.
func NewNoop() Store {
	return noopStore{}
}

func (noopStore) Available() bool                    { return false }
func (noopStore) Durations() map[string]float64      { return map[string]float64{} }
func (noopStore) Entries() []Entry                   { return nil }
func (noopStore) Record(map[string]float64) error    { return nil }
func (noopStore) RecordRun(RunRecord) error          { return nil }
func (noopStore) Runs(int) []RunRecord               { return nil }
func (noopStore) Clear() error                       { return nil }
func (noopStore) Close() error                       { return nil }
