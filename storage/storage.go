// Package storage persists sweep runs and their decoded buffer records.
//
// The sweep engine's contract ends at the decoded record slice; this package
// is the durable-storage collaborator consuming it. The default
// implementation is SQLite-backed.
package storage

import (
	"context"
	"io"
	"time"

	"github.com/peregrinescode/keithley2614B/instrument"
	"github.com/peregrinescode/keithley2614B/tsp"
)

// Run is one persisted sweep execution.
type Run struct {
	ID        int64
	CreatedAt time.Time
	Address   string
	Variant   string
	SpecJSON  string // full sweep spec, JSON encoded
}

// Store persists sweep runs and records.
type Store interface {
	io.Closer

	// CreateRun records a new sweep execution and returns its ID.
	CreateRun(ctx context.Context, address string, spec *tsp.SweepSpec) (int64, error)

	// StoreRecords appends the decoded buffer records for a run, preserving
	// chronological order.
	StoreRecords(ctx context.Context, runID int64, records []instrument.BufferRecord) error

	// Runs lists all persisted runs, newest first.
	Runs(ctx context.Context) ([]Run, error)

	// Records returns a run's records in chronological order.
	Records(ctx context.Context, runID int64) ([]instrument.BufferRecord, error)
}
