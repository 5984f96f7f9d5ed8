package database

import (
	"context"
	"errors"
	"time"

	"vixmon/internal/model"
)

// ErrDuplicateTimestamp is returned when Store is called twice for the same
// timestamp. It is surfaced rather than swallowed: a duplicate indicates a
// scheduling or clock bug upstream.
var ErrDuplicateTimestamp = errors.New("analysis record already stored for timestamp")

// ErrStoreUnavailable marks persistence failures at the connection level. The
// engine recovers from it by completing the run without historical context.
var ErrStoreUnavailable = errors.New("snapshot store unavailable")

// MigrationResult reports the outcome of a bulk import.
type MigrationResult struct {
	Imported int
	Skipped  int
	Rejected int
}

// Repository defines the standard interface for snapshot store operations.
type Repository interface {
	// Store persists one analysis record with its contracts and inversions
	// in a single transaction. A partial write is never observable.
	Store(ctx context.Context, record model.AnalysisRecord) error

	// GetLatestBefore returns the most recent record with a timestamp
	// strictly earlier than ts, or nil if none exists. This is the
	// previous-trading-day resolver: weekends and holidays are handled by
	// the absence of records, not by calendar arithmetic.
	GetLatestBefore(ctx context.Context, ts time.Time) (*model.AnalysisRecord, error)

	// GetRange returns all records whose date falls in [start, end]
	// (YYYY-MM-DD, inclusive), ordered by timestamp ascending.
	GetRange(ctx context.Context, start, end string) ([]model.AnalysisRecord, error)

	// Migrate bulk-imports external records. Records already present by
	// timestamp are skipped, never overwritten; the call is idempotent.
	Migrate(ctx context.Context, records []model.AnalysisRecord) (MigrationResult, error)
}
