package hydro

import (
	"context"

	"github.com/riversys/hydroline/pkg/geom"
)

// HydrolineRecord is one row of the hydroline sink.
type HydrolineRecord struct {
	ReachID           string
	ManuallyDigitized bool
	Geometry          []geom.Polyline
	RunID             string
}

// InvalidRecord is one row of the invalid sink. Geometry is an approximate
// diagnostic location for mapping the failure, when one can be derived.
type InvalidRecord struct {
	ReachID  string
	Reason   string
	Detail   string
	Geometry *geom.Point
	RunID    string
}

// HydrolineSink receives validated reach geometry. Write replaces any
// existing record for the same reach id (delete-then-insert), so every
// reach id appears at most once. Sinks are written only by the goroutine
// that owns the batch-level result stream.
type HydrolineSink interface {
	Write(ctx context.Context, rec HydrolineRecord) error
	Contains(ctx context.Context, reachID string) (bool, error)
	// ManuallyDigitized reports whether the existing record for the reach
	// is flagged as hand-drawn and must not be overwritten.
	ManuallyDigitized(ctx context.Context, reachID string) (bool, error)
}

// InvalidSink receives failure records for review and reconciliation on a
// subsequent run. Write collapses duplicates for the same reach id.
type InvalidSink interface {
	Write(ctx context.Context, rec InvalidRecord) error
	Remove(ctx context.Context, reachID string) error
	ReachIDs(ctx context.Context) ([]string, error)
}
