package hydro

import (
	"context"

	"github.com/riversys/hydroline/pkg/geom"
)

// TraceMode selects the path-trace semantics.
type TraceMode uint8

const (
	// TraceFindPath returns the connected edge set joining two points along
	// the network regardless of flow direction. It may include extraneous
	// braided branches that also connect the same two points via a
	// different channel.
	TraceFindPath TraceMode = iota
	// TraceDownstream returns the edges reachable following assigned flow
	// from the start point.
	TraceDownstream
)

// Network is the capability interface over the hydrographic network and its
// geometry engine. Implementations are read-only for the duration of a run
// and safe for concurrent use.
//
// A network that cannot reach its engine or data source returns an error
// wrapping ErrNetworkUnavailable; an empty result is not an error.
type Network interface {
	// EdgesNear returns the edges whose geometry lies within tolerance of
	// the point. An empty result is normal, not a failure.
	EdgesNear(ctx context.Context, p geom.Point, tolerance float64) ([]Edge, error)

	// TraceUpstream returns the edge set reachable by walking against flow
	// direction from the point.
	TraceUpstream(ctx context.Context, p geom.Point) (EdgeSet, error)

	// TracePath returns the edge set connecting the two points per mode.
	TracePath(ctx context.Context, from, to geom.Point, mode TraceMode) (EdgeSet, error)

	// Dissolve merges connected edges into as few line parts as possible.
	Dissolve(edges []Edge) ([]geom.Polyline, error)

	// SplitAt divides line parts at the given point, producing separate
	// parts on either side of it.
	SplitAt(parts []geom.Polyline, p geom.Point) ([]geom.Polyline, error)

	// Trim discards the dangling parts outside the two bounding points,
	// keeping only the segment(s) between them.
	Trim(parts []geom.Polyline, bounds ...geom.Point) ([]geom.Polyline, error)

	// Snap moves each point onto the nearest edge if within tolerance.
	// The returned booleans report which points snapped.
	Snap(points []geom.Point, edges []Edge, tolerance float64) ([]geom.Point, []bool, error)
}
