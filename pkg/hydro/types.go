// Package hydro validates and extracts river-reach centerline geometry from
// a flow-directed hydrographic network. Given a put-in and take-out access
// point per reach, it confirms the pair lies on the network in flow order
// and produces the trimmed centerline between them.
package hydro

import (
	"sort"

	"github.com/riversys/hydroline/pkg/geom"
)

// EdgeID identifies a stream-segment edge in the network.
type EdgeID uint64

// NodeID identifies a junction node in the network.
type NodeID uint64

// FlowDirection relates assigned flow to an edge's digitized vertex order.
// It is assigned before processing starts and never mutated here.
type FlowDirection uint8

const (
	// FlowWithDigitized means water flows from FromNode toward ToNode.
	FlowWithDigitized FlowDirection = iota
	// FlowAgainstDigitized means water flows from ToNode toward FromNode.
	FlowAgainstDigitized
)

// Edge is a stream segment in the hydrographic network.
type Edge struct {
	ID       EdgeID
	Geometry geom.Polyline
	FromNode NodeID
	ToNode   NodeID
	Flow     FlowDirection
}

// UpstreamNode returns the node water flows away from.
func (e Edge) UpstreamNode() NodeID {
	if e.Flow == FlowAgainstDigitized {
		return e.ToNode
	}
	return e.FromNode
}

// DownstreamNode returns the node water flows toward.
func (e Edge) DownstreamNode() NodeID {
	if e.Flow == FlowAgainstDigitized {
		return e.FromNode
	}
	return e.ToNode
}

// Node is a junction of edges.
type Node struct {
	ID       NodeID
	Geometry geom.Point
}

// Role classifies an access point on a reach.
type Role uint8

const (
	RolePutIn Role = iota
	RoleTakeOut
	RoleIntermediate
)

// String returns the role's wire representation.
func (r Role) String() string {
	switch r {
	case RolePutIn:
		return "putin"
	case RoleTakeOut:
		return "takeout"
	case RoleIntermediate:
		return "intermediate"
	default:
		return "unknown"
	}
}

// ParseRole maps an access record's role value to a Role. Unrecognized
// values return false and are ignored by the resolver, not treated as
// errors.
func ParseRole(s string) (Role, bool) {
	switch s {
	case "putin":
		return RolePutIn, true
	case "takeout":
		return RoleTakeOut, true
	case "intermediate":
		return RoleIntermediate, true
	default:
		return 0, false
	}
}

// AccessPoint is a put-in, take-out, or intermediate access on a reach.
type AccessPoint struct {
	ReachID    string
	Role       Role
	Geometry   geom.Point
	Provenance string
}

// ValidationState tracks a reach's progress through the pipeline.
type ValidationState uint8

const (
	StateUnvalidated ValidationState = iota
	StateHasAccessPair
	StateCoincident
	StateFlowOrdered
	StateExtracted
	StateInvalid
)

// String returns a human-readable state name.
func (s ValidationState) String() string {
	switch s {
	case StateUnvalidated:
		return "unvalidated"
	case StateHasAccessPair:
		return "has_access_pair"
	case StateCoincident:
		return "coincident"
	case StateFlowOrdered:
		return "flow_ordered"
	case StateExtracted:
		return "extracted"
	case StateInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Reach is a river segment bounded by a put-in and take-out. A Reach is
// created when first referenced by an access record and released once its
// result is flushed to a sink; it is owned exclusively by the processor
// handling its id.
type Reach struct {
	ID                string
	PutIn             *AccessPoint
	TakeOut           *AccessPoint
	Intermediates     []AccessPoint
	State             ValidationState
	Hydroline         []geom.Polyline
	Reason            ReasonCode
	Detail            string
	ManuallyDigitized bool
}

// Valid reports whether the reach reached the terminal valid state.
func (r *Reach) Valid() bool {
	return r.State == StateExtracted
}

// DiagnosticPoint returns an approximate location for mapping an invalid
// reach: the midpoint between put-in and take-out when both exist, the
// surviving access when only one does, nil otherwise.
func (r *Reach) DiagnosticPoint() *geom.Point {
	switch {
	case r.PutIn != nil && r.TakeOut != nil:
		p := r.PutIn.Geometry.Midpoint(r.TakeOut.Geometry)
		return &p
	case r.PutIn != nil:
		p := r.PutIn.Geometry
		return &p
	case r.TakeOut != nil:
		p := r.TakeOut.Geometry
		return &p
	default:
		return nil
	}
}

// ValidationResult is the outcome of a single validation stage.
type ValidationResult struct {
	Valid  bool
	Reason ReasonCode
	Detail string
}

// EdgeSet is a set of network edges keyed by id, as returned by trace
// operations.
type EdgeSet map[EdgeID]Edge

// NewEdgeSet builds an EdgeSet from a list of edges.
func NewEdgeSet(edges []Edge) EdgeSet {
	set := make(EdgeSet, len(edges))
	for _, e := range edges {
		set[e.ID] = e
	}
	return set
}

// Contains reports whether the set holds the given edge id.
func (s EdgeSet) Contains(id EdgeID) bool {
	_, ok := s[id]
	return ok
}

// Intersect returns the edges present in both sets.
func (s EdgeSet) Intersect(other EdgeSet) EdgeSet {
	out := make(EdgeSet)
	for id, e := range s {
		if other.Contains(id) {
			out[id] = e
		}
	}
	return out
}

// Edges returns the set's edges as a slice ordered by id. Downstream
// geometry operations must see the same edge order on every run.
func (s EdgeSet) Edges() []Edge {
	out := make([]Edge, 0, len(s))
	for _, e := range s {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ContainsPoint reports whether the point lies on any edge in the set
// within tolerance.
func (s EdgeSet) ContainsPoint(p geom.Point, tolerance float64) bool {
	for _, e := range s {
		if d := e.Geometry.DistanceTo(p); d >= 0 && d <= tolerance {
			return true
		}
	}
	return false
}
