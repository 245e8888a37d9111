package hydro

import (
	"context"
	"sync"

	"github.com/riversys/hydroline/pkg/geom"
)

// fakeNetwork scripts the Network interface per test and records which
// operations ran, so short-circuit behavior can be asserted. Unscripted
// operations fall back to a single straight edge from (0,0) to (10,0) that
// validates any access pair placed on it.
type fakeNetwork struct {
	mu    sync.Mutex
	calls []string

	edgesNear     func(p geom.Point, tolerance float64) ([]Edge, error)
	traceUpstream func(p geom.Point) (EdgeSet, error)
	tracePath     func(from, to geom.Point, mode TraceMode) (EdgeSet, error)
	dissolve      func(edges []Edge) ([]geom.Polyline, error)
	splitAt       func(parts []geom.Polyline, p geom.Point) ([]geom.Polyline, error)
	trim          func(parts []geom.Polyline, bounds ...geom.Point) ([]geom.Polyline, error)
	snap          func(points []geom.Point, edges []Edge, tolerance float64) ([]geom.Point, []bool, error)
}

func fakeEdge() Edge {
	return Edge{ID: 1, Geometry: geom.Polyline{{X: 0, Y: 0}, {X: 10, Y: 0}}}
}

func (n *fakeNetwork) record(op string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, op)
}

func (n *fakeNetwork) called(op string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, c := range n.calls {
		if c == op {
			return true
		}
	}
	return false
}

func (n *fakeNetwork) EdgesNear(_ context.Context, p geom.Point, tolerance float64) ([]Edge, error) {
	n.record("EdgesNear")
	if n.edgesNear != nil {
		return n.edgesNear(p, tolerance)
	}
	return []Edge{fakeEdge()}, nil
}

func (n *fakeNetwork) TraceUpstream(_ context.Context, p geom.Point) (EdgeSet, error) {
	n.record("TraceUpstream")
	if n.traceUpstream != nil {
		return n.traceUpstream(p)
	}
	return NewEdgeSet([]Edge{fakeEdge()}), nil
}

func (n *fakeNetwork) TracePath(_ context.Context, from, to geom.Point, mode TraceMode) (EdgeSet, error) {
	n.record("TracePath")
	if n.tracePath != nil {
		return n.tracePath(from, to, mode)
	}
	return NewEdgeSet([]Edge{fakeEdge()}), nil
}

func (n *fakeNetwork) Dissolve(edges []Edge) ([]geom.Polyline, error) {
	n.record("Dissolve")
	if n.dissolve != nil {
		return n.dissolve(edges)
	}
	out := make([]geom.Polyline, 0, len(edges))
	for _, e := range edges {
		out = append(out, e.Geometry.Clone())
	}
	return out, nil
}

func (n *fakeNetwork) SplitAt(parts []geom.Polyline, p geom.Point) ([]geom.Polyline, error) {
	n.record("SplitAt")
	if n.splitAt != nil {
		return n.splitAt(parts, p)
	}
	return parts, nil
}

func (n *fakeNetwork) Trim(parts []geom.Polyline, bounds ...geom.Point) ([]geom.Polyline, error) {
	n.record("Trim")
	if n.trim != nil {
		return n.trim(parts, bounds...)
	}
	return parts, nil
}

func (n *fakeNetwork) Snap(points []geom.Point, edges []Edge, tolerance float64) ([]geom.Point, []bool, error) {
	n.record("Snap")
	if n.snap != nil {
		return n.snap(points, edges, tolerance)
	}
	ok := make([]bool, len(points))
	for i := range ok {
		ok[i] = true
	}
	return points, ok, nil
}

// mapSource is an in-memory AccessSource.
type mapSource struct {
	ids     []string
	records map[string][]AccessRecord
	idsErr  error
}

func (s *mapSource) ReachIDs(context.Context) ([]string, error) {
	if s.idsErr != nil {
		return nil, s.idsErr
	}
	return s.ids, nil
}

func (s *mapSource) Records(_ context.Context, reachID string) ([]AccessRecord, error) {
	return s.records[reachID], nil
}

// pairedSource returns a source holding one well-formed put-in/take-out pair
// per given reach id, placed on the fake network's default edge.
func pairedSource(reachIDs ...string) *mapSource {
	src := &mapSource{ids: reachIDs, records: make(map[string][]AccessRecord)}
	for _, id := range reachIDs {
		src.records[id] = []AccessRecord{
			{ReachID: id, Role: "putin", Geometry: geom.Point{X: 1, Y: 0}},
			{ReachID: id, Role: "takeout", Geometry: geom.Point{X: 9, Y: 0}},
		}
	}
	return src
}

// fakeHydrolineSink is a map-backed HydrolineSink with fail hooks.
type fakeHydrolineSink struct {
	mu       sync.Mutex
	records  map[string]HydrolineRecord
	manual   map[string]bool
	writeErr error
}

func newFakeHydrolineSink() *fakeHydrolineSink {
	return &fakeHydrolineSink{
		records: make(map[string]HydrolineRecord),
		manual:  make(map[string]bool),
	}
}

func (s *fakeHydrolineSink) Write(_ context.Context, rec HydrolineRecord) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ReachID] = rec
	return nil
}

func (s *fakeHydrolineSink) Contains(_ context.Context, reachID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[reachID]
	return ok || s.manual[reachID], nil
}

func (s *fakeHydrolineSink) ManuallyDigitized(_ context.Context, reachID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manual[reachID], nil
}

// fakeInvalidSink is a map-backed InvalidSink.
type fakeInvalidSink struct {
	mu      sync.Mutex
	records map[string]InvalidRecord
	removed []string
}

func newFakeInvalidSink() *fakeInvalidSink {
	return &fakeInvalidSink{records: make(map[string]InvalidRecord)}
}

func (s *fakeInvalidSink) Write(_ context.Context, rec InvalidRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ReachID] = rec
	return nil
}

func (s *fakeInvalidSink) Remove(_ context.Context, reachID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, reachID)
	s.removed = append(s.removed, reachID)
	return nil
}

func (s *fakeInvalidSink) ReachIDs(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.records))
	for id := range s.records {
		out = append(out, id)
	}
	return out, nil
}
