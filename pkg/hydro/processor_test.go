package hydro

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/riversys/hydroline/pkg/geom"
)

func testConfig() Config {
	return Config{SnapTolerance: 0.5, Workers: 1, ChunkSize: 1}
}

func TestProcessValidReach(t *testing.T) {
	net := &fakeNetwork{}
	proc := NewReachProcessor(net, pairedSource("00042"), newFakeHydrolineSink(), testConfig(), nil)

	reach, err := proc.Process(context.Background(), "00042")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !reach.Valid() {
		t.Fatalf("state = %v, reason = %s (%s)", reach.State, reach.Reason, reach.Detail)
	}
	if len(reach.Hydroline) == 0 {
		t.Error("valid reach has no hydroline geometry")
	}
}

func TestProcessSkipsManuallyDigitized(t *testing.T) {
	net := &fakeNetwork{}
	sink := newFakeHydrolineSink()
	sink.manual["00042"] = true
	proc := NewReachProcessor(net, pairedSource("00042"), sink, testConfig(), nil)

	reach, err := proc.Process(context.Background(), "00042")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !reach.ManuallyDigitized {
		t.Fatal("manual flag not set")
	}
	if reach.State != StateUnvalidated {
		t.Errorf("state = %v, want unvalidated (pipeline must not run)", reach.State)
	}
	if len(net.calls) != 0 {
		t.Errorf("network consulted for a skipped reach: %v", net.calls)
	}
}

func TestProcessMissingAccessPair(t *testing.T) {
	net := &fakeNetwork{}
	src := &mapSource{records: map[string][]AccessRecord{
		"r": {{ReachID: "r", Role: "putin", Geometry: geom.Point{X: 1, Y: 0}}},
	}}
	proc := NewReachProcessor(net, src, newFakeHydrolineSink(), testConfig(), nil)

	reach, err := proc.Process(context.Background(), "r")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if reach.State != StateInvalid || reach.Reason != ReasonMissingAccessPair {
		t.Fatalf("state = %v, reason = %s", reach.State, reach.Reason)
	}
	if len(net.calls) != 0 {
		t.Errorf("network consulted before the access pair existed: %v", net.calls)
	}
	if reach.DiagnosticPoint() == nil {
		t.Error("expected the surviving put-in as diagnostic point")
	}
}

func TestProcessDuplicateAccessPair(t *testing.T) {
	net := &fakeNetwork{}
	src := &mapSource{records: map[string][]AccessRecord{
		"r": {
			{ReachID: "r", Role: "takeout", Geometry: geom.Point{X: 8, Y: 0}},
			{ReachID: "r", Role: "takeout", Geometry: geom.Point{X: 9, Y: 0}},
		},
	}}
	proc := NewReachProcessor(net, src, newFakeHydrolineSink(), testConfig(), nil)

	reach, err := proc.Process(context.Background(), "r")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if reach.Reason != ReasonDuplicateAccessPair {
		t.Errorf("reason = %s, want %s", reach.Reason, ReasonDuplicateAccessPair)
	}
}

func TestProcessNotCoincident(t *testing.T) {
	net := &fakeNetwork{
		edgesNear: func(geom.Point, float64) ([]Edge, error) { return nil, nil },
	}
	proc := NewReachProcessor(net, pairedSource("r"), newFakeHydrolineSink(), testConfig(), nil)

	reach, err := proc.Process(context.Background(), "r")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if reach.Reason != ReasonNotCoincidentWithNetwork {
		t.Fatalf("reason = %s, want %s", reach.Reason, ReasonNotCoincidentWithNetwork)
	}
	if net.called("TraceUpstream") {
		t.Error("flow-order stage ran after coincidence failed")
	}
}

func TestProcessCoincidenceSnapsAccessGeometry(t *testing.T) {
	moved := geom.Point{X: 1.25, Y: 0}
	net := &fakeNetwork{
		snap: func(points []geom.Point, _ []Edge, _ float64) ([]geom.Point, []bool, error) {
			return []geom.Point{moved, points[1]}, []bool{true, true}, nil
		},
	}
	proc := NewReachProcessor(net, pairedSource("r"), newFakeHydrolineSink(), testConfig(), nil)

	reach, err := proc.Process(context.Background(), "r")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !reach.PutIn.Geometry.Equal(moved, 1e-9) {
		t.Errorf("put-in geometry = %v, want snapped %v", reach.PutIn.Geometry, moved)
	}
}

func TestProcessNotUpstreamOfTakeout(t *testing.T) {
	farEdge := Edge{ID: 9, Geometry: geom.Polyline{{X: 100, Y: 0}, {X: 110, Y: 0}}}
	net := &fakeNetwork{
		traceUpstream: func(geom.Point) (EdgeSet, error) {
			return NewEdgeSet([]Edge{farEdge}), nil
		},
	}
	proc := NewReachProcessor(net, pairedSource("r"), newFakeHydrolineSink(), testConfig(), nil)

	reach, err := proc.Process(context.Background(), "r")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if reach.Reason != ReasonNotUpstreamOfTakeout {
		t.Fatalf("reason = %s, want %s", reach.Reason, ReasonNotUpstreamOfTakeout)
	}
	if net.called("TracePath") {
		t.Error("extraction ran after flow-order failed")
	}
}

func TestProcessFatalNetworkError(t *testing.T) {
	net := &fakeNetwork{
		edgesNear: func(geom.Point, float64) ([]Edge, error) {
			return nil, fmt.Errorf("%w: engine unreachable", ErrNetworkUnavailable)
		},
	}
	proc := NewReachProcessor(net, pairedSource("r"), newFakeHydrolineSink(), testConfig(), nil)

	_, err := proc.Process(context.Background(), "r")
	if err == nil {
		t.Fatal("expected a fatal error")
	}
	if !IsFatal(err) {
		t.Errorf("err = %v, want fatal", err)
	}
}

func TestProcessNonFatalStageError(t *testing.T) {
	net := &fakeNetwork{
		edgesNear: func(geom.Point, float64) ([]Edge, error) {
			return nil, errors.New("transient query failure")
		},
	}
	proc := NewReachProcessor(net, pairedSource("r"), newFakeHydrolineSink(), testConfig(), nil)

	reach, err := proc.Process(context.Background(), "r")
	if err != nil {
		t.Fatalf("non-fatal stage error must not propagate, got %v", err)
	}
	if reach.Reason != ReasonUnclassifiedException {
		t.Errorf("reason = %s, want %s", reach.Reason, ReasonUnclassifiedException)
	}
}

func TestProcessRecoversFromPanic(t *testing.T) {
	net := &fakeNetwork{
		traceUpstream: func(geom.Point) (EdgeSet, error) {
			panic("index out of range in engine adapter")
		},
	}
	proc := NewReachProcessor(net, pairedSource("r"), newFakeHydrolineSink(), testConfig(), nil)

	reach, err := proc.Process(context.Background(), "r")
	if err != nil {
		t.Fatalf("panic must be contained, got error %v", err)
	}
	if reach.State != StateInvalid || reach.Reason != ReasonUnclassifiedException {
		t.Errorf("state = %v, reason = %s", reach.State, reach.Reason)
	}
}
