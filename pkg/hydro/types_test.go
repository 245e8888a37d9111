package hydro

import (
	"testing"

	"github.com/riversys/hydroline/pkg/geom"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in     string
		want   Role
		wantOK bool
	}{
		{"putin", RolePutIn, true},
		{"takeout", RoleTakeOut, true},
		{"intermediate", RoleIntermediate, true},
		{"PutIn", 0, false},
		{"portage", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseRole(tt.in)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("ParseRole(%q) = %v, %v", tt.in, got, ok)
		}
	}
}

func TestUpstreamDownstreamNodes(t *testing.T) {
	with := Edge{FromNode: 1, ToNode: 2, Flow: FlowWithDigitized}
	against := Edge{FromNode: 1, ToNode: 2, Flow: FlowAgainstDigitized}

	if with.UpstreamNode() != 1 || with.DownstreamNode() != 2 {
		t.Error("flow with digitized direction must run FromNode -> ToNode")
	}
	if against.UpstreamNode() != 2 || against.DownstreamNode() != 1 {
		t.Error("flow against digitized direction must run ToNode -> FromNode")
	}
}

func TestDiagnosticPoint(t *testing.T) {
	putIn := &AccessPoint{Geometry: geom.Point{X: 0, Y: 0}}
	takeOut := &AccessPoint{Geometry: geom.Point{X: 4, Y: 2}}

	tests := []struct {
		name  string
		reach Reach
		want  *geom.Point
	}{
		{"both accesses", Reach{PutIn: putIn, TakeOut: takeOut}, &geom.Point{X: 2, Y: 1}},
		{"put-in only", Reach{PutIn: putIn}, &geom.Point{X: 0, Y: 0}},
		{"take-out only", Reach{TakeOut: takeOut}, &geom.Point{X: 4, Y: 2}},
		{"no accesses", Reach{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.reach.DiagnosticPoint()
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("DiagnosticPoint() = %v, want %v", got, tt.want)
			}
			if got != nil && !got.Equal(*tt.want, 1e-9) {
				t.Errorf("DiagnosticPoint() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEdgeSetContainsPoint(t *testing.T) {
	set := NewEdgeSet([]Edge{
		{ID: 1, Geometry: geom.Polyline{{X: 0, Y: 0}, {X: 10, Y: 0}}},
	})

	if !set.ContainsPoint(geom.Point{X: 5, Y: 0.4}, 0.5) {
		t.Error("point within tolerance not found")
	}
	if set.ContainsPoint(geom.Point{X: 5, Y: 2}, 0.5) {
		t.Error("distant point reported on the set")
	}
	if (EdgeSet{}).ContainsPoint(geom.Point{}, 1) {
		t.Error("empty set cannot contain a point")
	}
}

func TestEdgeSetIntersect(t *testing.T) {
	a := NewEdgeSet([]Edge{{ID: 1}, {ID: 2}, {ID: 3}})
	b := NewEdgeSet([]Edge{{ID: 2}, {ID: 3}, {ID: 4}})

	got := a.Intersect(b)
	if len(got) != 2 || !got.Contains(2) || !got.Contains(3) {
		t.Errorf("Intersect = %v", got)
	}
}

func TestEdgeSetEdgesOrderedByID(t *testing.T) {
	set := NewEdgeSet([]Edge{{ID: 7}, {ID: 2}, {ID: 5}, {ID: 1}})

	for run := 0; run < 20; run++ {
		edges := set.Edges()
		for i, want := range []EdgeID{1, 2, 5, 7} {
			if edges[i].ID != want {
				t.Fatalf("Edges()[%d].ID = %d, want %d", i, edges[i].ID, want)
			}
		}
	}
}
