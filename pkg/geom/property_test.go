package geom

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// coordGen keeps coordinates in a range where float64 error stays far below
// the tolerances used by the assertions.
func coordGen() gopter.Gen {
	return gen.Float64Range(-1e4, 1e4)
}

// TestGeometryInvariants uses property-based testing to verify the geometry
// primitives the extraction pipeline is built on.
func TestGeometryInvariants(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	// Property 1: splitting a segment at any projected point preserves
	// total length.
	properties.Property("split preserves length", prop.ForAll(
		func(x1, y1, x2, y2, t float64) bool {
			line := Polyline{{X: x1, Y: y1}, {X: x2, Y: y2}}
			if line.Length() == 0 {
				return true
			}
			// Interpolate a point on the segment.
			p := Point{X: x1 + (x2-x1)*t, Y: y1 + (y2-y1)*t}
			parts := line.SplitAt(p, 1e-9)
			return math.Abs(TotalLength(parts)-line.Length()) < 1e-6
		},
		coordGen(), coordGen(), coordGen(), coordGen(),
		gen.Float64Range(0, 1),
	))

	// Property 2: the nearest point on a polyline is never farther than any
	// of its vertices.
	properties.Property("nearest beats every vertex", prop.ForAll(
		func(px, py, x1, y1, x2, y2, x3, y3 float64) bool {
			line := Polyline{{X: x1, Y: y1}, {X: x2, Y: y2}, {X: x3, Y: y3}}
			p := Point{X: px, Y: py}
			loc, ok := line.Nearest(p)
			if !ok {
				return false
			}
			for _, v := range line {
				if loc.Distance > p.Dist(v)+1e-9 {
					return false
				}
			}
			return true
		},
		coordGen(), coordGen(),
		coordGen(), coordGen(), coordGen(), coordGen(), coordGen(), coordGen(),
	))

	// Property 3: a snapped point lies on the line, so DistanceTo reports
	// (near) zero for it.
	properties.Property("projected point is on the line", prop.ForAll(
		func(px, py, x1, y1, x2, y2 float64) bool {
			line := Polyline{{X: x1, Y: y1}, {X: x2, Y: y2}}
			loc, ok := line.Nearest(Point{X: px, Y: py})
			if !ok {
				return true
			}
			d := line.DistanceTo(loc.Point)
			return d >= 0 && d < 1e-6
		},
		coordGen(), coordGen(), coordGen(), coordGen(), coordGen(), coordGen(),
	))

	// Property 4: reversing a polyline preserves length and swaps the
	// endpoints.
	properties.Property("reverse preserves length", prop.ForAll(
		func(x1, y1, x2, y2, x3, y3 float64) bool {
			line := Polyline{{X: x1, Y: y1}, {X: x2, Y: y2}, {X: x3, Y: y3}}
			rev := line.Reverse()
			return math.Abs(rev.Length()-line.Length()) < 1e-9 &&
				rev.Start() == line.End() && rev.End() == line.Start()
		},
		coordGen(), coordGen(), coordGen(), coordGen(), coordGen(), coordGen(),
	))

	properties.TestingRun(t)
}
