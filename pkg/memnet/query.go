package memnet

import (
	"context"

	"github.com/riversys/hydroline/pkg/geom"
	"github.com/riversys/hydroline/pkg/hydro"
)

// EdgesNear returns every edge whose geometry lies within tolerance of the
// point. An empty result is normal.
func (n *Network) EdgesNear(ctx context.Context, p geom.Point, tolerance float64) ([]hydro.Edge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []hydro.Edge
	for _, e := range n.edges {
		if d := e.Geometry.DistanceTo(p); d >= 0 && d <= tolerance {
			out = append(out, e)
		}
	}
	return out, nil
}

// locate returns the edge nearest to p within the locate tolerance.
func (n *Network) locate(p geom.Point) (hydro.Edge, bool) {
	var (
		best     hydro.Edge
		bestDist = -1.0
	)
	for _, e := range n.edges {
		d := e.Geometry.DistanceTo(p)
		if d < 0 || d > n.locateTol {
			continue
		}
		if bestDist < 0 || d < bestDist {
			best = e
			bestDist = d
		}
	}
	return best, bestDist >= 0
}

// Snap moves each point onto the nearest candidate edge when within
// tolerance. Points beyond tolerance of every edge are returned unchanged
// with a false flag.
func (n *Network) Snap(points []geom.Point, edges []hydro.Edge, tolerance float64) ([]geom.Point, []bool, error) {
	snapped := make([]geom.Point, len(points))
	ok := make([]bool, len(points))

	for i, p := range points {
		snapped[i] = p

		var (
			best     geom.Point
			bestDist = -1.0
		)
		for _, e := range edges {
			loc, valid := e.Geometry.Nearest(p)
			if !valid {
				continue
			}
			if loc.Distance <= tolerance && (bestDist < 0 || loc.Distance < bestDist) {
				best = loc.Point
				bestDist = loc.Distance
			}
		}
		if bestDist >= 0 {
			snapped[i] = best
			ok[i] = true
		}
	}
	return snapped, ok, nil
}
