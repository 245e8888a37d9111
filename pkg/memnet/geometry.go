package memnet

import (
	"fmt"

	"github.com/riversys/hydroline/pkg/geom"
	"github.com/riversys/hydroline/pkg/hydro"
)

// endpointKey quantizes a coordinate so edge endpoints that should touch
// compare equal despite floating-point noise.
func (n *Network) endpointKey(p geom.Point) string {
	q := n.locateTol
	if q <= 0 {
		q = DefaultLocateTolerance
	}
	return fmt.Sprintf("%.0f:%.0f", p.X/q, p.Y/q)
}

// Dissolve merges connected edge geometries into as few line parts as
// possible. Chains break at junctions where more than two edges meet, so a
// braided channel dissolves into one part per branch.
func (n *Network) Dissolve(edges []hydro.Edge) ([]geom.Polyline, error) {
	parts := make([]geom.Polyline, 0, len(edges))
	for _, e := range edges {
		if len(e.Geometry) < 2 {
			return nil, fmt.Errorf("dissolve: edge %d has degenerate geometry", e.ID)
		}
		parts = append(parts, e.Geometry.Clone())
	}

	for {
		merged, changed := n.mergeOnce(parts)
		if !changed {
			for i, part := range merged {
				merged[i] = canonical(part)
			}
			return merged, nil
		}
		parts = merged
	}
}

// canonical orients a part so the lexicographically smaller endpoint comes
// first. Merge order must not leak into the output vertex direction.
func canonical(part geom.Polyline) geom.Polyline {
	s, e := part.Start(), part.End()
	if e.X < s.X || (e.X == s.X && e.Y < s.Y) {
		return part.Reverse()
	}
	return part
}

// mergeOnce joins the first pair of parts that meet end-to-end at a point
// shared by exactly two part ends.
func (n *Network) mergeOnce(parts []geom.Polyline) ([]geom.Polyline, bool) {
	degree := make(map[string]int)
	for _, part := range parts {
		degree[n.endpointKey(part.Start())]++
		degree[n.endpointKey(part.End())]++
	}

	for i := 0; i < len(parts); i++ {
		for j := i + 1; j < len(parts); j++ {
			joined, ok := n.join(parts[i], parts[j], degree)
			if !ok {
				continue
			}
			out := make([]geom.Polyline, 0, len(parts)-1)
			out = append(out, joined)
			for k, part := range parts {
				if k != i && k != j {
					out = append(out, part)
				}
			}
			return out, true
		}
	}
	return parts, false
}

// join concatenates two parts sharing a degree-two endpoint, reorienting as
// needed.
func (n *Network) join(a, b geom.Polyline, degree map[string]int) (geom.Polyline, bool) {
	candidates := []struct {
		left, right geom.Polyline
	}{
		{a, b},
		{a, b.Reverse()},
		{a.Reverse(), b},
		{a.Reverse(), b.Reverse()},
	}
	for _, c := range candidates {
		key := n.endpointKey(c.left.End())
		if key != n.endpointKey(c.right.Start()) {
			continue
		}
		if degree[key] != 2 {
			return nil, false
		}
		out := make(geom.Polyline, 0, len(c.left)+len(c.right)-1)
		out = append(out, c.left...)
		out = append(out, c.right[1:]...)
		return out, true
	}
	return nil, false
}

// SplitAt divides the part nearest to p at that point. Other parts pass
// through unchanged.
func (n *Network) SplitAt(parts []geom.Polyline, p geom.Point) ([]geom.Polyline, error) {
	nearest := -1
	nearestDist := -1.0
	for i, part := range parts {
		d := part.DistanceTo(p)
		if d < 0 {
			continue
		}
		if nearestDist < 0 || d < nearestDist {
			nearest = i
			nearestDist = d
		}
	}
	if nearest < 0 {
		return nil, fmt.Errorf("split: no parts to split")
	}

	out := make([]geom.Polyline, 0, len(parts)+1)
	for i, part := range parts {
		if i == nearest {
			out = append(out, part.SplitAt(p, n.locateTol)...)
		} else {
			out = append(out, part)
		}
	}
	return out, nil
}

// Trim discards dangling parts: parts with a free endpoint that is neither
// shared with another part nor one of the bounding points. Pruning repeats
// until stable, since removing an outer dangle can expose a new one.
func (n *Network) Trim(parts []geom.Polyline, bounds ...geom.Point) ([]geom.Polyline, error) {
	bounded := make(map[string]bool, len(bounds))
	for _, b := range bounds {
		bounded[n.endpointKey(b)] = true
	}

	kept := parts
	for {
		degree := make(map[string]int)
		for _, part := range kept {
			degree[n.endpointKey(part.Start())]++
			degree[n.endpointKey(part.End())]++
		}

		next := kept[:0:0]
		for _, part := range kept {
			if n.dangles(part.Start(), degree, bounded) || n.dangles(part.End(), degree, bounded) {
				continue
			}
			next = append(next, part)
		}

		if len(next) == len(kept) {
			return next, nil
		}
		kept = next
	}
}

func (n *Network) dangles(p geom.Point, degree map[string]int, bounded map[string]bool) bool {
	key := n.endpointKey(p)
	return degree[key] == 1 && !bounded[key]
}
