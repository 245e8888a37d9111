package geom

// Location describes the nearest position on a polyline to a query point.
type Location struct {
	Point    Point   // the position on the line
	Distance float64 // euclidean distance from the query point
	Segment  int     // index of the segment containing the position
	Measure  float64 // distance along the line from its start
}

// nearestOnSegment projects p onto the segment a-b, clamped to its ends.
func nearestOnSegment(p, a, b Point) Point {
	dx := b.X - a.X
	dy := b.Y - a.Y
	segLenSq := dx*dx + dy*dy
	if segLenSq == 0 {
		return a
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / segLenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return Point{X: a.X + t*dx, Y: a.Y + t*dy}
}

// Nearest returns the closest location on the polyline to p.
// The second return value is false for a degenerate polyline.
func (l Polyline) Nearest(p Point) (Location, bool) {
	if len(l) < 2 {
		return Location{}, false
	}

	best := Location{Distance: -1}
	measure := 0.0

	for i := 1; i < len(l); i++ {
		candidate := nearestOnSegment(p, l[i-1], l[i])
		d := p.Dist(candidate)
		if best.Distance < 0 || d < best.Distance {
			best = Location{
				Point:    candidate,
				Distance: d,
				Segment:  i - 1,
				Measure:  measure + l[i-1].Dist(candidate),
			}
		}
		measure += l[i-1].Dist(l[i])
	}

	return best, true
}

// DistanceTo returns the shortest euclidean distance from p to the polyline.
func (l Polyline) DistanceTo(p Point) float64 {
	loc, ok := l.Nearest(p)
	if !ok {
		return -1
	}
	return loc.Distance
}

// SplitAt divides the polyline at the location nearest to p, inserting the
// split position as a vertex in both halves. If the split position coincides
// with an endpoint the polyline is returned unchanged as a single part.
func (l Polyline) SplitAt(p Point, eps float64) []Polyline {
	loc, ok := l.Nearest(p)
	if !ok {
		return []Polyline{l.Clone()}
	}
	if loc.Point.Equal(l.Start(), eps) || loc.Point.Equal(l.End(), eps) {
		return []Polyline{l.Clone()}
	}

	first := make(Polyline, 0, loc.Segment+2)
	first = append(first, l[:loc.Segment+1]...)
	if !loc.Point.Equal(first[len(first)-1], eps) {
		first = append(first, loc.Point)
	}

	second := make(Polyline, 0, len(l)-loc.Segment)
	second = append(second, loc.Point)
	for _, v := range l[loc.Segment+1:] {
		if !v.Equal(loc.Point, eps) || len(second) > 1 {
			second = append(second, v)
		}
	}

	if len(first) < 2 || len(second) < 2 {
		return []Polyline{l.Clone()}
	}
	return []Polyline{first, second}
}
