package geom

// Polyline is an ordered sequence of vertices describing a line feature.
// A polyline with fewer than two vertices is degenerate and has zero length.
type Polyline []Point

// Length returns the total euclidean length of the polyline.
func (l Polyline) Length() float64 {
	total := 0.0
	for i := 1; i < len(l); i++ {
		total += l[i-1].Dist(l[i])
	}
	return total
}

// Start returns the first vertex. Panics on an empty polyline.
func (l Polyline) Start() Point {
	return l[0]
}

// End returns the last vertex. Panics on an empty polyline.
func (l Polyline) End() Point {
	return l[len(l)-1]
}

// Clone returns a deep copy of the polyline.
func (l Polyline) Clone() Polyline {
	out := make(Polyline, len(l))
	copy(out, l)
	return out
}

// Reverse returns a copy of the polyline with vertex order inverted.
func (l Polyline) Reverse() Polyline {
	out := make(Polyline, len(l))
	for i, p := range l {
		out[len(l)-1-i] = p
	}
	return out
}

// TotalLength sums the lengths of multiple polyline parts.
func TotalLength(parts []Polyline) float64 {
	total := 0.0
	for _, part := range parts {
		total += part.Length()
	}
	return total
}
