package geom

import (
	"fmt"
	"math"
)

// Point is a 2D coordinate in the network's projected coordinate system.
type Point struct {
	X float64
	Y float64
}

// Dist returns the euclidean distance to another point.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Equal reports whether two points coincide within eps.
func (p Point) Equal(q Point, eps float64) bool {
	return p.Dist(q) <= eps
}

// Midpoint returns the point halfway between p and q.
func (p Point) Midpoint(q Point) Point {
	return Point{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2}
}

// WKT renders the point as a well-known-text POINT.
func (p Point) WKT() string {
	return fmt.Sprintf("POINT (%s %s)", formatCoord(p.X), formatCoord(p.Y))
}
