package connections

import (
	"math"

	"mindflow/geometry"
)

// ArrowType represents the type of arrow to use for a connection.
type ArrowType int

const (
	// ArrowNone indicates no arrow
	ArrowNone ArrowType = iota
	// ArrowEnd indicates an arrow at the end of the connection
	ArrowEnd
)

// ArrowHead is the triangle drawn at the end of a route.
type ArrowHead struct {
	Tip, Left, Right geometry.Point
}

// Points returns the triangle corners in drawing order.
func (a ArrowHead) Points() []geometry.Point {
	return []geometry.Point{a.Tip, a.Left, a.Right}
}

// Head returns the arrowhead of r with the given length and half-angle.
// The tip sits on the route's end point and the triangle follows the end
// tangent. ok is false for routes without an arrow.
func (r Route) Head(length, halfAngle float64) (ArrowHead, bool) {
	if r.Arrow != ArrowEnd || len(r.Path) < 2 {
		return ArrowHead{}, false
	}

	var dir float64
	found := false
	for seg := range r.Path.Segments() {
		_, end := seg.Tangents()
		if end.Hypot() > 0 {
			dir = end.Angle()
			found = true
		}
	}
	if !found {
		return ArrowHead{}, false
	}

	tip := r.End()
	back := dir + math.Pi
	return ArrowHead{
		Tip:   tip,
		Left:  geometry.Polar(tip, length, back-halfAngle),
		Right: geometry.Polar(tip, length, back+halfAngle),
	}, true
}
