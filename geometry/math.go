package geometry

import "math"

// Epsilon is the tolerance used when comparing model-space coordinates.
const Epsilon = 1e-9

// Clamp limits v to the closed interval [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NearlyEqual reports whether a and b differ by at most tol.
func NearlyEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// Angle returns the direction from a to b in radians, measured with the
// y-down convention used by the canvas.
func Angle(from, to Point) float64 {
	return to.Curve().Sub(from.Curve()).Angle()
}

// Polar returns the point at distance r from center in direction theta.
func Polar(center Point, r, theta float64) Point {
	return center.Add(Point{X: r * math.Cos(theta), Y: r * math.Sin(theta)})
}

// IsHorizontal returns true if the segment from a to b is more horizontal than vertical.
func IsHorizontal(a, b Point) bool {
	return math.Abs(b.X-a.X) > math.Abs(b.Y-a.Y)
}
