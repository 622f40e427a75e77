// Package geometry contains the position and size value types used throughout
// the mindflow engine, plus the pure helpers for centers and bounds.
package geometry

import (
	"fmt"

	"honnef.co/go/curve"
)

// Point is a position in model space. Node positions are top-left corners.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Pt returns the point (x, y).
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// String returns the point formatted as (x, y).
func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the component-wise difference p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale multiplies both components by f.
func (p Point) Scale(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

// Div divides both components by f.
func (p Point) Div(f float64) Point {
	return Point{X: p.X / f, Y: p.Y / f}
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return p.Curve().Distance(q.Curve())
}

// Curve converts p to a curve.Point.
func (p Point) Curve() curve.Point {
	return curve.Pt(p.X, p.Y)
}

// FromCurve converts a curve.Point back to a Point.
func FromCurve(cp curve.Point) Point {
	return Point{X: cp.X, Y: cp.Y}
}

// Size is a width/height pair. Sizes are never negative once clamped.
type Size struct {
	W float64 `json:"w" yaml:"w"`
	H float64 `json:"h" yaml:"h"`
}

// Sz returns the size (w, h).
func Sz(w, h float64) Size {
	return Size{W: w, H: h}
}

// Clamp returns the size with negative components replaced by zero.
func (s Size) Clamp() Size {
	return Size{W: max(s.W, 0), H: max(s.H, 0)}
}

// AtLeast returns the size with each component raised to the given floor.
func (s Size) AtLeast(minW, minH float64) Size {
	return Size{W: max(s.W, minW), H: max(s.H, minH)}
}

// Curve converts s to a curve.Size.
func (s Size) Curve() curve.Size {
	return curve.Sz(s.W, s.H)
}

// Bounds returns the rectangle covered by an element at pos with size.
func Bounds(pos Point, size Size) curve.Rect {
	return curve.NewRectFromOrigin(pos.Curve(), size.Curve())
}

// Center returns the center of an element at pos with size.
func Center(pos Point, size Size) Point {
	return Point{X: pos.X + size.W/2, Y: pos.Y + size.H/2}
}

// TopLeftFor returns the top-left position that centers an element of size
// on center.
func TopLeftFor(center Point, size Size) Point {
	return Point{X: center.X - size.W/2, Y: center.Y - size.H/2}
}

// TopCenter returns the midpoint of the element's top edge.
func TopCenter(pos Point, size Size) Point {
	return Point{X: pos.X + size.W/2, Y: pos.Y}
}

// BottomCenter returns the midpoint of the element's bottom edge.
func BottomCenter(pos Point, size Size) Point {
	return Point{X: pos.X + size.W/2, Y: pos.Y + size.H}
}

// RightMiddle returns the midpoint of the element's right edge.
func RightMiddle(pos Point, size Size) Point {
	return Point{X: pos.X + size.W, Y: pos.Y + size.H/2}
}

// LeftMiddle returns the midpoint of the element's left edge.
func LeftMiddle(pos Point, size Size) Point {
	return Point{X: pos.X, Y: pos.Y + size.H/2}
}
