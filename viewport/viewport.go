// Package viewport holds the pan and zoom state of the canvas. It is UI
// state only and never part of the diagram history.
package viewport

import (
	"honnef.co/go/curve"

	"mindflow/drag"
	"mindflow/geometry"
)

// Zoom bounds.
const (
	MinZoom = 0.2
	MaxZoom = 3.0
)

// Viewport maps model coordinates to screen coordinates:
//
//	screen = (model + Pan) * Zoom
//	model  = screen / Zoom - Pan
type Viewport struct {
	Zoom float64
	Pan  geometry.Point

	pinch *pinch
}

// pinch is the state of one two-finger gesture.
type pinch struct {
	startDist float64
	startZoom float64
	startPan  geometry.Point
	focal     geometry.Point
}

// New returns a viewport at zoom 1 with no pan.
func New() *Viewport {
	return &Viewport{Zoom: 1}
}

// ClampZoom limits z to [MinZoom, MaxZoom].
func ClampZoom(z float64) float64 {
	return geometry.Clamp(z, MinZoom, MaxZoom)
}

// SetZoom sets the zoom, clamped to its bounds.
func (v *Viewport) SetZoom(z float64) {
	v.Zoom = ClampZoom(z)
}

// SetPan sets the pan offset.
func (v *Viewport) SetPan(p geometry.Point) {
	v.Pan = p
}

// PanBy shifts the view by a screen-space delta.
func (v *Viewport) PanBy(screenDelta geometry.Point) {
	v.Pan = v.Pan.Add(screenDelta.Div(v.zoom()))
}

// ZoomAt changes the zoom while keeping the model point under the screen
// point focal fixed.
func (v *Viewport) ZoomAt(z float64, focal geometry.Point) {
	startZoom, startPan := v.zoom(), v.Pan
	v.PinchUpdate(z, focal, startZoom, startPan)
}

// PinchPan returns the pan that keeps the model point under focal invariant
// when zooming from startZoom to newZoom.
func PinchPan(newZoom float64, focal geometry.Point, startZoom float64, startPan geometry.Point) geometry.Point {
	return startPan.Add(focal.Scale(1/newZoom - 1/startZoom))
}

// PinchUpdate clamps newZoom and recomputes the pan around focal.
func (v *Viewport) PinchUpdate(newZoom float64, focal geometry.Point, startZoom float64, startPan geometry.Point) {
	z := ClampZoom(newZoom)
	v.Zoom = z
	v.Pan = PinchPan(z, focal, startZoom, startPan)
}

// TouchStart begins a pinch when exactly two touches are down.
func (v *Viewport) TouchStart(touches []geometry.Point) bool {
	if len(touches) != 2 {
		return false
	}
	dist := touches[0].Distance(touches[1])
	if dist == 0 {
		return false
	}
	v.pinch = &pinch{
		startDist: dist,
		startZoom: v.zoom(),
		startPan:  v.Pan,
		focal:     midpoint(touches[0], touches[1]),
	}
	return true
}

// TouchMove updates an active pinch. Moves with any other number of
// touches are ignored.
func (v *Viewport) TouchMove(touches []geometry.Point) {
	p := v.pinch
	if p == nil || len(touches) != 2 {
		return
	}
	scale := touches[0].Distance(touches[1]) / p.startDist
	v.PinchUpdate(p.startZoom*scale, p.focal, p.startZoom, p.startPan)
}

// TouchEnd ends the pinch once fewer than two touches remain.
func (v *Viewport) TouchEnd(remaining int) {
	if remaining < 2 {
		v.pinch = nil
	}
}

// Pinching reports whether a pinch gesture is active.
func (v *Viewport) Pinching() bool {
	return v.pinch != nil
}

// VisibleRegion returns the model-space rectangle shown in a pixelW x
// pixelH area.
func (v *Viewport) VisibleRegion(pixelW, pixelH float64) curve.Rect {
	z := v.zoom()
	origin := v.Pan.Scale(-1)
	return geometry.Bounds(origin, geometry.Sz(pixelW/z, pixelH/z))
}

// ScreenToModel converts a screen point to model space.
func (v *Viewport) ScreenToModel(p geometry.Point) geometry.Point {
	return p.Div(v.zoom()).Sub(v.Pan)
}

// ModelToScreen converts a model point to screen space.
func (v *Viewport) ModelToScreen(p geometry.Point) geometry.Point {
	return p.Add(v.Pan).Scale(v.zoom())
}

// Transform returns the model-to-screen affine transform.
func (v *Viewport) Transform() curve.Affine {
	z := v.zoom()
	return curve.Translate(curve.Vec(v.Pan.X, v.Pan.Y)).ThenScale(z, z)
}

// CanvasDrag returns a drag controller that pans the view. The pan is the
// dragged position and the zoom is the scale, so the content follows the
// pointer exactly.
func (v *Viewport) CanvasDrag(w drag.Window, onCommit func(geometry.Point)) *drag.Controller {
	return drag.NewController(drag.Options{
		Position: func() geometry.Point { return v.Pan },
		Scale:    v.zoom,
		OnLive:   v.SetPan,
		OnCommit: func(p geometry.Point) {
			v.SetPan(p)
			if onCommit != nil {
				onCommit(p)
			}
		},
		Window: w,
	})
}

func (v *Viewport) zoom() float64 {
	if v.Zoom <= 0 {
		return 1
	}
	return v.Zoom
}

func midpoint(a, b geometry.Point) geometry.Point {
	return geometry.FromCurve(a.Curve().Midpoint(b.Curve()))
}
