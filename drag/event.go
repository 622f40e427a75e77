// Package drag implements the pointer-drag state machine shared by every
// draggable element: nodes, the supporting panel, resize handles and the
// canvas itself.
package drag

import (
	"sync"

	"mindflow/geometry"
)

// PointerKind tells mouse events from touch events.
type PointerKind int

const (
	Mouse PointerKind = iota
	Touch
)

// Button identifies a mouse button. Touch events always report Primary.
type Button int

const (
	Primary Button = iota
	Secondary
	Middle
)

// PointerEvent is one pointer sample in screen coordinates.
type PointerEvent struct {
	Kind   PointerKind
	Button Button
	// Touches is the number of touch points currently down.
	Touches int
	Pos     geometry.Point
}

// MouseAt returns a primary-button mouse event at (x, y).
func MouseAt(x, y float64) PointerEvent {
	return PointerEvent{Kind: Mouse, Button: Primary, Pos: geometry.Pt(x, y)}
}

// TouchAt returns a single-touch event at (x, y).
func TouchAt(x, y float64) PointerEvent {
	return PointerEvent{Kind: Touch, Touches: 1, Pos: geometry.Pt(x, y)}
}

// Listener receives window-level move and release events.
type Listener struct {
	Move func(PointerEvent)
	Up   func(PointerEvent)
}

// Window is the host that delivers pointer events while a drag is active.
// Attach registers l and returns the function that removes it again.
type Window interface {
	Attach(l Listener) (release func())
}

// Dispatcher is a Window that fans events out to the attached listeners.
// Hosts feed it raw events; it is safe for concurrent use. Listeners are
// called in the order they were attached.
type Dispatcher struct {
	mu        sync.Mutex
	nextID    int
	listeners []attached
}

type attached struct {
	id int
	l  Listener
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Attach implements Window.
func (d *Dispatcher) Attach(l Listener) func() {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.nextID
	d.nextID++
	d.listeners = append(d.listeners, attached{id: id, l: l})

	var once sync.Once
	return func() {
		once.Do(func() { d.detach(id) })
	}
}

func (d *Dispatcher) detach(id int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, a := range d.listeners {
		if a.id == id {
			d.listeners = append(d.listeners[:i:i], d.listeners[i+1:]...)
			return
		}
	}
}

// Len returns the number of attached listeners.
func (d *Dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners)
}

// Move delivers a move event to every listener.
func (d *Dispatcher) Move(ev PointerEvent) {
	for _, l := range d.snapshot() {
		if l.Move != nil {
			l.Move(ev)
		}
	}
}

// Up delivers a release event to every listener.
func (d *Dispatcher) Up(ev PointerEvent) {
	for _, l := range d.snapshot() {
		if l.Up != nil {
			l.Up(ev)
		}
	}
}

// snapshot copies the listeners so handlers may release themselves while
// being called.
func (d *Dispatcher) snapshot() []Listener {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Listener, 0, len(d.listeners))
	for _, a := range d.listeners {
		out = append(out, a.l)
	}
	return out
}
