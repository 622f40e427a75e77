package drag

import "mindflow/geometry"

// Options configures a Controller.
type Options struct {
	// Position returns the element's position at the moment a drag starts.
	Position func() geometry.Point
	// Scale returns the current screen-to-model scale factor, usually the
	// viewport zoom. Nil or non-positive means 1.
	Scale func() float64
	// OnLive is called for every move with the element's new position.
	OnLive func(geometry.Point)
	// OnCommit is called exactly once when the pointer is released.
	OnCommit func(geometry.Point)
	// OnCancel is called when a session ends without a commit.
	OnCancel func()
	// Window delivers move and release events while a session is active.
	Window Window
}

// Session is the state of one drag, from pointer-down until release or
// cancellation.
type Session struct {
	PointerStart geometry.Point
	ElementStart geometry.Point
	Last         geometry.Point

	release func()
}

// Controller turns pointer events into live and committed positions.
type Controller struct {
	opts    Options
	session *Session
}

// NewController creates a controller.
func NewController(opts Options) *Controller {
	return &Controller{opts: opts}
}

// Active reports whether a session is in progress.
func (c *Controller) Active() bool {
	return c.session != nil
}

// Session returns the current session, or nil.
func (c *Controller) Session() *Session {
	return c.session
}

// PointerDown starts a session. Secondary mouse buttons, multi-touch and a
// down while a session is already active are ignored. It returns true when
// a session was started.
func (c *Controller) PointerDown(ev PointerEvent) bool {
	if c.session != nil {
		return false
	}
	if ev.Kind == Mouse && ev.Button != Primary {
		return false
	}
	if ev.Kind == Touch && ev.Touches > 1 {
		return false
	}

	start := geometry.Point{}
	if c.opts.Position != nil {
		start = c.opts.Position()
	}
	s := &Session{
		PointerStart: ev.Pos,
		ElementStart: start,
		Last:         start,
	}
	c.session = s

	if c.opts.Window != nil {
		s.release = c.opts.Window.Attach(Listener{
			Move: c.PointerMove,
			Up:   c.PointerUp,
		})
	}
	return true
}

// PointerMove updates the live position. A second touch point cancels the
// session without committing.
func (c *Controller) PointerMove(ev PointerEvent) {
	s := c.session
	if s == nil {
		return
	}
	if ev.Kind == Touch && ev.Touches > 1 {
		c.Cancel()
		return
	}

	delta := ev.Pos.Sub(s.PointerStart).Div(c.scale())
	s.Last = s.ElementStart.Add(delta)
	if c.opts.OnLive != nil {
		c.opts.OnLive(s.Last)
	}
}

// PointerUp commits the last live position and ends the session.
func (c *Controller) PointerUp(PointerEvent) {
	s := c.session
	if s == nil {
		return
	}
	c.end()
	if c.opts.OnCommit != nil {
		c.opts.OnCommit(s.Last)
	}
}

// Cancel ends the session without committing.
func (c *Controller) Cancel() {
	if c.session == nil {
		return
	}
	c.end()
	if c.opts.OnCancel != nil {
		c.opts.OnCancel()
	}
}

func (c *Controller) end() {
	s := c.session
	c.session = nil
	if s.release != nil {
		s.release()
	}
}

func (c *Controller) scale() float64 {
	if c.opts.Scale == nil {
		return 1
	}
	if s := c.opts.Scale(); s > 0 {
		return s
	}
	return 1
}
