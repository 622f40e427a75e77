// Package connections computes the drawn path of every connector.
package connections

import (
	"github.com/lucasb-eyer/go-colorful"
	"honnef.co/go/curve"

	"mindflow/diagram"
	"mindflow/geometry"
)

// Kind is the geometric case a route falls into.
type Kind int

const (
	// Straight is a center-to-center line, used in mind maps.
	Straight Kind = iota
	// Curve is the flowchart S-curve from bottom-center to top-center.
	Curve
	// LoopBack is the flowchart detour around the right side for edges
	// that go upwards.
	LoopBack
)

func (k Kind) String() string {
	switch k {
	case Straight:
		return "straight"
	case Curve:
		return "curve"
	case LoopBack:
		return "loop-back"
	default:
		return "unknown"
	}
}

// Config holds the routing constants.
type Config struct {
	// LoopBackThreshold is how far the target's top may rise above the
	// source's bottom before the loop-back route is used.
	LoopBackThreshold float64 `yaml:"loop_back_threshold"`
	CurveOffset       float64 `yaml:"curve_offset"`
	LoopOutset        float64 `yaml:"loop_outset"`
	MindMapWidth      float64 `yaml:"mindmap_width"`
	FlowchartWidth    float64 `yaml:"flowchart_width"`
}

// DefaultConfig returns the standard routing constants.
func DefaultConfig() Config {
	return Config{
		LoopBackThreshold: 50,
		CurveOffset:       60,
		LoopOutset:        100,
		MindMapWidth:      3,
		FlowchartWidth:    2,
	}
}

// Route is the drawable geometry of one connector.
type Route struct {
	ConnectorID string
	From, To    string
	Kind        Kind
	Path        curve.BezPath
	Width       float64
	Dash        []float64
	Arrow       ArrowType
	Color       colorful.Color
}

// Router turns connectors into routes.
type Router struct {
	cfg Config
}

// NewRouter creates a router.
func NewRouter(cfg Config) *Router {
	return &Router{cfg: cfg}
}

// Config returns the routing constants.
func (r *Router) Config() Config {
	return r.cfg
}

// IsLoopBack reports whether an edge from -> to should take the loop-back
// route in flowchart mode.
func (r *Router) IsLoopBack(from, to diagram.Node) bool {
	return from.Bottom()-to.Position.Y > r.cfg.LoopBackThreshold
}

// Route computes the path between two nodes. Style overrides replace the
// default width and dash.
func (r *Router) Route(from, to diagram.Node, mode diagram.LayoutMode, style *diagram.StyleOverride) Route {
	var route Route
	switch {
	case mode == diagram.ModeMindMap:
		route = r.straight(from, to)
	case r.IsLoopBack(from, to):
		route = r.loopBack(from, to)
	default:
		route = r.curve(from, to)
	}

	route.From, route.To = from.ID, to.ID
	if style != nil {
		if style.Width > 0 {
			route.Width = style.Width
		}
		if len(style.Dash) > 0 {
			route.Dash = append([]float64(nil), style.Dash...)
		}
	}
	return route
}

func (r *Router) straight(from, to diagram.Node) Route {
	var p curve.BezPath
	p.MoveTo(from.Center().Curve())
	p.LineTo(to.Center().Curve())
	return Route{Kind: Straight, Path: p, Width: r.cfg.MindMapWidth, Arrow: ArrowNone}
}

func (r *Router) curve(from, to diagram.Node) Route {
	start := geometry.BottomCenter(from.Position, from.Size)
	end := geometry.TopCenter(to.Position, to.Size)

	var p curve.BezPath
	p.MoveTo(start.Curve())
	p.CubicTo(
		start.Add(geometry.Pt(0, r.cfg.CurveOffset)).Curve(),
		end.Sub(geometry.Pt(0, r.cfg.CurveOffset)).Curve(),
		end.Curve(),
	)
	return Route{Kind: Curve, Path: p, Width: r.cfg.FlowchartWidth, Arrow: ArrowEnd}
}

func (r *Router) loopBack(from, to diagram.Node) Route {
	start := geometry.RightMiddle(from.Position, from.Size)
	end := geometry.RightMiddle(to.Position, to.Size)
	x := max(from.Right(), to.Right()) + r.cfg.LoopOutset

	var p curve.BezPath
	p.MoveTo(start.Curve())
	p.LineTo(curve.Pt(x, start.Y))
	p.LineTo(curve.Pt(x, end.Y))
	p.LineTo(end.Curve())
	return Route{Kind: LoopBack, Path: p, Width: r.cfg.FlowchartWidth, Arrow: ArrowEnd}
}

// RouteAll routes every connector of d in order. Connectors whose source or
// target is missing are skipped. In mind-map mode routes take the target's
// branch color, then the source's, then neutral; flowchart routes are
// always neutral.
func (r *Router) RouteAll(d *diagram.Diagram, colors map[string]colorful.Color, neutral colorful.Color) []Route {
	nodes := make(map[string]diagram.Node, len(d.Nodes))
	for _, n := range d.Nodes {
		nodes[n.ID] = n
	}

	mode := d.GetMode()
	routes := make([]Route, 0, len(d.Connectors))
	for _, c := range d.Connectors {
		from, ok := nodes[c.From]
		if !ok {
			continue
		}
		to, ok := nodes[c.To]
		if !ok {
			continue
		}

		route := r.Route(from, to, mode, c.Style)
		route.ConnectorID = c.ID
		route.Color = neutral
		if mode == diagram.ModeMindMap {
			route.Color = BranchColor(c.From, c.To, colors, neutral)
		}
		routes = append(routes, route)
	}
	return routes
}

// BranchColor picks the color of a mind-map connector.
func BranchColor(from, to string, colors map[string]colorful.Color, neutral colorful.Color) colorful.Color {
	if c, ok := colors[to]; ok {
		return c
	}
	if c, ok := colors[from]; ok {
		return c
	}
	return neutral
}

// SVGPath returns the route's path as SVG path data.
func (r Route) SVGPath() string {
	return r.Path.SVG(curve.SVGOptions{MaxPrecision: 2})
}

// Start returns the first point of the route.
func (r Route) Start() geometry.Point {
	if len(r.Path) == 0 {
		return geometry.Point{}
	}
	return geometry.FromCurve(r.Path[0].P0)
}

// End returns the last point of the route.
func (r Route) End() geometry.Point {
	if len(r.Path) == 0 {
		return geometry.Point{}
	}
	last := r.Path[len(r.Path)-1]
	if last.Kind == curve.CubicToKind {
		return geometry.FromCurve(last.P2)
	}
	return geometry.FromCurve(last.P0)
}

// Polyline flattens the route into line segments within tolerance.
func (r Route) Polyline(tolerance float64) []geometry.Point {
	var pts []geometry.Point
	for el := range r.Path.Flatten(tolerance) {
		switch el.Kind {
		case curve.MoveToKind, curve.LineToKind:
			pts = append(pts, geometry.FromCurve(el.P0))
		}
	}
	return pts
}

// Dashed returns the route's path with its dash pattern applied. Routes
// without a dash pattern are returned unchanged.
func (r Route) Dashed() curve.BezPath {
	if len(r.Dash) == 0 {
		return r.Path
	}
	var out curve.BezPath
	for el := range curve.Dash(r.Path.Elements(), 0, r.Dash) {
		out.Push(el)
	}
	return out
}
