// Package render turns a diagram into a flat, theme-colored scene that
// output backends (SVG, PNG, terminal) draw without further geometry work.
package render

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"honnef.co/go/curve"

	"mindflow/autosize"
	"mindflow/connections"
	"mindflow/diagram"
	"mindflow/geometry"
	"mindflow/icons"
	"mindflow/layout"
	"mindflow/theme"
)

// Options controls scene construction. Zero values get defaults.
type Options struct {
	Router  *connections.Router
	Palette []colorful.Color

	// SideBoxGap is the horizontal distance between a node and its side box.
	SideBoxGap float64
	// SideBoxSize is used for side boxes without a size.
	SideBoxSize geometry.Size
	// ArrowLength and ArrowHalfAngle shape the flowchart arrowheads.
	ArrowLength    float64
	ArrowHalfAngle float64
	// Sizing supplies the panel header height and item gap. It must be the
	// config the diagram was auto-sized with.
	Sizing autosize.Config
}

// DefaultOptions returns the options used by BuildScene.
func DefaultOptions() Options {
	return Options{
		Router:         connections.NewRouter(connections.DefaultConfig()),
		Palette:        theme.BranchPalette,
		SideBoxGap:     40,
		SideBoxSize:    geometry.Sz(180, 60),
		ArrowLength:    12,
		ArrowHalfAngle: math.Pi / 7,
		Sizing:         autosize.DefaultConfig(),
	}
}

// Scene is everything needed to draw one diagram at canvas bounds.
type Scene struct {
	Bounds     curve.Rect
	Background colorful.Color
	Theme      theme.Theme
	Title      string
	Caption    string
	Mode       diagram.LayoutMode

	Edges     []Edge
	Nodes     []NodeShape
	SideBoxes []SideBoxShape
	Panel     *PanelShape
}

// Edge is a routed connector with its optional arrowhead.
type Edge struct {
	Route   connections.Route
	Head    connections.ArrowHead
	HasHead bool
}

// NodeShape is a positioned, colored node.
type NodeShape struct {
	ID          string
	Rect        curve.Rect
	Title       string
	Description string
	Icon        icons.Icon
	Terminal    bool
	Fill        colorful.Color
	Stroke      colorful.Color
	Text        colorful.Color
}

// Link is a straight line between two model points.
type Link struct {
	From, To geometry.Point
	Dotted   bool
	Color    colorful.Color
}

// SideBoxShape is a side box placed to the right of its node.
type SideBoxShape struct {
	ID   string
	Rect curve.Rect
	Text string
	Link Link
	Fill colorful.Color
}

// PanelShape is the supporting panel with its stacked items.
type PanelShape struct {
	Title string
	Rect  curve.Rect
	Items []PanelItemShape
	Fill  colorful.Color
}

// PanelItemShape is one panel entry. Link is nil when the item connects
// to no node, or to one that does not exist.
type PanelItemShape struct {
	ID          string
	Rect        curve.Rect
	Title       string
	Description string
	Icon        icons.Icon
	Color       colorful.Color
	Link        *Link
}

// BuildScene lays out the scene for d at its canvas bounds with the
// default options. No viewport transform is applied.
func BuildScene(d *diagram.Diagram, th theme.Theme, background colorful.Color) *Scene {
	return Build(d, th, background, DefaultOptions())
}

// Build is BuildScene with explicit options.
func Build(d *diagram.Diagram, th theme.Theme, background colorful.Color, opts Options) *Scene {
	opts = withDefaults(opts)

	s := &Scene{
		Bounds:     geometry.Bounds(geometry.Point{}, geometry.Sz(d.Canvas.Width, d.Canvas.Height)),
		Background: background,
		Theme:      th,
		Title:      d.Title,
		Caption:    d.Caption,
		Mode:       d.GetMode(),
	}

	colors := layout.BranchColors(d, opts.Palette)
	for _, r := range opts.Router.RouteAll(d, colors, th.Neutral) {
		e := Edge{Route: r}
		e.Head, e.HasHead = r.Head(opts.ArrowLength, opts.ArrowHalfAngle)
		s.Edges = append(s.Edges, e)
	}

	nodes := make(map[string]diagram.Node, len(d.Nodes))
	for _, n := range d.Nodes {
		nodes[n.ID] = n
		s.Nodes = append(s.Nodes, nodeShape(n, th, colors))
	}

	for _, b := range d.SideBoxes {
		n, ok := nodes[b.AttachedNodeID]
		if !ok {
			continue
		}
		s.SideBoxes = append(s.SideBoxes, sideBoxShape(b, n, th, opts))
	}

	if d.Panel != nil {
		s.Panel = panelShape(d.Panel, nodes, th, opts)
	}
	return s
}

func withDefaults(opts Options) Options {
	def := DefaultOptions()
	if opts.Router == nil {
		opts.Router = def.Router
	}
	if opts.Palette == nil {
		opts.Palette = def.Palette
	}
	if opts.SideBoxGap == 0 {
		opts.SideBoxGap = def.SideBoxGap
	}
	if opts.SideBoxSize == (geometry.Size{}) {
		opts.SideBoxSize = def.SideBoxSize
	}
	if opts.ArrowLength == 0 {
		opts.ArrowLength = def.ArrowLength
	}
	if opts.ArrowHalfAngle == 0 {
		opts.ArrowHalfAngle = def.ArrowHalfAngle
	}
	if opts.Sizing == (autosize.Config{}) {
		opts.Sizing = def.Sizing
	}
	return opts
}

func nodeShape(n diagram.Node, th theme.Theme, colors map[string]colorful.Color) NodeShape {
	shape := NodeShape{
		ID:          n.ID,
		Rect:        geometry.Bounds(n.Position, n.Size),
		Title:       n.Title,
		Description: n.Description,
		Icon:        icons.Lookup(n.Icon),
		Terminal:    n.Kind == diagram.NodeTerminal,
		Fill:        th.Surface,
		Stroke:      th.Border,
		Text:        th.Text,
	}
	if c, ok := colors[n.ID]; ok {
		shape.Stroke = c
		shape.Fill = th.Tint(c, 0.12)
	}
	if shape.Terminal {
		shape.Stroke = th.Accent
	}
	return shape
}

func sideBoxShape(b diagram.SideBox, n diagram.Node, th theme.Theme, opts Options) SideBoxShape {
	size := b.Size
	if size.W <= 0 || size.H <= 0 {
		size = opts.SideBoxSize
	}
	mid := geometry.RightMiddle(n.Position, n.Size)
	pos := geometry.Pt(mid.X+opts.SideBoxGap, mid.Y-size.H/2)
	return SideBoxShape{
		ID:   b.ID,
		Rect: geometry.Bounds(pos, size),
		Text: b.Text,
		Link: Link{
			From:   mid,
			To:     geometry.LeftMiddle(pos, size),
			Dotted: b.LineStyle != diagram.LineSolid,
			Color:  th.Muted,
		},
		Fill: th.SideBox,
	}
}

func panelShape(p *diagram.SupportingPanel, nodes map[string]diagram.Node, th theme.Theme, opts Options) *PanelShape {
	shape := &PanelShape{
		Title: p.Title,
		Rect:  geometry.Bounds(p.Position, p.Size),
		Fill:  th.Panel,
	}

	y := p.Position.Y + opts.Sizing.HeaderHeight
	for _, item := range p.Items {
		h := item.Height
		pos := geometry.Pt(p.Position.X, y)
		size := geometry.Sz(p.Size.W, h)
		y += h + opts.Sizing.ItemGap

		color := th.Accent
		if item.Color != "" {
			if c, err := theme.ParseColor(item.Color); err == nil {
				color = c
			}
		}

		is := PanelItemShape{
			ID:          item.ID,
			Rect:        geometry.Bounds(pos, size),
			Title:       item.Title,
			Description: item.Description,
			Icon:        icons.Lookup(item.Icon),
			Color:       color,
		}
		if n, ok := nodes[item.ConnectsToNodeID]; ok && item.ConnectsToNodeID != "" {
			is.Link = itemLink(pos, size, n, color)
		}
		shape.Items = append(shape.Items, is)
	}
	return shape
}

// itemLink joins the item edge facing the node to the node edge facing the
// item.
func itemLink(pos geometry.Point, size geometry.Size, n diagram.Node, color colorful.Color) *Link {
	itemMid := geometry.Center(pos, size)
	if n.Center().X < itemMid.X {
		return &Link{
			From:   geometry.LeftMiddle(pos, size),
			To:     geometry.RightMiddle(n.Position, n.Size),
			Dotted: true,
			Color:  color,
		}
	}
	return &Link{
		From:   geometry.RightMiddle(pos, size),
		To:     geometry.LeftMiddle(n.Position, n.Size),
		Dotted: true,
		Color:  color,
	}
}

// Node returns the shape of the node with the given id.
func (s *Scene) Node(id string) (NodeShape, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeShape{}, false
}
