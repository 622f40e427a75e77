package export

import (
	"bytes"
	"fmt"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"honnef.co/go/curve"

	"mindflow/autosize"
	"mindflow/diagram"
	"mindflow/geometry"
	"mindflow/icons"
	"mindflow/render"
)

var dotted = []float64{2, 4}

// PNGExporter rasterizes the scene at canvas size times Scale.
type PNGExporter struct {
	opts Options
}

// NewPNGExporter creates a new PNG exporter
func NewPNGExporter(opts Options) *PNGExporter {
	return &PNGExporter{opts: opts.withDefaults()}
}

// Export renders the diagram as a PNG image
func (e *PNGExporter) Export(d *diagram.Diagram) ([]byte, error) {
	if d == nil {
		return nil, fmt.Errorf("diagram is nil")
	}
	scene := render.Build(d, e.opts.Theme, e.opts.background(), e.opts.Scene)
	scale := e.opts.Scale

	// Glyphs are not scaled by the context transform, so faces are loaded
	// at output size.
	titleFace, err := autosize.LoadFace(e.opts.FontSize * scale)
	if err != nil {
		return nil, fmt.Errorf("load title font: %w", err)
	}
	smallFace, err := autosize.LoadFace(e.opts.FontSize * 0.8 * scale)
	if err != nil {
		return nil, fmt.Errorf("load text font: %w", err)
	}

	width := px(scene.Bounds.Width() * scale)
	height := px(scene.Bounds.Height() * scale)
	dc := gg.NewContext(width, height)
	dc.SetColor(scene.Background)
	dc.Clear()
	dc.Scale(scale, scale)

	p := &painter{dc: dc, scale: scale, title: titleFace, small: smallFace}

	for _, edge := range scene.Edges {
		p.edge(edge)
	}
	for _, node := range scene.Nodes {
		p.node(scene, node)
	}
	for _, box := range scene.SideBoxes {
		p.link(box.Link)
		p.box(box.Rect, box.Fill, scene.Theme.Border, 6)
		p.text(box.Rect, box.Text, p.small, scene.Theme.Text)
	}
	if scene.Panel != nil {
		p.panel(scene)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	e.opts.Logger.Debug("exported png", "width", width, "height", height, "bytes", buf.Len())
	return buf.Bytes(), nil
}

// GetFileExtension returns the file extension for PNG
func (e *PNGExporter) GetFileExtension() string {
	return ".png"
}

// GetFormatName returns the format name
func (e *PNGExporter) GetFormatName() string {
	return "PNG"
}

type painter struct {
	dc    *gg.Context
	scale float64
	title font.Face
	small font.Face
}

func (p *painter) edge(edge render.Edge) {
	r := edge.Route
	p.dc.SetColor(r.Color)
	p.dc.SetLineWidth(r.Width * p.scale)
	p.path(r.Dashed())
	p.dc.Stroke()

	if edge.HasHead {
		pts := edge.Head.Points()
		p.dc.MoveTo(pts[0].X, pts[0].Y)
		for _, pt := range pts[1:] {
			p.dc.LineTo(pt.X, pt.Y)
		}
		p.dc.ClosePath()
		p.dc.Fill()
	}
}

// path replays a curve path on the context.
func (p *painter) path(bp curve.BezPath) {
	for el := range bp.Elements() {
		switch el.Kind {
		case curve.MoveToKind:
			p.dc.MoveTo(el.P0.X, el.P0.Y)
		case curve.LineToKind:
			p.dc.LineTo(el.P0.X, el.P0.Y)
		case curve.QuadToKind:
			p.dc.QuadraticTo(el.P0.X, el.P0.Y, el.P1.X, el.P1.Y)
		case curve.CubicToKind:
			p.dc.CubicTo(el.P0.X, el.P0.Y, el.P1.X, el.P1.Y, el.P2.X, el.P2.Y)
		case curve.ClosePathKind:
			p.dc.ClosePath()
		}
	}
}

func (p *painter) link(l render.Link) {
	var line curve.BezPath
	line.MoveTo(l.From.Curve())
	line.LineTo(l.To.Curve())
	if l.Dotted {
		var dashed curve.BezPath
		for el := range curve.Dash(line.Elements(), 0, dotted) {
			dashed.Push(el)
		}
		line = dashed
	}
	p.dc.SetColor(l.Color)
	p.dc.SetLineWidth(1.5 * p.scale)
	p.path(line)
	p.dc.Stroke()
}

func (p *painter) box(r curve.Rect, fill, stroke colorful.Color, radius float64) {
	p.dc.DrawRoundedRectangle(r.MinX(), r.MinY(), r.Width(), r.Height(), radius)
	p.dc.SetColor(fill)
	p.dc.FillPreserve()
	p.dc.SetColor(stroke)
	p.dc.SetLineWidth(2 * p.scale)
	p.dc.Stroke()
}

// text draws wrapped text centered in r.
func (p *painter) text(r curve.Rect, s string, face font.Face, c colorful.Color) {
	if s == "" {
		return
	}
	c0 := r.Center()
	p.dc.Push()
	defer p.dc.Pop()
	// Wrapping works in device pixels.
	p.dc.Identity()
	p.dc.SetFontFace(face)
	p.dc.SetColor(c)
	p.dc.DrawStringWrapped(s, c0.X*p.scale, c0.Y*p.scale, 0.5, 0.5, r.Width()*p.scale, 1.25, gg.AlignCenter)
}

func (p *painter) node(scene *render.Scene, node render.NodeShape) {
	radius := 10.0
	if node.Terminal {
		radius = node.Rect.Height() / 2
	}
	p.box(node.Rect, node.Fill, node.Stroke, radius)

	title := node.Title
	if node.Icon != icons.Default {
		title = string(node.Icon.Glyph()) + " " + title
	}
	inner := insetRect(node.Rect, 16, 20)
	if node.Description == "" || scene.Mode == diagram.ModeMindMap {
		p.text(inner, title, p.title, node.Text)
		return
	}

	half := inner.Height() / 2
	top := geometry.Bounds(geometry.Pt(inner.MinX(), inner.MinY()), geometry.Sz(inner.Width(), half))
	bottom := geometry.Bounds(geometry.Pt(inner.MinX(), inner.MinY()+half), geometry.Sz(inner.Width(), half))
	p.text(top, title, p.title, node.Text)
	p.text(bottom, node.Description, p.small, scene.Theme.Muted)
}

func (p *painter) panel(scene *render.Scene) {
	panel := scene.Panel
	for _, item := range panel.Items {
		if item.Link != nil {
			p.link(*item.Link)
		}
	}
	p.box(panel.Rect, panel.Fill, scene.Theme.Border, 12)

	p.dc.SetFontFace(p.title)
	p.dc.SetColor(scene.Theme.Text)
	p.dc.DrawStringAnchored(panel.Title, panel.Rect.MinX()+16, panel.Rect.MinY()+28, 0, 0.5)

	for _, item := range panel.Items {
		r := insetRect(item.Rect, 12, 0)
		p.box(r, scene.Theme.Surface, item.Color, 8)
		label := string(item.Icon.Glyph()) + " " + item.Title
		if item.Description != "" {
			label += "\n" + item.Description
		}
		p.text(insetRect(r, 12, 6), label, p.small, scene.Theme.Text)
	}
}
