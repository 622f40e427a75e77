package export

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"
	"github.com/lucasb-eyer/go-colorful"
	"honnef.co/go/curve"

	"mindflow/autosize"
	"mindflow/diagram"
	"mindflow/geometry"
	"mindflow/icons"
	"mindflow/render"
)

const fontFamily = "system-ui,-apple-system,Segoe UI,Helvetica,Arial,sans-serif"

// SVGExporter draws the scene at canvas size.
type SVGExporter struct {
	opts Options
}

// NewSVGExporter creates a new SVG exporter
func NewSVGExporter(opts Options) *SVGExporter {
	return &SVGExporter{opts: opts.withDefaults()}
}

// Export renders the diagram as an SVG document
func (e *SVGExporter) Export(d *diagram.Diagram) ([]byte, error) {
	if d == nil {
		return nil, fmt.Errorf("diagram is nil")
	}
	scene := render.Build(d, e.opts.Theme, e.opts.background(), e.opts.Scene)

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(px(scene.Bounds.Width()), px(scene.Bounds.Height()))
	if scene.Title != "" {
		canvas.Title(scene.Title)
	}
	canvas.Rect(0, 0, px(scene.Bounds.Width()), px(scene.Bounds.Height()), "fill:"+scene.Background.Hex())

	// Connectors first so boxes cover their ends
	canvas.Gid("connectors")
	for _, edge := range scene.Edges {
		e.drawEdge(canvas, edge)
	}
	canvas.Gend()

	canvas.Gid("nodes")
	for _, node := range scene.Nodes {
		e.drawNode(canvas, scene, node)
	}
	canvas.Gend()

	if len(scene.SideBoxes) > 0 {
		canvas.Gid("sideboxes")
		for _, box := range scene.SideBoxes {
			e.drawLink(canvas, box.Link, 1.5)
			e.drawBox(canvas, box.Rect, box.Fill, scene.Theme.Border, 6)
			e.drawText(canvas, box.Rect, box.Text, e.opts.FontSize*0.8, scene.Theme.Text, "normal")
		}
		canvas.Gend()
	}

	if scene.Panel != nil {
		e.drawPanel(canvas, scene)
	}

	canvas.End()
	e.opts.Logger.Debug("exported svg", "nodes", len(scene.Nodes), "edges", len(scene.Edges), "bytes", buf.Len())
	return buf.Bytes(), nil
}

func (e *SVGExporter) drawEdge(canvas *svg.SVG, edge render.Edge) {
	r := edge.Route
	style := fmt.Sprintf("fill:none;stroke:%s;stroke-width:%s;stroke-linecap:round", r.Color.Hex(), num(r.Width))
	if len(r.Dash) > 0 {
		style += ";stroke-dasharray:" + dashArray(r.Dash)
	}
	canvas.Path(r.SVGPath(), style)

	if edge.HasHead {
		xs, ys := polygon(edge.Head.Points())
		canvas.Polygon(xs, ys, "fill:"+r.Color.Hex())
	}
}

func (e *SVGExporter) drawNode(canvas *svg.SVG, scene *render.Scene, node render.NodeShape) {
	radius := 10
	if node.Terminal {
		radius = px(node.Rect.Height() / 2)
	}
	e.drawBox(canvas, node.Rect, node.Fill, node.Stroke, radius)

	title := node.Title
	if node.Icon != icons.Default {
		title = string(node.Icon.Glyph()) + " " + title
	}

	inner := insetRect(node.Rect, 16, 20)
	if node.Description == "" || scene.Mode == diagram.ModeMindMap {
		e.drawText(canvas, inner, title, e.opts.FontSize, node.Text, "600")
		return
	}

	titleLines := e.wrap(title, inner.Width(), e.opts.FontSize)
	top := inner.MinY() + e.opts.FontSize
	for i, line := range titleLines {
		canvas.Text(px(inner.Center().X), px(top+float64(i)*e.opts.FontSize*1.25), line, textStyle(e.opts.FontSize, node.Text, "600"))
	}
	small := e.opts.FontSize * 0.8
	y := top + float64(len(titleLines))*e.opts.FontSize*1.25
	for i, line := range e.wrap(node.Description, inner.Width(), small) {
		canvas.Text(px(inner.Center().X), px(y+float64(i)*small*1.3), line, textStyle(small, scene.Theme.Muted, "normal"))
	}
}

func (e *SVGExporter) drawPanel(canvas *svg.SVG, scene *render.Scene) {
	p := scene.Panel
	canvas.Gid("panel")
	for _, item := range p.Items {
		if item.Link != nil {
			e.drawLink(canvas, *item.Link, 1.5)
		}
	}
	e.drawBox(canvas, p.Rect, p.Fill, scene.Theme.Border, 12)
	canvas.Text(px(p.Rect.MinX()+16), px(p.Rect.MinY()+32), p.Title, textStyle(e.opts.FontSize, scene.Theme.Text, "700")+";text-anchor:start")

	for _, item := range p.Items {
		r := insetRect(item.Rect, 12, 0)
		e.drawBox(canvas, r, scene.Theme.Surface, item.Color, 8)
		label := string(item.Icon.Glyph()) + " " + item.Title
		canvas.Text(px(r.MinX()+12), px(r.MinY()+22), label, textStyle(e.opts.FontSize*0.9, scene.Theme.Text, "600")+";text-anchor:start")
		if item.Description != "" {
			size := e.opts.FontSize * 0.75
			for i, line := range e.wrap(item.Description, r.Width()-24, size) {
				canvas.Text(px(r.MinX()+12), px(r.MinY()+40+float64(i)*size*1.3), line, textStyle(size, scene.Theme.Muted, "normal")+";text-anchor:start")
			}
		}
	}
	canvas.Gend()
}

func (e *SVGExporter) drawBox(canvas *svg.SVG, r curve.Rect, fill, stroke colorful.Color, radius int) {
	canvas.Roundrect(px(r.MinX()), px(r.MinY()), px(r.Width()), px(r.Height()), radius, radius,
		fmt.Sprintf("fill:%s;stroke:%s;stroke-width:2", fill.Hex(), stroke.Hex()))
}

func (e *SVGExporter) drawLink(canvas *svg.SVG, l render.Link, width float64) {
	style := fmt.Sprintf("stroke:%s;stroke-width:%s", l.Color.Hex(), num(width))
	if l.Dotted {
		style += ";stroke-dasharray:2,4;stroke-linecap:round"
	}
	canvas.Line(px(l.From.X), px(l.From.Y), px(l.To.X), px(l.To.Y), style)
}

// drawText centers wrapped text inside r.
func (e *SVGExporter) drawText(canvas *svg.SVG, r curve.Rect, text string, size float64, c colorful.Color, weight string) {
	lines := e.wrap(text, r.Width(), size)
	lineHeight := size * 1.25
	top := r.Center().Y - lineHeight*float64(len(lines))/2 + size*0.85
	for i, line := range lines {
		canvas.Text(px(r.Center().X), px(top+float64(i)*lineHeight), line, textStyle(size, c, weight))
	}
}

// wrap estimates glyph widths from the font size; browsers do the real
// shaping.
func (e *SVGExporter) wrap(text string, width, size float64) []string {
	m := autosize.CellMeasurer{CellWidth: size * 0.55, CellHeight: size}
	return autosize.Wrap(text, width, m.Width)
}

// GetFileExtension returns the file extension for SVG
func (e *SVGExporter) GetFileExtension() string {
	return ".svg"
}

// GetFormatName returns the format name
func (e *SVGExporter) GetFormatName() string {
	return "SVG"
}

func textStyle(size float64, c colorful.Color, weight string) string {
	return fmt.Sprintf("font-family:%s;font-size:%spx;font-weight:%s;fill:%s;text-anchor:middle",
		fontFamily, num(size), weight, c.Hex())
}

func insetRect(r curve.Rect, dx, dy float64) curve.Rect {
	w := math.Max(0, r.Width()-2*dx)
	h := math.Max(0, r.Height()-2*dy)
	return geometry.Bounds(geometry.Pt(r.MinX()+dx, r.MinY()+dy), geometry.Sz(w, h))
}

func polygon(pts []geometry.Point) ([]int, []int) {
	xs := make([]int, len(pts))
	ys := make([]int, len(pts))
	for i, p := range pts {
		xs[i] = px(p.X)
		ys[i] = px(p.Y)
	}
	return xs, ys
}

func dashArray(dash []float64) string {
	parts := make([]string, len(dash))
	for i, d := range dash {
		parts[i] = num(d)
	}
	return strings.Join(parts, ",")
}

func num(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

func px(v float64) int {
	return int(math.Round(v))
}
