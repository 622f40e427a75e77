package terminal

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"
	"honnef.co/go/curve"

	"mindflow/autosize"
	"mindflow/geometry"
	"mindflow/render"
)

// cellRect is a box in screen cells, inclusive of its border.
type cellRect struct {
	x0, y0, x1, y1 int
}

func (r cellRect) innerWidth() int { return r.x1 - r.x0 - 1 }

// Draw renders the current view and status bar into the screen's back
// buffer. Call Show to display it.
func (v *Viewer) Draw() {
	th := v.opts.Theme
	scene := render.Build(v.ed.View(), th, th.Background, v.opts.Scene)

	bg := styleOf(th.Text, th.Background)
	v.screen.SetStyle(bg)
	v.screen.Clear()

	for _, e := range scene.Edges {
		v.drawEdge(e, scene.Background)
	}
	for _, n := range scene.Nodes {
		v.drawNode(n)
	}
	for _, b := range scene.SideBoxes {
		v.drawLink(b.Link, scene.Background)
		r := v.cellRect(b.Rect)
		st := styleOf(th.Text, b.Fill)
		v.drawBox(r, DefaultBoxStyle, styleOf(th.Border, b.Fill), st)
		v.drawLines(r, wrapCells(b.Text, r.innerWidth()), st)
	}
	if scene.Panel != nil {
		v.drawPanel(scene.Panel, scene)
	}

	v.drawStatus()
}

func (v *Viewer) drawEdge(e render.Edge, bg colorful.Color) {
	st := styleOf(e.Route.Color, bg)
	dotted := len(e.Route.Dash) > 0
	pts := e.Route.Polyline(1)
	for i := 1; i < len(pts); i++ {
		v.drawSegment(pts[i-1], pts[i], dotted, st)
	}
	if !e.HasHead {
		return
	}
	base := e.Head.Left.Add(e.Head.Right).Scale(0.5)
	dir := e.Head.Tip.Sub(base)
	x, y := v.cellOf(e.Head.Tip)
	v.set(x, y, StandardArrows.Arrow(dir.X, dir.Y), st)
}

func (v *Viewer) drawLink(l render.Link, bg colorful.Color) {
	v.drawSegment(l.From, l.To, l.Dotted, styleOf(l.Color, bg))
}

// drawSegment rasterises a model-space segment with a DDA walk over cells.
func (v *Viewer) drawSegment(from, to geometry.Point, dotted bool, st tcell.Style) {
	x0, y0 := v.cellOf(from)
	x1, y1 := v.cellOf(to)
	dx, dy := x1-x0, y1-y0
	steps := max(iabs(dx), iabs(dy))
	if steps == 0 {
		v.set(x0, y0, lineRune(0, 0, dotted), st)
		return
	}
	ch := lineRune(sign(dx), sign(dy), dotted)
	for i := 0; i <= steps; i++ {
		x := x0 + int(math.Round(float64(dx*i)/float64(steps)))
		y := y0 + int(math.Round(float64(dy*i)/float64(steps)))
		v.set(x, y, ch, st)
	}
}

func (v *Viewer) drawNode(n render.NodeShape) {
	r := v.cellRect(n.Rect)
	box := DefaultBoxStyle
	switch {
	case n.ID == v.selected:
		box = HeavyBoxStyle
	case n.Terminal:
		box = DoubleBoxStyle
	}
	text := styleOf(n.Text, n.Fill)
	v.drawBox(r, box, styleOf(n.Stroke, n.Fill), text)

	lines := []string{string(n.Icon.Glyph()) + " " + n.Title}
	lines = append(lines, wrapCells(n.Description, r.innerWidth())...)
	v.drawLines(r, lines, text)
}

func (v *Viewer) drawPanel(p *render.PanelShape, scene *render.Scene) {
	th := scene.Theme
	r := v.cellRect(p.Rect)
	v.drawBox(r, DefaultBoxStyle, styleOf(th.Border, p.Fill), styleOf(th.Text, p.Fill))
	v.drawText(r.x0+2, r.y0, r.innerWidth()-2, " "+p.Title+" ", styleOf(th.Text, p.Fill).Bold(true))

	for _, item := range p.Items {
		if item.Link != nil {
			v.drawLink(*item.Link, scene.Background)
		}
		ir := v.cellRect(item.Rect)
		st := styleOf(th.Text, p.Fill)
		v.drawBox(ir, DefaultBoxStyle, styleOf(item.Color, p.Fill), st)
		lines := []string{string(item.Icon.Glyph()) + " " + item.Title}
		lines = append(lines, wrapCells(item.Description, ir.innerWidth())...)
		v.drawLines(ir, lines, st)
	}
}

func (v *Viewer) drawStatus() {
	w, h := v.screen.Size()
	if h == 0 {
		return
	}
	th := v.opts.Theme
	st := styleOf(th.Background, th.Accent)
	for x := 0; x < w; x++ {
		v.set(x, h-1, ' ', st)
	}

	d := v.ed.View()
	cur, total := v.ed.Stats()
	line := fmt.Sprintf(" %s │ %.0f%% │ %d/%d", d.GetMode(), v.ed.Viewport().Zoom*100, cur, total)
	if v.selected != "" {
		line += " │ " + v.selected
	}
	if v.status != "" {
		line += " │ " + v.status
	}
	v.drawText(0, h-1, w, line, st)
}

// drawBox draws a border with style border and fills the inside with fill.
func (v *Viewer) drawBox(r cellRect, bs BoxStyle, border, fill tcell.Style) {
	for y := r.y0 + 1; y < r.y1; y++ {
		for x := r.x0 + 1; x < r.x1; x++ {
			v.set(x, y, ' ', fill)
		}
	}
	for x := r.x0 + 1; x < r.x1; x++ {
		v.set(x, r.y0, bs.Horizontal, border)
		v.set(x, r.y1, bs.Horizontal, border)
	}
	for y := r.y0 + 1; y < r.y1; y++ {
		v.set(r.x0, y, bs.Vertical, border)
		v.set(r.x1, y, bs.Vertical, border)
	}
	v.set(r.x0, r.y0, bs.TopLeft, border)
	v.set(r.x1, r.y0, bs.TopRight, border)
	v.set(r.x0, r.y1, bs.BottomLeft, border)
	v.set(r.x1, r.y1, bs.BottomRight, border)
}

// drawLines writes lines inside a box, one per row, until the box is full.
func (v *Viewer) drawLines(r cellRect, lines []string, st tcell.Style) {
	for i, line := range lines {
		y := r.y0 + 1 + i
		if y >= r.y1 {
			return
		}
		v.drawText(r.x0+1, y, r.innerWidth(), line, st)
	}
}

// drawText writes s from (x, y), truncated to width cells.
func (v *Viewer) drawText(x, y, width int, s string, st tcell.Style) {
	if width <= 0 {
		return
	}
	s = runewidth.Truncate(s, width, "…")
	for _, r := range s {
		v.set(x, y, r, st)
		x += runewidth.RuneWidth(r)
	}
}

func (v *Viewer) set(x, y int, r rune, st tcell.Style) {
	w, h := v.screen.Size()
	if x < 0 || y < 0 || x >= w || y >= h {
		return
	}
	v.screen.SetContent(x, y, r, nil, st)
}

// cellRect maps a model rectangle to cells, keeping at least one interior
// row and column.
func (v *Viewer) cellRect(r curve.Rect) cellRect {
	x0, y0 := v.cellOf(geometry.Pt(r.MinX(), r.MinY()))
	x1, y1 := v.cellOf(geometry.Pt(r.MaxX(), r.MaxY()))
	return cellRect{x0: x0, y0: y0, x1: max(x1, x0+2), y1: max(y1, y0+2)}
}

func wrapCells(text string, width int) []string {
	if width <= 0 {
		return nil
	}
	return autosize.Wrap(text, float64(width), func(s string) float64 {
		return float64(runewidth.StringWidth(s))
	})
}

func styleOf(fg, bg colorful.Color) tcell.Style {
	return tcell.StyleDefault.Foreground(tcellColor(fg)).Background(tcellColor(bg))
}

func tcellColor(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func iabs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
