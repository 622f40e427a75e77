// Package terminal hosts the editor in a tcell screen: mouse drags, keyboard
// commands, live reload and asynchronous generation results all arrive as
// events on one loop.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"mindflow/diagram"
	"mindflow/drag"
	"mindflow/editor"
	"mindflow/generate"
	"mindflow/geometry"
	"mindflow/layout"
	"mindflow/render"
	"mindflow/theme"
)

// Options configures a Viewer. Zero values get defaults.
type Options struct {
	// Path is where 's' saves the diagram. Empty disables saving.
	Path  string
	Theme theme.Theme
	// CellWidth and CellHeight are the screen units covered by one cell.
	CellWidth  float64
	CellHeight float64
	ZoomStep   float64
	PanStep    float64
	// ExpandCount is how many children 'x' asks for.
	ExpandCount int
	Timeout     time.Duration
	// Scene holds the routing and placement options.
	Scene  render.Options
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Theme.Name == "" {
		o.Theme = theme.Dark
	}
	if o.CellWidth <= 0 {
		o.CellWidth = 8
	}
	if o.CellHeight <= 0 {
		o.CellHeight = 16
	}
	if o.ZoomStep <= 1 {
		o.ZoomStep = 1.2
	}
	if o.PanStep <= 0 {
		o.PanStep = 40
	}
	if o.ExpandCount <= 0 {
		o.ExpandCount = 4
	}
	if o.Timeout <= 0 {
		o.Timeout = 90 * time.Second
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// ReloadEvent carries new file contents from the watcher.
type ReloadEvent struct {
	tcell.EventTime
	Data []byte
	Err  error
}

// NewReloadEvent stamps a reload event with the current time.
func NewReloadEvent(data []byte, err error) *ReloadEvent {
	ev := &ReloadEvent{Data: data, Err: err}
	ev.SetEventNow()
	return ev
}

// GeneratedEvent reports the end of a generation request.
type GeneratedEvent struct {
	tcell.EventTime
	What string
	Err  error
}

// Viewer draws the editor's diagram and turns screen events into editor
// operations.
type Viewer struct {
	screen tcell.Screen
	ed     *editor.Editor
	win    *drag.Dispatcher
	opts   Options

	active   *drag.Controller
	selected string
	status   string
	ctx      context.Context
}

// New creates a viewer. win must be the dispatcher the editor's drag
// controllers attach to.
func New(screen tcell.Screen, ed *editor.Editor, win *drag.Dispatcher, opts Options) *Viewer {
	opts = opts.withDefaults()
	return &Viewer{
		screen: screen,
		ed:     ed,
		win:    win,
		opts:   opts,
		ctx:    context.Background(),
		status: "? for help",
	}
}

// Run draws and handles events until the user quits or ctx is done. The
// screen must already be initialised.
func (v *Viewer) Run(ctx context.Context) error {
	v.ctx = ctx
	stop := context.AfterFunc(ctx, func() {
		v.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	defer stop()

	for {
		v.Draw()
		v.screen.Show()

		ev := v.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if v.HandleEvent(ev) {
			return nil
		}
	}
}

// HandleEvent applies one event. It returns true when the viewer should
// quit.
func (v *Viewer) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		v.screen.Sync()
	case *tcell.EventKey:
		return v.handleKey(ev)
	case *tcell.EventMouse:
		v.handleMouse(ev)
	case *ReloadEvent:
		v.reload(ev)
	case *GeneratedEvent:
		if ev.Err != nil {
			v.status = generate.UserMessage(ev.Err)
		} else {
			v.status = ev.What
		}
	case *tcell.EventInterrupt:
		return true
	}
	return false
}

// Selected returns the selected node id.
func (v *Viewer) Selected() string {
	return v.selected
}

// Status returns the status line message.
func (v *Viewer) Status() string {
	return v.status
}

func (v *Viewer) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		return true
	case tcell.KeyCtrlR:
		v.redo()
	case tcell.KeyCtrlS:
		v.save()
	case tcell.KeyEscape:
		if v.active != nil {
			v.active.Cancel()
			v.active = nil
			v.status = "drag cancelled"
		} else {
			v.selected = ""
		}
	case tcell.KeyTab:
		v.cycleSelection(1)
	case tcell.KeyBacktab:
		v.cycleSelection(-1)
	case tcell.KeyUp:
		v.ed.Viewport().PanBy(geometry.Pt(0, v.opts.PanStep))
	case tcell.KeyDown:
		v.ed.Viewport().PanBy(geometry.Pt(0, -v.opts.PanStep))
	case tcell.KeyLeft:
		v.ed.Viewport().PanBy(geometry.Pt(v.opts.PanStep, 0))
	case tcell.KeyRight:
		v.ed.Viewport().PanBy(geometry.Pt(-v.opts.PanStep, 0))
	case tcell.KeyDelete, tcell.KeyBackspace, tcell.KeyBackspace2:
		v.deleteSelected()
	case tcell.KeyRune:
		return v.handleNormalKey(ev.Rune())
	}
	return false
}

// handleNormalKey processes single-letter commands.
func (v *Viewer) handleNormalKey(key rune) bool {
	switch key {
	case 'q': // quit
		return true

	case 'u': // undo
		if v.ed.Undo() {
			v.status = v.historyStatus("undo")
		} else {
			v.status = "nothing to undo"
		}

	case 'U': // redo
		v.redo()

	case 'd': // delete selected node
		v.deleteSelected()

	case 't':
		v.applyLayout(layout.AlgorithmTree)
	case 'h':
		v.applyLayout(layout.AlgorithmHorizontal)
	case 'o':
		v.applyLayout(layout.AlgorithmRadial)

	case 'm': // toggle flowchart and mind map
		mode := diagram.ModeMindMap
		if v.ed.View().IsMindMap() {
			mode = diagram.ModeFlowchart
		}
		v.ed.SetMode(mode)
		v.status = "mode: " + string(mode)

	case 'a': // re-measure everything
		if v.ed.AutoSize() {
			v.status = "resized nodes"
		} else {
			v.status = "sizes unchanged"
		}

	case '+', '=':
		v.zoomBy(v.opts.ZoomStep)
	case '-', '_':
		v.zoomBy(1 / v.opts.ZoomStep)
	case '0': // reset view
		v.ed.Viewport().SetZoom(1)
		v.ed.Viewport().SetPan(geometry.Point{})

	case 'x': // expand selected node
		v.expandSelected()

	case 's':
		v.save()

	case '?':
		v.status = "drag nodes · t/h/o layout · m mode · u/U undo/redo · d delete · x expand · +/- zoom · s save · q quit"
	}
	return false
}

func (v *Viewer) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	pos := v.screenPoint(x, y)
	buttons := ev.Buttons()

	switch {
	case buttons&tcell.WheelUp != 0:
		v.zoomAt(v.opts.ZoomStep, pos)
	case buttons&tcell.WheelDown != 0:
		v.zoomAt(1/v.opts.ZoomStep, pos)

	case buttons&tcell.Button1 != 0:
		if v.active != nil {
			v.win.Move(drag.MouseAt(pos.X, pos.Y))
			return
		}
		c := v.controllerAt(pos)
		if c.PointerDown(drag.MouseAt(pos.X, pos.Y)) {
			v.active = c
		}

	case buttons&(tcell.Button2|tcell.Button3) != 0:
		// Only the primary button drags.

	default:
		if v.active != nil {
			v.win.Up(drag.MouseAt(pos.X, pos.Y))
			v.active = nil
		}
	}
}

// controllerAt picks what a press at pos drags: the panel, a node's resize
// corner, a node, or else the canvas. Later elements are drawn on top and
// win.
func (v *Viewer) controllerAt(pos geometry.Point) *drag.Controller {
	vp := v.ed.Viewport()
	model := vp.ScreenToModel(pos)
	d := v.ed.View()

	if p := d.Panel; p != nil && geometry.Bounds(p.Position, p.Size).Contains(model.Curve()) {
		return v.ed.PanelDrag()
	}

	handleW := v.opts.CellWidth / vp.Zoom
	handleH := v.opts.CellHeight / vp.Zoom
	for i := len(d.Nodes) - 1; i >= 0; i-- {
		n := d.Nodes[i]
		if !n.Contains(model) {
			continue
		}
		v.selected = n.ID
		if model.X >= n.Right()-handleW && model.Y >= n.Bottom()-handleH {
			return v.ed.ResizeDrag(n.ID)
		}
		return v.ed.NodeDrag(n.ID)
	}

	v.selected = ""
	return v.ed.CanvasDrag()
}

func (v *Viewer) screenPoint(x, y int) geometry.Point {
	return geometry.Pt(float64(x)*v.opts.CellWidth, float64(y)*v.opts.CellHeight)
}

// cellOf returns the cell showing model point p.
func (v *Viewer) cellOf(p geometry.Point) (int, int) {
	s := v.ed.Viewport().ModelToScreen(p)
	return int(math.Floor(s.X / v.opts.CellWidth)), int(math.Floor(s.Y / v.opts.CellHeight))
}

func (v *Viewer) zoomBy(factor float64) {
	w, h := v.screen.Size()
	v.zoomAt(factor, v.screenPoint(w/2, h/2))
}

func (v *Viewer) zoomAt(factor float64, focal geometry.Point) {
	vp := v.ed.Viewport()
	vp.ZoomAt(vp.Zoom*factor, focal)
	v.status = fmt.Sprintf("zoom %.0f%%", vp.Zoom*100)
}

func (v *Viewer) redo() {
	if v.ed.Redo() {
		v.status = v.historyStatus("redo")
	} else {
		v.status = "nothing to redo"
	}
}

func (v *Viewer) historyStatus(action string) string {
	cur, total := v.ed.Stats()
	return fmt.Sprintf("%s (%d/%d)", action, cur, total)
}

func (v *Viewer) cycleSelection(step int) {
	nodes := v.ed.View().Nodes
	if len(nodes) == 0 {
		return
	}
	next := 0
	for i, n := range nodes {
		if n.ID == v.selected {
			next = ((i+step)%len(nodes) + len(nodes)) % len(nodes)
			break
		}
	}
	v.selected = nodes[next].ID
}

func (v *Viewer) deleteSelected() {
	if v.selected == "" {
		v.status = "select a node first"
		return
	}
	if err := v.ed.DeleteNode(v.selected); err != nil {
		v.status = err.Error()
		return
	}
	v.status = "deleted " + v.selected
	v.selected = ""
}

func (v *Viewer) applyLayout(name string) {
	if err := v.ed.ApplyLayout(name); err != nil {
		v.status = err.Error()
		return
	}
	v.status = name + " layout"
}

func (v *Viewer) expandSelected() {
	if v.selected == "" {
		v.status = "select a node to expand"
		return
	}
	if v.ed.Generating() {
		v.status = "generation already running"
		return
	}

	id := v.selected
	v.status = "expanding " + id + "..."
	go func() {
		ctx, cancel := context.WithTimeout(v.ctx, v.opts.Timeout)
		defer cancel()
		err := v.ed.Expand(ctx, id, v.opts.ExpandCount)
		ev := &GeneratedEvent{What: "expanded " + id, Err: err}
		ev.SetEventNow()
		if postErr := v.screen.PostEvent(ev); postErr != nil {
			v.opts.Logger.Warn("dropped generation result", "error", postErr)
		}
	}()
}

func (v *Viewer) save() {
	if v.opts.Path == "" {
		v.status = "no file to save to"
		return
	}
	data, err := diagram.Encode(v.ed.Committed())
	if err != nil {
		v.status = err.Error()
		return
	}
	if err := os.WriteFile(v.opts.Path, data, 0o644); err != nil {
		v.status = "save failed: " + err.Error()
		v.opts.Logger.Error("save failed", "path", v.opts.Path, "error", err)
		return
	}
	v.status = "saved " + v.opts.Path
}

func (v *Viewer) reload(ev *ReloadEvent) {
	if ev.Err != nil {
		v.status = "reload failed: " + ev.Err.Error()
		return
	}
	if err := v.ed.Load(ev.Data); err != nil {
		var decErr *diagram.DecodeError
		if errors.As(err, &decErr) {
			v.status = "file not loaded: " + decErr.Error()
		} else {
			v.status = err.Error()
		}
		return
	}
	if v.selected != "" && v.ed.View().NodeIndex(v.selected) < 0 {
		v.selected = ""
	}
	v.status = "reloaded"
}
