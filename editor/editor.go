// Package editor ties the diagram history, live edits, the viewport and the
// drag controllers into one editing session.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/lucasb-eyer/go-colorful"

	"mindflow/autosize"
	"mindflow/diagram"
	"mindflow/drag"
	"mindflow/generate"
	"mindflow/geometry"
	"mindflow/layout"
	"mindflow/viewport"
)

var (
	// ErrGenerationInFlight is returned when a generation is requested while
	// another one has not finished.
	ErrGenerationInFlight = errors.New("a generation request is already running")
	// ErrNoGenerator is returned by Generate and Expand when the editor was
	// built without a Generator.
	ErrNoGenerator = errors.New("no generator configured")
)

// Options configures an Editor. Zero values get defaults.
type Options struct {
	Sizer        *autosize.Sizer
	Layout       layout.Config
	Palette      []colorful.Color
	HistoryLimit int
	Window       drag.Window
	Generator    generate.Generator
	Logger       *slog.Logger
}

// Editor is one editing session. The committed diagram lives in the
// history; an in-progress drag or resize lives in a separate live snapshot
// until its commit step. The viewport is never versioned.
type Editor struct {
	mu         sync.Mutex
	history    *History
	live       *diagram.Diagram
	view       *viewport.Viewport
	sizer      *autosize.Sizer
	layoutCfg  layout.Config
	palette    []colorful.Color
	window     drag.Window
	gen        generate.Generator
	logger     *slog.Logger
	generating bool
	// dragging holds the element drags with an open session.
	dragging map[*drag.Controller]struct{}
}

// New creates an editor showing initial. The initial diagram is auto-sized
// before it becomes the first history entry.
func New(initial *diagram.Diagram, opts Options) *Editor {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Sizer == nil {
		opts.Sizer = autosize.NewSizer(autosize.CellMeasurer{}, autosize.DefaultConfig())
	}
	if opts.Layout == (layout.Config{}) {
		opts.Layout = layout.DefaultConfig()
	}
	if opts.Window == nil {
		opts.Window = drag.NewDispatcher()
	}
	if initial == nil {
		initial = &diagram.Diagram{Canvas: diagram.Canvas{}.Clamp()}
	}

	sized, _ := opts.Sizer.Apply(initial)
	return &Editor{
		history:   NewHistory(sized, opts.HistoryLimit),
		view:      viewport.New(),
		sizer:     opts.Sizer,
		layoutCfg: opts.Layout,
		palette:   opts.Palette,
		window:    opts.Window,
		gen:       opts.Generator,
		logger:    opts.Logger,
		dragging:  make(map[*drag.Controller]struct{}),
	}
}

// View returns the diagram to draw: the live snapshot during a drag,
// otherwise the committed one. Callers must not modify it.
func (e *Editor) View() *diagram.Diagram {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current()
}

// Committed returns the diagram at the current history position.
func (e *Editor) Committed() *diagram.Diagram {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Current()
}

// Viewport returns the session's viewport.
func (e *Editor) Viewport() *viewport.Viewport {
	return e.view
}

// Window returns the event source drag controllers attach to.
func (e *Editor) Window() drag.Window {
	return e.window
}

// Stats returns the current history position and the number of entries.
func (e *Editor) Stats() (current, total int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Stats()
}

// CanUndo reports whether Undo would move.
func (e *Editor) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.CanUndo()
}

// CanRedo reports whether Redo would move.
func (e *Editor) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.CanRedo()
}

// Commit auto-sizes d and appends it to the history. A diagram equal to
// the current entry creates no entry.
func (e *Editor) Commit(d *diagram.Diagram) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.commit(d)
}

// Undo steps back one entry. An element drag in progress is cancelled
// first so its release cannot commit over the restored entry.
func (e *Editor) Undo() bool {
	e.cancelDrags()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.live = nil
	return e.history.Undo()
}

// Redo steps forward one entry, cancelling any element drag like Undo.
func (e *Editor) Redo() bool {
	e.cancelDrags()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.live = nil
	return e.history.Redo()
}

// cancelDrags ends every open element drag. Cancel re-enters the editor
// through OnCancel, so it runs without mu held.
func (e *Editor) cancelDrags() {
	e.mu.Lock()
	open := make([]*drag.Controller, 0, len(e.dragging))
	for c := range e.dragging {
		open = append(open, c)
	}
	e.mu.Unlock()

	for _, c := range open {
		c.Cancel()
	}
}

// Load decodes a document and commits it. A malformed document leaves the
// session untouched and returns the *diagram.DecodeError.
func (e *Editor) Load(data []byte) error {
	d, err := diagram.Decode(data)
	if err != nil {
		e.logger.Warn("rejected document", "error", err)
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.live = nil
	e.commit(d)
	return nil
}

// DeleteNode removes a node with its connectors and attached side boxes.
func (e *Editor) DeleteNode(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	next, err := e.history.Current().WithoutNode(id)
	if err != nil {
		return err
	}
	e.commit(next)
	e.logger.Debug("deleted node", "id", id)
	return nil
}

// DeleteConnector removes one connector. Unknown ids are ignored.
func (e *Editor) DeleteConnector(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.commit(e.history.Current().WithoutConnector(id))
}

// SetText changes a node's title and description. The node is re-measured
// as part of the commit.
func (e *Editor) SetText(id, title, description string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	next := e.history.Current().Clone()
	i := next.NodeIndex(id)
	if i < 0 {
		return fmt.Errorf("set text of %q: %w", id, diagram.ErrNodeNotFound)
	}
	next.Nodes[i].Title = title
	next.Nodes[i].Description = description
	e.commit(next)
	return nil
}

// SetMode switches between flowchart and mind map drawing.
func (e *Editor) SetMode(mode diagram.LayoutMode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	next := e.history.Current().Clone()
	next.Mode = mode
	e.commit(next)
}

// AutoSize re-measures every node and panel item. It commits only when a
// height changed.
func (e *Editor) AutoSize() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sizer.Forget()
	cur := e.history.Current()
	next, changed := e.sizer.Apply(cur)
	if changed {
		e.history.Commit(next)
	}
	return changed
}

// ApplyLayout arranges the committed diagram with the named algorithm and
// commits the result.
func (e *Editor) ApplyLayout(name string) error {
	engine, err := layout.New(name, e.layoutCfg)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	next, err := engine.Layout(e.history.Current())
	if err != nil {
		return fmt.Errorf("%s layout: %w", engine.Name(), err)
	}
	e.live = nil
	e.commit(next)
	e.logger.Debug("applied layout", "algorithm", engine.Name())
	return nil
}

// BranchColors returns the propagated branch colors of the shown diagram.
// Flowcharts have none.
func (e *Editor) BranchColors() map[string]colorful.Color {
	return layout.BranchColors(e.View(), e.palette)
}

// NodeDrag returns a controller that moves a node. In a mind map the root
// carries the whole diagram with it.
func (e *Editor) NodeDrag(id string) *drag.Controller {
	var start *diagram.Diagram
	move := func(p geometry.Point) *diagram.Diagram {
		if start == nil {
			return nil
		}
		if start.IsMindMap() && layout.IsDragRoot(start, id) {
			next, err := layout.DragRoot(start, id, p)
			if err != nil {
				return nil
			}
			return next
		}
		next := start.Clone()
		if err := next.SetNodePosition(id, p); err != nil {
			return nil
		}
		return next
	}

	return e.elementDrag(
		func(d *diagram.Diagram) geometry.Point {
			start = d
			n, _ := d.Node(id)
			return n.Position
		},
		move,
	)
}

// ResizeDrag returns a controller for a node's resize handle. The dragged
// position is the node's size; negative sizes are clamped.
func (e *Editor) ResizeDrag(id string) *drag.Controller {
	var start *diagram.Diagram
	return e.elementDrag(
		func(d *diagram.Diagram) geometry.Point {
			start = d
			n, _ := d.Node(id)
			return geometry.Pt(n.Size.W, n.Size.H)
		},
		func(p geometry.Point) *diagram.Diagram {
			if start == nil {
				return nil
			}
			next := start.Clone()
			if err := next.SetNodeSize(id, geometry.Sz(p.X, p.Y)); err != nil {
				return nil
			}
			return next
		},
	)
}

// PanelDrag returns a controller that moves the supporting panel.
func (e *Editor) PanelDrag() *drag.Controller {
	var start *diagram.Diagram
	return e.elementDrag(
		func(d *diagram.Diagram) geometry.Point {
			start = d
			if d.Panel == nil {
				return geometry.Point{}
			}
			return d.Panel.Position
		},
		func(p geometry.Point) *diagram.Diagram {
			if start == nil || start.Panel == nil {
				return nil
			}
			next := start.Clone()
			next.Panel.Position = p
			return next
		},
	)
}

// CanvasDrag returns a controller that pans the viewport. Panning is not
// recorded in the history.
func (e *Editor) CanvasDrag() *drag.Controller {
	return e.view.CanvasDrag(e.window, func(p geometry.Point) {
		e.logger.Debug("panned", "x", p.X, "y", p.Y)
	})
}

// elementDrag builds a drag controller over the committed diagram. begin
// records the snapshot the drag starts from and returns the element's
// position; apply turns a dragged position into a new snapshot, or nil
// when the element has gone.
func (e *Editor) elementDrag(begin func(*diagram.Diagram) geometry.Point, apply func(geometry.Point) *diagram.Diagram) *drag.Controller {
	var c *drag.Controller
	c = drag.NewController(drag.Options{
		Position: func() geometry.Point {
			e.mu.Lock()
			defer e.mu.Unlock()
			e.dragging[c] = struct{}{}
			return begin(e.history.Current())
		},
		Scale: func() float64 { return e.view.Zoom },
		OnLive: func(p geometry.Point) {
			next := apply(p)
			e.mu.Lock()
			defer e.mu.Unlock()
			e.live = next
		},
		OnCommit: func(p geometry.Point) {
			next := apply(p)
			e.mu.Lock()
			defer e.mu.Unlock()
			delete(e.dragging, c)
			e.live = nil
			if next != nil {
				e.commit(next)
			}
		},
		OnCancel: func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			delete(e.dragging, c)
			e.live = nil
		},
		Window: e.window,
	})
	return c
}

// Generate replaces the diagram with a generated one. Only one request may
// run at a time. The call runs without holding the editor lock; on success
// the result is laid out and committed as one entry, on failure nothing
// changes.
func (e *Editor) Generate(ctx context.Context, req generate.Request) error {
	if err := e.beginGeneration(); err != nil {
		return err
	}
	defer e.endGeneration()

	e.logger.Info("generating diagram", "topic", req.Topic, "mode", req.Mode, "detail", req.Detail)
	d, err := e.gen.GenerateDiagram(ctx, req)
	if err != nil {
		e.logger.Warn("generation failed", "error", err)
		return err
	}

	algorithm := layout.AlgorithmTree
	if d.IsMindMap() {
		algorithm = layout.AlgorithmRadial
	}
	engine, err := layout.New(algorithm, e.layoutCfg)
	if err != nil {
		return err
	}
	// Sizes first so the layout spaces measured boxes.
	e.mu.Lock()
	sized, _ := e.sizer.Apply(d)
	e.mu.Unlock()
	arranged, err := engine.Layout(sized)
	if err != nil {
		return fmt.Errorf("%s layout: %w", engine.Name(), err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.live = nil
	e.commit(arranged)
	e.logger.Info("generated diagram", "nodes", len(arranged.Nodes), "connectors", len(arranged.Connectors))
	return nil
}

// Expand asks the generator for count new children of nodeID and places
// them around it.
func (e *Editor) Expand(ctx context.Context, nodeID string, count int) error {
	e.mu.Lock()
	base := e.history.Current()
	e.mu.Unlock()

	parent, ok := base.Node(nodeID)
	if !ok {
		return fmt.Errorf("expand %q: %w", nodeID, diagram.ErrNodeNotFound)
	}
	if err := e.beginGeneration(); err != nil {
		return err
	}
	defer e.endGeneration()

	children, err := e.gen.ExpandNode(ctx, generate.ExpandRequest{
		Topic:       base.Title,
		Parent:      parent.Title,
		Description: parent.Description,
		Count:       count,
		Mode:        base.GetMode(),
	})
	if err != nil {
		e.logger.Warn("expansion failed", "node", nodeID, "error", err)
		return err
	}
	if len(children) == 0 {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	next := e.history.Current().Clone()
	if next.NodeIndex(nodeID) < 0 {
		return fmt.Errorf("expand %q: %w", nodeID, diagram.ErrNodeNotFound)
	}

	sizes := make([]geometry.Size, len(children))
	for i := range sizes {
		sizes[i] = geometry.Sz(parent.Size.W, generate.DefaultNodeSize.H)
		if sizes[i].W <= 0 {
			sizes[i].W = generate.DefaultNodeSize.W
		}
	}
	positions, err := layout.PlaceChildren(next, nodeID, sizes, e.layoutCfg)
	if err != nil {
		return err
	}

	for i, c := range children {
		id := diagram.NextNodeID(next)
		next.Nodes = append(next.Nodes, diagram.Node{
			ID:          id,
			Kind:        diagram.NodePrimary,
			Title:       c.Title,
			Description: c.Description,
			Icon:        c.Icon,
			Position:    positions[i],
			Size:        sizes[i],
		})
		next.Connectors = append(next.Connectors, diagram.Connector{
			ID:   diagram.NextConnectorID(next),
			From: nodeID,
			To:   id,
			Kind: diagram.ConnectorFlow,
		})
	}
	e.live = nil
	e.commit(next)
	e.logger.Info("expanded node", "node", nodeID, "children", len(children))
	return nil
}

// Generating reports whether a generation request is running.
func (e *Editor) Generating() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generating
}

func (e *Editor) beginGeneration() error {
	if e.gen == nil {
		return ErrNoGenerator
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.generating {
		return ErrGenerationInFlight
	}
	e.generating = true
	return nil
}

func (e *Editor) endGeneration() {
	e.mu.Lock()
	e.generating = false
	e.mu.Unlock()
}

func (e *Editor) current() *diagram.Diagram {
	if e.live != nil {
		return e.live
	}
	return e.history.Current()
}

// commit must be called with mu held.
func (e *Editor) commit(d *diagram.Diagram) {
	sized, _ := e.sizer.Apply(d)
	if reflect.DeepEqual(sized, e.history.Current()) {
		return
	}
	e.history.Commit(sized)
}
