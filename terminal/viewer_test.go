package terminal

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindflow/autosize"
	"mindflow/diagram"
	"mindflow/drag"
	"mindflow/editor"
	"mindflow/generate"
	"mindflow/geometry"
)

func testDiagram() *diagram.Diagram {
	return &diagram.Diagram{
		Title:  "Launch",
		Canvas: diagram.Canvas{Width: 1000, Height: 800},
		Mode:   diagram.ModeFlowchart,
		Nodes: []diagram.Node{
			{ID: "r", Kind: diagram.NodePrimary, Title: "Rootnode", Position: geometry.Pt(400, 357), Size: geometry.Sz(200, 86)},
			{ID: "a", Kind: diagram.NodePrimary, Title: "Alpha", Position: geometry.Pt(100, 100), Size: geometry.Sz(200, 86)},
			{ID: "b", Kind: diagram.NodePrimary, Title: "Beta", Position: geometry.Pt(700, 600), Size: geometry.Sz(200, 86)},
		},
		Connectors: []diagram.Connector{
			{ID: "c1", From: "r", To: "a", Kind: diagram.ConnectorFlow},
			{ID: "c2", From: "r", To: "b", Kind: diagram.ConnectorFlow},
		},
		SideBoxes: []diagram.SideBox{
			{ID: "s1", Text: "sidenote", AttachedNodeID: "a", Side: diagram.SideRight, LineStyle: diagram.LineDotted},
		},
	}
}

func newTestViewer(t *testing.T, gen generate.Generator, opts Options) (*Viewer, *editor.Editor, tcell.SimulationScreen) {
	t.Helper()

	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(80, 40)
	t.Cleanup(screen.Fini)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	win := drag.NewDispatcher()
	measure := autosize.MeasureFunc(func(string, float64) float64 { return 20 })
	ed := editor.New(testDiagram(), editor.Options{
		Sizer:     autosize.NewSizer(measure, autosize.DefaultConfig()),
		Window:    win,
		Generator: gen,
		Logger:    logger,
	})

	opts.Logger = logger
	return New(screen, ed, win, opts), ed, screen
}

func screenText(s tcell.SimulationScreen) string {
	cells, w, _ := s.GetContents()
	var b strings.Builder
	for i, c := range cells {
		if i > 0 && i%w == 0 {
			b.WriteByte('\n')
		}
		if len(c.Runes) == 0 {
			b.WriteByte(' ')
			continue
		}
		b.WriteString(string(c.Runes))
	}
	return b.String()
}

func mouse(x, y int, buttons tcell.ButtonMask) *tcell.EventMouse {
	return tcell.NewEventMouse(x, y, buttons, tcell.ModNone)
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func nodePos(t *testing.T, d *diagram.Diagram, id string) geometry.Point {
	t.Helper()
	n, ok := d.Node(id)
	require.True(t, ok, "node %s", id)
	return n.Position
}

func TestDrawShowsDiagram(t *testing.T) {
	v, _, screen := newTestViewer(t, nil, Options{})

	v.Draw()
	screen.Show()
	text := screenText(screen)

	assert.Contains(t, text, "Alpha")
	assert.Contains(t, text, "Rootnode")
	assert.Contains(t, text, "sidenote")
	assert.Contains(t, text, "flowchart", "status bar shows the mode")
	assert.Contains(t, text, string(DefaultBoxStyle.TopLeft))
	assert.NotContains(t, text, "Beta", "nodes past the screen edge are clipped")
}

func TestMouseDragCommitsOnce(t *testing.T) {
	v, ed, _ := newTestViewer(t, nil, Options{})

	// Cell (15, 8) is model (120, 128), inside node a away from its corner.
	v.HandleEvent(mouse(15, 8, tcell.Button1))
	assert.Equal(t, "a", v.Selected())

	v.HandleEvent(mouse(20, 10, tcell.Button1))
	assert.Equal(t, geometry.Pt(140, 132), nodePos(t, ed.View(), "a"))
	assert.Equal(t, geometry.Pt(100, 100), nodePos(t, ed.Committed(), "a"))

	v.HandleEvent(mouse(20, 10, tcell.ButtonNone))
	assert.Equal(t, geometry.Pt(140, 132), nodePos(t, ed.Committed(), "a"))
	_, total := ed.Stats()
	assert.Equal(t, 2, total)
}

func TestEscapeCancelsDrag(t *testing.T) {
	v, ed, _ := newTestViewer(t, nil, Options{})

	v.HandleEvent(mouse(15, 8, tcell.Button1))
	v.HandleEvent(mouse(30, 20, tcell.Button1))
	require.NotEqual(t, nodePos(t, ed.Committed(), "a"), nodePos(t, ed.View(), "a"))

	v.HandleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))
	assert.Same(t, ed.Committed(), ed.View())

	// The release after a cancel changes nothing.
	v.HandleEvent(mouse(30, 20, tcell.ButtonNone))
	_, total := ed.Stats()
	assert.Equal(t, 1, total)
}

func TestCanvasDragPansWithoutHistory(t *testing.T) {
	v, ed, _ := newTestViewer(t, nil, Options{})

	v.HandleEvent(mouse(2, 30, tcell.Button1))
	assert.Empty(t, v.Selected())
	v.HandleEvent(mouse(12, 30, tcell.Button1))
	v.HandleEvent(mouse(12, 30, tcell.ButtonNone))

	assert.Equal(t, geometry.Pt(80, 0), ed.Viewport().Pan)
	_, total := ed.Stats()
	assert.Equal(t, 1, total)
}

func TestWheelZooms(t *testing.T) {
	v, ed, _ := newTestViewer(t, nil, Options{ZoomStep: 1.25})

	v.HandleEvent(mouse(0, 0, tcell.WheelUp))
	assert.InDelta(t, 1.25, ed.Viewport().Zoom, 1e-9)

	v.HandleEvent(mouse(0, 0, tcell.WheelDown))
	assert.InDelta(t, 1.0, ed.Viewport().Zoom, 1e-9)
}

func TestKeys(t *testing.T) {
	t.Run("delete and undo", func(t *testing.T) {
		v, ed, _ := newTestViewer(t, nil, Options{})

		v.HandleEvent(tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone))
		require.Equal(t, "r", v.Selected())

		v.HandleEvent(key('d'))
		assert.Len(t, ed.View().Nodes, 2)
		assert.Empty(t, ed.View().Connectors)
		assert.Empty(t, v.Selected())

		v.HandleEvent(key('u'))
		assert.Len(t, ed.View().Nodes, 3)

		v.HandleEvent(key('U'))
		assert.Len(t, ed.View().Nodes, 2)
	})

	t.Run("delete without selection", func(t *testing.T) {
		v, ed, _ := newTestViewer(t, nil, Options{})
		v.HandleEvent(key('d'))
		assert.Len(t, ed.View().Nodes, 3)
		assert.Equal(t, "select a node first", v.Status())
	})

	t.Run("mode toggle", func(t *testing.T) {
		v, ed, _ := newTestViewer(t, nil, Options{})
		v.HandleEvent(key('m'))
		assert.True(t, ed.View().IsMindMap())
	})

	t.Run("quit", func(t *testing.T) {
		v, _, _ := newTestViewer(t, nil, Options{})
		assert.True(t, v.HandleEvent(key('q')))
		assert.True(t, v.HandleEvent(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModNone)))
		assert.False(t, v.HandleEvent(key('?')))
	})

	t.Run("save", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.json")
		v, _, _ := newTestViewer(t, nil, Options{Path: path})

		v.HandleEvent(key('s'))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		d, err := diagram.Decode(data)
		require.NoError(t, err)
		assert.Len(t, d.Nodes, 3)
	})
}

func TestReload(t *testing.T) {
	t.Run("malformed file leaves diagram untouched", func(t *testing.T) {
		v, ed, _ := newTestViewer(t, nil, Options{})
		before := ed.Committed()

		v.HandleEvent(NewReloadEvent([]byte(`{"nodes": [`), nil))

		assert.Same(t, before, ed.Committed())
		assert.Contains(t, v.Status(), "file not loaded")
	})

	t.Run("valid file commits", func(t *testing.T) {
		v, ed, _ := newTestViewer(t, nil, Options{})
		v.selected = "b"

		next := testDiagram()
		next.Nodes = next.Nodes[:2]
		data, err := diagram.Encode(next)
		require.NoError(t, err)

		v.HandleEvent(NewReloadEvent(data, nil))

		assert.Len(t, ed.View().Nodes, 2)
		assert.Empty(t, v.Selected(), "selection of a vanished node is cleared")
		assert.Equal(t, "reloaded", v.Status())
	})

	t.Run("read error", func(t *testing.T) {
		v, _, _ := newTestViewer(t, nil, Options{})
		v.HandleEvent(NewReloadEvent(nil, errors.New("gone")))
		assert.Equal(t, "reload failed: gone", v.Status())
	})
}

func TestExpandPostsResult(t *testing.T) {
	mock := &generate.Mock{Children: []generate.Child{{Title: "One"}, {Title: "Two"}}}
	v, ed, screen := newTestViewer(t, mock, Options{ExpandCount: 2})
	v.selected = "a"

	v.HandleEvent(key('x'))

	events := make(chan tcell.Event)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-events:
			if _, ok := ev.(*GeneratedEvent); !ok {
				continue
			}
			v.HandleEvent(ev)
			assert.Equal(t, "expanded a", v.Status())
			assert.Len(t, ed.View().Nodes, 5)
			return
		case <-timeout:
			t.Fatal("no generation result posted")
		}
	}
}

func TestGenerationFailureMessage(t *testing.T) {
	v, _, _ := newTestViewer(t, nil, Options{})
	ev := &GeneratedEvent{Err: generate.ErrTransient}
	v.HandleEvent(ev)
	assert.Equal(t, generate.UserMessage(generate.ErrTransient), v.Status())
}

func TestWatchPostsReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "map.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan tcell.Event, 16)
	post := func(ev tcell.Event) error {
		events <- ev
		return nil
	}
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, post, 10*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
	}()

	content := []byte(`{"title": "changed"}`)
	var got *ReloadEvent
	require.Eventually(t, func() bool {
		// Keep writing until the watcher is registered and sees a change.
		_ = os.WriteFile(path, content, 0o644)
		select {
		case ev := <-events:
			got, _ = ev.(*ReloadEvent)
			return got != nil
		default:
			return false
		}
	}, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, got.Err)
	assert.Equal(t, content, got.Data)

	cancel()
	assert.NoError(t, <-done)
}
