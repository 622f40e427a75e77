package layout

import (
	"errors"
	"math"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindflow/diagram"
	"mindflow/geometry"
)

var palette = []colorful.Color{
	mustHex("#ef4444"), // red
	mustHex("#f97316"), // orange
	mustHex("#f59e0b"), // amber
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

func node(id string, x, y float64) diagram.Node {
	return diagram.Node{ID: id, Title: id, Position: geometry.Pt(x, y), Size: geometry.Sz(100, 50)}
}

func conn(id, from, to string) diagram.Connector {
	return diagram.Connector{ID: id, From: from, To: to}
}

func mindMap() *diagram.Diagram {
	return &diagram.Diagram{
		Mode:   diagram.ModeMindMap,
		Canvas: diagram.Canvas{Width: 1000, Height: 800},
		Nodes: []diagram.Node{
			node("A", 100, 100),
			node("R", 450, 375),
			node("B", 800, 100),
			node("C", 450, 700),
			node("A1", 0, 0),
		},
		Connectors: []diagram.Connector{
			conn("c1", "R", "A"),
			conn("c2", "R", "B"),
			conn("c3", "R", "C"),
			conn("c4", "A", "A1"),
		},
	}
}

func TestFindRoot(t *testing.T) {
	root, ok := FindRoot(mindMap())
	require.True(t, ok)
	assert.Equal(t, "R", root)

	// Ties go to the first node.
	d := &diagram.Diagram{
		Canvas: diagram.Canvas{Width: 200, Height: 200},
		Nodes:  []diagram.Node{node("x", -50, 75), node("y", 150, 75)},
	}
	root, _ = FindRoot(d)
	assert.Equal(t, "x", root)

	_, ok = FindRoot(&diagram.Diagram{})
	assert.False(t, ok)
}

func TestBranchColorsScenario(t *testing.T) {
	colors := BranchColors(mindMap(), palette)

	assert.Equal(t, palette[0], colors["A"])
	assert.Equal(t, palette[1], colors["B"])
	assert.Equal(t, palette[2], colors["C"])
	assert.Equal(t, colors["A"], colors["A1"])
	_, rootColored := colors["R"]
	assert.False(t, rootColored)
}

func TestBranchColorsWithCycles(t *testing.T) {
	d := mindMap()
	d.Nodes = append(d.Nodes, node("lonely", 900, 700))
	d.Connectors = append(d.Connectors,
		conn("c5", "A1", "B"), // joins two branches
		conn("c6", "B", "A"),  // cycle back
		conn("c7", "A1", "A1"),
		conn("c8", "C", "ghost"),
	)

	colors := PropagateBranchColors(d, "R", palette)

	assert.Len(t, colors, 4, "A, B, C and A1 are reachable")
	assert.NotContains(t, colors, "R")
	assert.NotContains(t, colors, "lonely")
	assert.NotContains(t, colors, "ghost")
	assert.Equal(t, palette[0], colors["A1"])
}

func TestBranchColorsPaletteCycles(t *testing.T) {
	d := &diagram.Diagram{Mode: diagram.ModeMindMap}
	d.Nodes = append(d.Nodes, node("R", 0, 0))
	for i, id := range []string{"a", "b", "c", "d", "e"} {
		d.Nodes = append(d.Nodes, node(id, 0, 0))
		d.Connectors = append(d.Connectors, conn(string(rune('1'+i)), "R", id))
	}

	colors := PropagateBranchColors(d, "R", palette)
	assert.Equal(t, palette[0], colors["d"])
	assert.Equal(t, palette[1], colors["e"])
}

func TestBranchColorsFlowchart(t *testing.T) {
	d := mindMap()
	d.Mode = diagram.ModeFlowchart
	assert.Empty(t, BranchColors(d, palette))
}

func TestIsDragRoot(t *testing.T) {
	d := mindMap()
	assert.True(t, IsDragRoot(d, "R"))
	assert.False(t, IsDragRoot(d, "A"))
	assert.False(t, IsDragRoot(d, "missing"))
}

func TestDragRootIsRigid(t *testing.T) {
	d := mindMap()
	rootStart := d.Nodes[1].Position

	next, err := DragRoot(d, "R", rootStart.Add(geometry.Pt(37, -12.5)))
	require.NoError(t, err)

	for i := range d.Nodes {
		want := d.Nodes[i].Position.Add(geometry.Pt(37, -12.5))
		assert.Equal(t, want, next.Nodes[i].Position, d.Nodes[i].ID)
		for j := range d.Nodes {
			before := d.Nodes[i].Position.Distance(d.Nodes[j].Position)
			after := next.Nodes[i].Position.Distance(next.Nodes[j].Position)
			assert.InDelta(t, before, after, 1e-9)
		}
	}
	assert.Equal(t, rootStart, d.Nodes[1].Position, "start snapshot untouched")

	_, err = DragRoot(d, "nope", geometry.Point{})
	assert.True(t, errors.Is(err, diagram.ErrNodeNotFound))
}

func flowchart() *diagram.Diagram {
	return &diagram.Diagram{
		Canvas: diagram.Canvas{Width: 1000, Height: 1000},
		Nodes:  []diagram.Node{node("a", 0, 0), node("b", 0, 0), node("c", 0, 0), node("d", 0, 0)},
		Connectors: []diagram.Connector{
			conn("c1", "a", "b"),
			conn("c2", "a", "c"),
			conn("c3", "b", "d"),
		},
	}
}

func positions(d *diagram.Diagram) map[string]geometry.Point {
	out := map[string]geometry.Point{}
	for _, n := range d.Nodes {
		out[n.ID] = n.Position
	}
	return out
}

func TestTreeLayout(t *testing.T) {
	in := flowchart()
	out, err := NewTree(DefaultConfig()).Layout(in)
	require.NoError(t, err)

	got := positions(out)
	assert.Equal(t, geometry.Pt(450, 345), got["a"])
	assert.Equal(t, geometry.Pt(370, 475), got["b"])
	assert.Equal(t, geometry.Pt(530, 475), got["c"])
	assert.Equal(t, geometry.Pt(450, 605), got["d"])

	assert.Equal(t, geometry.Pt(0, 0), in.Nodes[0].Position, "input untouched")
}

func TestHorizontalTreeLayout(t *testing.T) {
	out, err := NewHorizontalTree(DefaultConfig()).Layout(flowchart())
	require.NoError(t, err)

	got := positions(out)
	assert.Equal(t, geometry.Pt(290, 475), got["a"])
	assert.Equal(t, geometry.Pt(450, 410), got["b"])
	assert.Equal(t, geometry.Pt(450, 540), got["c"])
	assert.Equal(t, geometry.Pt(610, 475), got["d"])
}

func TestTreeLayoutTerminatesOnCycles(t *testing.T) {
	d := flowchart()
	d.Connectors = []diagram.Connector{
		conn("c1", "a", "b"),
		conn("c2", "b", "c"),
		conn("c3", "c", "a"),
		conn("c4", "d", "d"),
	}

	out, err := NewTree(DefaultConfig()).Layout(d)
	require.NoError(t, err)

	got := positions(out)
	assert.Less(t, got["a"].Y, got["b"].Y)
	assert.Less(t, got["b"].Y, got["c"].Y)
}

func TestTreeLayoutKeepsMargin(t *testing.T) {
	d := flowchart()
	d.Canvas = diagram.Canvas{Width: 100, Height: 100}
	cfg := DefaultConfig()

	out, err := NewTree(cfg).Layout(d)
	require.NoError(t, err)
	for _, n := range out.Nodes {
		assert.GreaterOrEqual(t, n.Position.X, cfg.Margin)
		assert.GreaterOrEqual(t, n.Position.Y, cfg.Margin)
	}
}

func TestRadialLayout(t *testing.T) {
	cfg := DefaultConfig()
	d := mindMap()
	d.Nodes = append(d.Nodes, node("A2", 0, 0), node("A3", 0, 0))
	d.Connectors = append(d.Connectors, conn("c5", "A", "A2"), conn("c6", "A3", "A"))

	out, err := NewRadial(cfg).Layout(d)
	require.NoError(t, err)

	centers := map[string]geometry.Point{}
	for _, n := range out.Nodes {
		centers[n.ID] = n.Center()
	}

	assert.Equal(t, d.Canvas.Center(), centers["R"])
	for _, id := range []string{"A", "B", "C"} {
		assert.InDelta(t, cfg.RootRadius, centers[id].Distance(centers["R"]), 1e-9, id)
	}

	base := geometry.Angle(centers["R"], centers["A"])
	for _, id := range []string{"A1", "A2", "A3"} {
		assert.InDelta(t, cfg.ChildRadius, centers[id].Distance(centers["A"]), 1e-9, id)
		diff := math.Remainder(geometry.Angle(centers["A"], centers[id])-base, 2*math.Pi)
		assert.LessOrEqual(t, math.Abs(diff), cfg.ConeHalfAngle+1e-9, id)
	}
}

func TestRadialLeavesOtherComponents(t *testing.T) {
	d := mindMap()
	d.Nodes = append(d.Nodes, node("x", 5, 5), node("y", 9, 9))
	d.Connectors = append(d.Connectors, conn("c9", "x", "y"))

	out, err := NewRadial(DefaultConfig()).Layout(d)
	require.NoError(t, err)
	got := positions(out)
	assert.Equal(t, geometry.Pt(5, 5), got["x"])
	assert.Equal(t, geometry.Pt(9, 9), got["y"])
}

func TestPlaceChildrenFlowchart(t *testing.T) {
	d := &diagram.Diagram{Nodes: []diagram.Node{{ID: "p", Position: geometry.Pt(400, 100), Size: geometry.Sz(200, 100)}}}
	sizes := []geometry.Size{geometry.Sz(100, 50), geometry.Sz(100, 50)}

	got, err := PlaceChildren(d, "p", sizes, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []geometry.Point{geometry.Pt(370, 280), geometry.Pt(530, 280)}, got)
}

func TestPlaceChildrenMindMapRoot(t *testing.T) {
	cfg := DefaultConfig()
	d := mindMap()
	root, _ := d.Node("R")
	sizes := []geometry.Size{geometry.Sz(100, 50), geometry.Sz(100, 50), geometry.Sz(100, 50), geometry.Sz(100, 50)}

	got, err := PlaceChildren(d, "R", sizes, cfg)
	require.NoError(t, err)
	require.Len(t, got, 4)

	first := geometry.Center(got[0], sizes[0])
	assert.InDelta(t, root.Center().X, first.X, 1e-9)
	assert.InDelta(t, root.Center().Y-cfg.SubnodeRadius, first.Y, 1e-9)
}

func TestPlaceChildrenMindMapCone(t *testing.T) {
	cfg := DefaultConfig()
	d := &diagram.Diagram{
		Mode:       diagram.ModeMindMap,
		Nodes:      []diagram.Node{node("R", 0, 0), node("P", 400, 0)},
		Connectors: []diagram.Connector{conn("c1", "R", "P")},
	}
	parent, _ := d.Node("P")
	sizes := []geometry.Size{geometry.Sz(80, 40), geometry.Sz(80, 40), geometry.Sz(80, 40)}

	got, err := PlaceChildren(d, "P", sizes, cfg)
	require.NoError(t, err)

	for i, pos := range got {
		c := geometry.Center(pos, sizes[i])
		assert.InDelta(t, cfg.SubnodeRadius, c.Distance(parent.Center()), 1e-9)
		assert.LessOrEqual(t, math.Abs(geometry.Angle(parent.Center(), c)), cfg.SubnodeHalfAngle+1e-9)
	}
	mid := geometry.Center(got[1], sizes[1])
	assert.InDelta(t, parent.Center().Y, mid.Y, 1e-9, "middle child continues the incoming direction")

	_, err = PlaceChildren(d, "missing", sizes, cfg)
	assert.ErrorIs(t, err, diagram.ErrNodeNotFound)
}

func TestNew(t *testing.T) {
	for _, name := range Names() {
		e, err := New(name, DefaultConfig())
		require.NoError(t, err)
		assert.Equal(t, name, e.Name())
	}
	_, err := New("force", DefaultConfig())
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}
