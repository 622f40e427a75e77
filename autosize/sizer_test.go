package autosize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindflow/diagram"
	"mindflow/geometry"
)

// fixed returns a measurer that reports the height listed for each text,
// and counts calls.
func fixed(heights map[string]float64, calls *int) Measurer {
	return MeasureFunc(func(text string, width float64) float64 {
		if calls != nil {
			*calls++
		}
		return heights[text]
	})
}

func TestNodeHeightScenario(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TitleGap = 0
	s := NewSizer(fixed(map[string]float64{"X": 20, "long description": 100}, nil), cfg)

	n := diagram.Node{ID: "a", Title: "X", Description: "long description", Size: geometry.Sz(240, 86)}
	assert.Equal(t, 160.0, s.NodeHeight(n, diagram.ModeFlowchart))
}

func TestNodeHeightMindMapIgnoresDescription(t *testing.T) {
	s := NewSizer(fixed(map[string]float64{"X": 20, "long description": 100}, nil), DefaultConfig())

	n := diagram.Node{ID: "a", Title: "X", Description: "long description", Size: geometry.Sz(240, 86)}
	assert.Equal(t, 86.0, s.NodeHeight(n, diagram.ModeMindMap), "title alone stays under the floor")
}

func TestNodeHeightFloor(t *testing.T) {
	s := NewSizer(fixed(nil, nil), DefaultConfig())
	for _, title := range []string{"", "a", strings.Repeat("word ", 3)} {
		h := s.NodeHeight(diagram.Node{Title: title, Size: geometry.Sz(10, 0)}, diagram.ModeFlowchart)
		if h < DefaultConfig().MinNodeHeight {
			t.Errorf("height %v below the minimum for %q", h, title)
		}
	}
}

func TestApplyHysteresisAndFingerprint(t *testing.T) {
	calls := 0
	heights := map[string]float64{"T": 50}
	s := NewSizer(fixed(heights, &calls), DefaultConfig())

	d := &diagram.Diagram{Nodes: []diagram.Node{
		{ID: "a", Title: "T", Size: geometry.Sz(200, 90.2)},
	}}

	// 50 + 40 = 90, within epsilon of 90.2.
	next, changed := s.Apply(d)
	assert.False(t, changed)
	assert.Same(t, d, next)
	assert.Equal(t, 1, calls)

	// Unchanged inputs are not measured again.
	s.Apply(d)
	assert.Equal(t, 1, calls)

	// A title change triggers a measurement and a real change.
	d.Nodes[0].Title = "Longer"
	heights["Longer"] = 80
	next, changed = s.Apply(d)
	require.True(t, changed)
	assert.Equal(t, 120.0, next.Nodes[0].Size.H)
	assert.Equal(t, 90.2, d.Nodes[0].Size.H, "input snapshot is not mutated")

	// So does a width change.
	calls = 0
	d2 := next.Clone()
	d2.Nodes[0].Size.W = 300
	s.Apply(d2)
	assert.Equal(t, 1, calls)

	// And a layout mode change.
	calls = 0
	d2.Mode = diagram.ModeMindMap
	s.Apply(d2)
	assert.Equal(t, 1, calls)
}

func TestApplyRestoresHeightBelowMeasured(t *testing.T) {
	calls := 0
	s := NewSizer(fixed(map[string]float64{"T": 50}, &calls), DefaultConfig())

	d := &diagram.Diagram{Nodes: []diagram.Node{{ID: "a", Title: "T", Size: geometry.Sz(200, 90)}}}
	s.Apply(d)
	require.Equal(t, 1, calls)

	// Same inputs, height squashed from outside.
	shrunk := d.Clone()
	shrunk.Nodes[0].Size.H = 10
	next, changed := s.Apply(shrunk)
	require.True(t, changed)
	assert.Equal(t, 90.0, next.Nodes[0].Size.H)
	assert.Equal(t, 1, calls, "cached height is reused")

	// Taller than measured is kept.
	tall := d.Clone()
	tall.Nodes[0].Size.H = 200
	next, changed = s.Apply(tall)
	assert.False(t, changed)
	assert.Same(t, tall, next)
}

func TestLayoutPanel(t *testing.T) {
	cfg := DefaultConfig()
	s := NewSizer(fixed(map[string]float64{"one": 20, "two": 60}, nil), cfg)

	p := &diagram.SupportingPanel{
		Size:  geometry.Sz(260, 0),
		Items: []diagram.PanelItem{{ID: "1", Title: "one"}, {ID: "2", Title: "two"}},
	}
	l := s.LayoutPanel(p)

	// one: max(56, 20+24) = 56; two: max(56, 60+24) = 84
	assert.Equal(t, []float64{56, 84}, l.Heights)
	assert.Equal(t, []float64{56, 56 + 56 + 12}, l.Offsets)
	assert.Equal(t, 56+56+12+84+16.0, l.Height)
}

func TestLayoutPanelMinimum(t *testing.T) {
	s := NewSizer(fixed(nil, nil), DefaultConfig())

	l := s.LayoutPanel(&diagram.SupportingPanel{MinHeight: 300})
	assert.Equal(t, 300.0, l.Height)

	l = s.LayoutPanel(&diagram.SupportingPanel{})
	assert.Equal(t, 120.0, l.Height)
}

func TestApplyPanel(t *testing.T) {
	s := NewSizer(fixed(map[string]float64{"one": 20}, nil), DefaultConfig())
	d := &diagram.Diagram{Panel: &diagram.SupportingPanel{
		Size:  geometry.Sz(260, 10),
		Items: []diagram.PanelItem{{ID: "1", Title: "one"}},
	}}

	next, changed := s.Apply(d)
	require.True(t, changed)
	assert.Equal(t, 56.0, next.Panel.Items[0].Height)
	assert.Equal(t, 128.0, next.Panel.Size.H)
}
