// Package autosize derives node and panel item heights from their text.
package autosize

import (
	"math"

	"mindflow/diagram"
)

// Config holds the sizing constants. All values are model units.
type Config struct {
	MinNodeHeight     float64 `yaml:"min_node_height"`
	VerticalPadding   float64 `yaml:"vertical_padding"`
	HorizontalPadding float64 `yaml:"horizontal_padding"`
	TitleGap          float64 `yaml:"title_gap"`
	Epsilon           float64 `yaml:"epsilon"`

	MinItemHeight  float64 `yaml:"min_item_height"`
	ItemPadding    float64 `yaml:"item_padding"`
	ItemGap        float64 `yaml:"item_gap"`
	HeaderHeight   float64 `yaml:"header_height"`
	ClosingMargin  float64 `yaml:"closing_margin"`
	PanelMinHeight float64 `yaml:"panel_min_height"`
}

// DefaultConfig returns the standard sizing constants.
func DefaultConfig() Config {
	return Config{
		MinNodeHeight:     86,
		VerticalPadding:   40,
		HorizontalPadding: 16,
		TitleGap:          4,
		Epsilon:           0.5,
		MinItemHeight:     56,
		ItemPadding:       24,
		ItemGap:           12,
		HeaderHeight:      56,
		ClosingMargin:     16,
		PanelMinHeight:    120,
	}
}

// fingerprint captures every input that can change a node's height.
type fingerprint struct {
	title       string
	description string
	width       float64
	mode        diagram.LayoutMode
}

// measurement is the last height computed for a fingerprint.
type measurement struct {
	fp     fingerprint
	height float64
}

// Sizer recomputes heights when their inputs change. It remembers what it
// measured last per node so unchanged nodes are not measured again. A node
// whose height was changed elsewhere (a resize, a loaded document) is lifted
// back to its measured height when it has fallen below it.
type Sizer struct {
	cfg      Config
	measurer Measurer
	seen     map[string]measurement
}

// NewSizer creates a sizer.
func NewSizer(m Measurer, cfg Config) *Sizer {
	return &Sizer{cfg: cfg, measurer: m, seen: make(map[string]measurement)}
}

// Config returns the sizing constants.
func (s *Sizer) Config() Config {
	return s.cfg
}

// NodeHeight returns the height a node should have in the given mode.
// Mind-map nodes only show their title; flowchart nodes also show the
// description. The result is never below MinNodeHeight.
func (s *Sizer) NodeHeight(n diagram.Node, mode diagram.LayoutMode) float64 {
	width := s.textWidth(n.Size.W)
	measured := s.measurer.Height(n.Title, width)
	if mode != diagram.ModeMindMap && n.Description != "" {
		if measured > 0 {
			measured += s.cfg.TitleGap
		}
		measured += s.measurer.Height(n.Description, width)
	}
	return math.Max(s.cfg.MinNodeHeight, measured+s.cfg.VerticalPadding)
}

// ItemHeight returns the height of one supporting panel item.
func (s *Sizer) ItemHeight(item diagram.PanelItem, panelWidth float64) float64 {
	width := s.textWidth(panelWidth)
	measured := s.measurer.Height(item.Title, width)
	if item.Description != "" {
		measured += s.cfg.TitleGap + s.measurer.Height(item.Description, width)
	}
	return math.Max(s.cfg.MinItemHeight, measured+s.cfg.ItemPadding)
}

// PanelLayout is the stacked geometry of the supporting panel.
type PanelLayout struct {
	// Offsets are item tops relative to the panel top.
	Offsets []float64
	Heights []float64
	Height  float64
}

// LayoutPanel stacks the panel items below the header.
func (s *Sizer) LayoutPanel(p *diagram.SupportingPanel) PanelLayout {
	out := PanelLayout{
		Offsets: make([]float64, len(p.Items)),
		Heights: make([]float64, len(p.Items)),
	}

	bottom := s.cfg.HeaderHeight
	offset := s.cfg.HeaderHeight
	for i, item := range p.Items {
		h := s.ItemHeight(item, p.Size.W)
		out.Offsets[i] = offset
		out.Heights[i] = h
		bottom = offset + h
		offset = bottom + s.cfg.ItemGap
	}

	floor := math.Max(p.MinHeight, s.cfg.PanelMinHeight)
	out.Height = math.Max(floor, bottom+s.cfg.ClosingMargin)
	return out
}

// Apply measures every node whose inputs changed since the last call, and
// the supporting panel. It returns a new snapshot and true when any height
// moved by more than Epsilon; otherwise d itself and false.
func (s *Sizer) Apply(d *diagram.Diagram) (*diagram.Diagram, bool) {
	mode := d.GetMode()
	var next *diagram.Diagram
	clone := func() *diagram.Diagram {
		if next == nil {
			next = d.Clone()
		}
		return next
	}

	live := make(map[string]bool, len(d.Nodes))
	for i, n := range d.Nodes {
		live[n.ID] = true
		fp := fingerprint{title: n.Title, description: n.Description, width: n.Size.W, mode: mode}
		if prev, ok := s.seen[n.ID]; ok && prev.fp == fp {
			if n.Size.H < prev.height-s.cfg.Epsilon {
				clone().Nodes[i].Size.H = prev.height
			}
			continue
		}

		h := s.NodeHeight(n, mode)
		s.seen[n.ID] = measurement{fp: fp, height: h}
		if math.Abs(h-n.Size.H) > s.cfg.Epsilon {
			clone().Nodes[i].Size.H = h
		}
	}
	for id := range s.seen {
		if !live[id] {
			delete(s.seen, id)
		}
	}

	if d.Panel != nil {
		layout := s.LayoutPanel(d.Panel)
		for i, h := range layout.Heights {
			if math.Abs(h-d.Panel.Items[i].Height) > s.cfg.Epsilon {
				clone().Panel.Items[i].Height = h
			}
		}
		if math.Abs(layout.Height-d.Panel.Size.H) > s.cfg.Epsilon {
			clone().Panel.Size.H = layout.Height
		}
	}

	if next == nil {
		return d, false
	}
	return next, true
}

// Forget drops the remembered inputs so the next Apply measures everything.
func (s *Sizer) Forget() {
	clear(s.seen)
}

func (s *Sizer) textWidth(w float64) float64 {
	return math.Max(1, w-2*s.cfg.HorizontalPadding)
}
