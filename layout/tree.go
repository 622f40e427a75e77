package layout

import (
	"mindflow/diagram"
)

// TreeLayout stacks BFS levels top to bottom. Nodes within a level sit on
// one horizontal line, evenly spaced and centered on the canvas.
type TreeLayout struct {
	cfg        Config
	horizontal bool
}

// NewTree creates a top-to-bottom tree layout.
func NewTree(cfg Config) *TreeLayout {
	return &TreeLayout{cfg: cfg}
}

// NewHorizontalTree creates a left-to-right tree layout: the same levels
// with the axes swapped.
func NewHorizontalTree(cfg Config) *TreeLayout {
	return &TreeLayout{cfg: cfg, horizontal: true}
}

// Name returns the name of this layout algorithm.
func (t *TreeLayout) Name() string {
	if t.horizontal {
		return AlgorithmHorizontal
	}
	return AlgorithmTree
}

// Layout positions nodes level by level.
func (t *TreeLayout) Layout(d *diagram.Diagram) (*diagram.Diagram, error) {
	result := d.Clone()
	if len(result.Nodes) == 0 {
		return result, nil
	}

	_, tree := treeOf(result)
	t.positionNodes(result, tree.levels)
	shiftNonNegative(result, t.cfg.Margin)
	return result, nil
}

// positionNodes positions nodes within their assigned levels. "along" is
// the axis a level runs on (x for the vertical tree) and "across" is the
// axis levels are stacked on.
func (t *TreeLayout) positionNodes(d *diagram.Diagram, levels [][]int) {
	center := d.Canvas.Center()
	alongCenter, acrossCenter := center.X, center.Y
	alongGap, acrossGap := t.cfg.HorizontalSpacing, t.cfg.VerticalSpacing
	if t.horizontal {
		alongCenter, acrossCenter = center.Y, center.X
		alongGap, acrossGap = t.cfg.VerticalSpacing, t.cfg.HorizontalSpacing
	}

	along := func(n diagram.Node) float64 {
		if t.horizontal {
			return n.Size.H
		}
		return n.Size.W
	}
	across := func(n diagram.Node) float64 {
		if t.horizontal {
			return n.Size.W
		}
		return n.Size.H
	}

	// Depth of each level on the stacking axis.
	depths := make([]float64, len(levels))
	totalDepth := 0.0
	for i, level := range levels {
		for _, idx := range level {
			depths[i] = max(depths[i], across(d.Nodes[idx]))
		}
		totalDepth += depths[i]
		if i > 0 {
			totalDepth += acrossGap
		}
	}

	pos := acrossCenter - totalDepth/2
	for i, level := range levels {
		// Calculate total length needed for this level
		total := 0.0
		for j, idx := range level {
			total += along(d.Nodes[idx])
			if j > 0 {
				total += alongGap
			}
		}

		// Start centered on the canvas
		x := alongCenter - total/2
		for _, idx := range level {
			n := &d.Nodes[idx]
			// Center the node within the level's band
			y := pos + (depths[i]-across(*n))/2
			if t.horizontal {
				n.Position.X, n.Position.Y = y, x
			} else {
				n.Position.X, n.Position.Y = x, y
			}
			x += along(*n) + alongGap
		}

		pos += depths[i] + acrossGap
	}
}
