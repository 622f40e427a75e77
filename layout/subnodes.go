package layout

import (
	"mindflow/diagram"
	"mindflow/geometry"
)

// PlaceChildren returns top-left positions for new children of parentID,
// one per size. In a mind map children fan out within a narrow cone that
// continues the direction from the parent's incoming source to the parent,
// or around the full circle when the parent is the root. In a flowchart
// they form an evenly spaced row beneath the parent.
func PlaceChildren(d *diagram.Diagram, parentID string, sizes []geometry.Size, cfg Config) ([]geometry.Point, error) {
	parent, ok := d.Node(parentID)
	if !ok {
		return nil, diagram.ErrNodeNotFound
	}
	if len(sizes) == 0 {
		return nil, nil
	}

	if !d.IsMindMap() {
		return placeRow(parent, sizes, cfg), nil
	}

	center := parent.Center()
	var angles []float64
	if src, ok := d.IncomingSource(parentID); ok {
		if from, ok := d.Node(src); ok {
			base := geometry.Angle(from.Center(), center)
			angles = coneAngles(base, cfg.SubnodeHalfAngle, len(sizes))
		}
	}
	if angles == nil {
		angles = circleAngles(len(sizes))
	}

	out := make([]geometry.Point, len(sizes))
	for i, theta := range angles {
		c := geometry.Polar(center, cfg.SubnodeRadius, theta)
		out[i] = geometry.TopLeftFor(c, sizes[i])
	}
	return out, nil
}

func placeRow(parent diagram.Node, sizes []geometry.Size, cfg Config) []geometry.Point {
	total := 0.0
	for i, s := range sizes {
		total += s.W
		if i > 0 {
			total += cfg.HorizontalSpacing
		}
	}

	out := make([]geometry.Point, len(sizes))
	x := parent.Center().X - total/2
	y := parent.Bottom() + cfg.RowGap
	for i, s := range sizes {
		out[i] = geometry.Pt(x, y)
		x += s.W + cfg.HorizontalSpacing
	}
	return out
}
