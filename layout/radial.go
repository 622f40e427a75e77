package layout

import (
	"math"

	"mindflow/diagram"
	"mindflow/geometry"
)

// RadialLayout places the root at the canvas center, its neighbors evenly
// on a circle around it, and every deeper node on a circle around its
// parent, inside a cone that continues the grandparent-to-parent direction.
type RadialLayout struct {
	cfg Config
}

// NewRadial creates a radial layout.
func NewRadial(cfg Config) *RadialLayout {
	return &RadialLayout{cfg: cfg}
}

// Name returns the name of this layout algorithm.
func (r *RadialLayout) Name() string {
	return AlgorithmRadial
}

// Layout positions every node reachable from the root. Nodes in other
// components keep their position.
func (r *RadialLayout) Layout(d *diagram.Diagram) (*diagram.Diagram, error) {
	result := d.Clone()
	rootID, ok := FindRoot(result)
	if !ok {
		return result, nil
	}

	g := newGraph(result)
	root := g.index[rootID]
	tree := g.walk([]int{root}, true)

	children := make([][]int, len(result.Nodes))
	for _, level := range tree.levels {
		for _, idx := range level {
			if p := tree.parent[idx]; p >= 0 {
				children[p] = append(children[p], idx)
			}
		}
	}

	centers := make(map[int]geometry.Point, len(result.Nodes))
	centers[root] = result.Canvas.Center()

	// Level one spreads over the full circle.
	first := children[root]
	for i, theta := range circleAngles(len(first)) {
		centers[first[i]] = geometry.Polar(centers[root], r.cfg.RootRadius, theta)
	}

	// Deeper levels follow BFS order so a parent is placed before its
	// children.
	for depth := 1; depth < len(tree.levels); depth++ {
		for _, parent := range tree.levels[depth] {
			if _, placed := centers[parent]; !placed || tree.parent[parent] < 0 {
				continue
			}
			kids := children[parent]
			if len(kids) == 0 {
				continue
			}
			base := geometry.Angle(centers[tree.parent[parent]], centers[parent])
			for i, theta := range coneAngles(base, r.cfg.ConeHalfAngle, len(kids)) {
				centers[kids[i]] = geometry.Polar(centers[parent], r.cfg.ChildRadius, theta)
			}
		}
	}

	for idx, c := range centers {
		n := &result.Nodes[idx]
		n.Position = geometry.TopLeftFor(c, n.Size)
	}
	return result, nil
}

// coneAngles spreads n directions evenly within base±halfAngle. A single
// direction points straight along base.
func coneAngles(base, halfAngle float64, n int) []float64 {
	if n == 1 {
		return []float64{base}
	}
	out := make([]float64, n)
	step := 2 * halfAngle / float64(n-1)
	for i := range out {
		out[i] = base - halfAngle + step*float64(i)
	}
	return out
}

// circleAngles spreads n directions evenly over the full circle, starting
// straight up.
func circleAngles(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = -math.Pi/2 + 2*math.Pi*float64(i)/float64(n)
	}
	return out
}
