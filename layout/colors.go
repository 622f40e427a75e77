package layout

import (
	"github.com/lucasb-eyer/go-colorful"

	"mindflow/diagram"
)

// PropagateBranchColors colors a mind map by branch. Every node directly
// connected to the root starts a branch and takes the next palette color,
// in connector order; everything reachable through it inherits that color.
// The root and unreachable nodes get no entry. Connectors are followed in
// both directions and each node is colored at most once, so cycles are
// harmless.
func PropagateBranchColors(d *diagram.Diagram, rootID string, palette []colorful.Color) map[string]colorful.Color {
	colors := make(map[string]colorful.Color)
	if len(palette) == 0 || d.NodeIndex(rootID) < 0 {
		return colors
	}

	exists := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		exists[n.ID] = true
	}
	visited := map[string]bool{rootID: true}

	var queue []string
	for _, c := range d.Connectors {
		var other string
		switch rootID {
		case c.From:
			other = c.To
		case c.To:
			other = c.From
		default:
			continue
		}
		if !exists[other] || visited[other] {
			continue
		}
		visited[other] = true
		colors[other] = palette[len(queue)%len(palette)]
		queue = append(queue, other)
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, c := range d.Connectors {
			var other string
			switch cur {
			case c.From:
				other = c.To
			case c.To:
				other = c.From
			default:
				continue
			}
			if !exists[other] || visited[other] {
				continue
			}
			visited[other] = true
			colors[other] = colors[cur]
			queue = append(queue, other)
		}
	}
	return colors
}

// BranchColors finds the root of a mind map and propagates colors from it.
// Flowcharts have no branch colors.
func BranchColors(d *diagram.Diagram, palette []colorful.Color) map[string]colorful.Color {
	if !d.IsMindMap() {
		return map[string]colorful.Color{}
	}
	root, ok := FindRoot(d)
	if !ok {
		return map[string]colorful.Color{}
	}
	return PropagateBranchColors(d, root, palette)
}
