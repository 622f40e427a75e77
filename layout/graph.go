package layout

import (
	"mindflow/diagram"
	"mindflow/geometry"
)

// graph is the adjacency of a diagram by node index. Connectors with a
// missing endpoint and self-loops are left out.
type graph struct {
	index    map[string]int
	outgoing [][]int
	incoming [][]int
}

func newGraph(d *diagram.Diagram) *graph {
	g := &graph{
		index:    make(map[string]int, len(d.Nodes)),
		outgoing: make([][]int, len(d.Nodes)),
		incoming: make([][]int, len(d.Nodes)),
	}
	for i, n := range d.Nodes {
		g.index[n.ID] = i
	}
	for _, c := range d.Connectors {
		from, ok := g.index[c.From]
		if !ok {
			continue
		}
		to, ok := g.index[c.To]
		if !ok || from == to {
			continue
		}
		g.outgoing[from] = append(g.outgoing[from], to)
		g.incoming[to] = append(g.incoming[to], from)
	}
	return g
}

// neighbors returns the successors, or successors and predecessors when
// undirected is set.
func (g *graph) neighbors(i int, undirected bool) []int {
	if !undirected {
		return g.outgoing[i]
	}
	out := make([]int, 0, len(g.outgoing[i])+len(g.incoming[i]))
	out = append(out, g.outgoing[i]...)
	return append(out, g.incoming[i]...)
}

// bfsTree is the result of a breadth-first walk over every node.
type bfsTree struct {
	levels [][]int
	// parent is -1 for seeds.
	parent []int
	depth  []int
}

// walk runs BFS from each seed in order, then from every node still
// unvisited in node order, so every node ends up in exactly one level.
// Depth restarts at zero for each new seed.
func (g *graph) walk(seeds []int, undirected bool) bfsTree {
	n := len(g.outgoing)
	t := bfsTree{parent: make([]int, n), depth: make([]int, n)}
	visited := make([]bool, n)

	place := func(i, depth, parent int) {
		visited[i] = true
		t.depth[i] = depth
		t.parent[i] = parent
		for len(t.levels) <= depth {
			t.levels = append(t.levels, nil)
		}
		t.levels[depth] = append(t.levels[depth], i)
	}

	// All initial seeds share level zero.
	var queue []int
	for _, s := range seeds {
		if !visited[s] {
			place(s, 0, -1)
			queue = append(queue, s)
		}
	}

	for next := 0; ; {
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, nb := range g.neighbors(cur, undirected) {
				if visited[nb] {
					continue
				}
				place(nb, t.depth[cur]+1, cur)
				queue = append(queue, nb)
			}
		}

		for next < n && visited[next] {
			next++
		}
		if next == n {
			break
		}
		place(next, 0, -1)
		queue = append(queue, next)
	}
	return t
}

// sources returns the nodes without incoming connectors, in node order.
func (g *graph) sources() []int {
	var out []int
	for i := range g.incoming {
		if len(g.incoming[i]) == 0 {
			out = append(out, i)
		}
	}
	return out
}

// treeOf walks the diagram the way the tree engines see it: mind maps are
// undirected and grow from the root; flowcharts follow connector direction
// from every source node.
func treeOf(d *diagram.Diagram) (*graph, bfsTree) {
	g := newGraph(d)
	if d.IsMindMap() {
		root, ok := FindRoot(d)
		if !ok {
			return g, bfsTree{}
		}
		return g, g.walk([]int{g.index[root]}, true)
	}
	return g, g.walk(g.sources(), false)
}

// FindRoot returns the id of the node whose center is closest to the
// canvas center. Ties go to the earlier node.
func FindRoot(d *diagram.Diagram) (string, bool) {
	if len(d.Nodes) == 0 {
		return "", false
	}
	center := d.Canvas.Center()
	best, bestDist := 0, -1.0
	for i, n := range d.Nodes {
		dist := n.Center().Distance(center)
		if bestDist < 0 || dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return d.Nodes[best].ID, true
}

// IsDragRoot reports whether dragging id moves the whole mind map: the node
// exists and no connector ends at it.
func IsDragRoot(d *diagram.Diagram, id string) bool {
	return d.NodeIndex(id) >= 0 && !d.HasIncoming(id)
}

// Translate returns a copy of d with every node moved by delta.
func Translate(d *diagram.Diagram, delta geometry.Point) *diagram.Diagram {
	next := d.Clone()
	for i := range next.Nodes {
		next.Nodes[i].Position = next.Nodes[i].Position.Add(delta)
	}
	return next
}

// DragRoot applies a root drag: start is the snapshot taken when the drag
// began, and pos is the root's new position. Every node moves by the
// root's displacement.
func DragRoot(start *diagram.Diagram, rootID string, pos geometry.Point) (*diagram.Diagram, error) {
	root, ok := start.Node(rootID)
	if !ok {
		return nil, diagram.ErrNodeNotFound
	}
	return Translate(start, pos.Sub(root.Position)), nil
}
