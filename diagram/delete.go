package diagram

import "fmt"

// WithoutNode returns a copy of the diagram with the node removed together
// with every connector touching it and every side box attached to it.
// Panel items linking to the node are kept; their link is skipped at render.
func (d *Diagram) WithoutNode(id string) (*Diagram, error) {
	if d.NodeIndex(id) < 0 {
		return nil, fmt.Errorf("delete %q: %w", id, ErrNodeNotFound)
	}

	next := d.Clone()

	nodes := next.Nodes[:0]
	for _, n := range next.Nodes {
		if n.ID != id {
			nodes = append(nodes, n)
		}
	}
	next.Nodes = nodes

	connectors := next.Connectors[:0]
	for _, c := range next.Connectors {
		if !c.Touches(id) {
			connectors = append(connectors, c)
		}
	}
	next.Connectors = connectors

	if next.SideBoxes != nil {
		boxes := next.SideBoxes[:0]
		for _, b := range next.SideBoxes {
			if b.AttachedNodeID != id {
				boxes = append(boxes, b)
			}
		}
		next.SideBoxes = boxes
	}

	return next, nil
}

// WithoutConnector returns a copy of the diagram without the connector.
func (d *Diagram) WithoutConnector(id string) *Diagram {
	next := d.Clone()
	connectors := next.Connectors[:0]
	for _, c := range next.Connectors {
		if c.ID != id {
			connectors = append(connectors, c)
		}
	}
	next.Connectors = connectors
	return next
}
