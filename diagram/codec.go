package diagram

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeError is returned by Decode when a document cannot be used.
// Either Err holds the underlying JSON error, or Problems lists the
// structural issues found in an otherwise well-formed document.
type DecodeError struct {
	Err      error
	Problems []string
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed diagram: %v", e.Err)
	}
	return fmt.Sprintf("malformed diagram: %s", strings.Join(e.Problems, "; "))
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode parses a JSON document into a diagram. Out-of-range values are
// clamped: the canvas to MinCanvasDimension, node sizes to zero. Missing
// or duplicate connector IDs are repaired. Dangling references are kept;
// renderers skip them.
func Decode(data []byte) (*Diagram, error) {
	var d Diagram
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, &DecodeError{Err: err}
	}

	if problems := structuralProblems(&d); len(problems) > 0 {
		return nil, &DecodeError{Problems: problems}
	}

	normalize(&d)
	return &d, nil
}

// Encode writes the diagram as indented JSON.
func Encode(d *Diagram) ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode diagram: %w", err)
	}
	return data, nil
}

func structuralProblems(d *Diagram) []string {
	var problems []string

	switch d.Mode {
	case "", ModeFlowchart, ModeMindMap:
	default:
		problems = append(problems, fmt.Sprintf("unknown layout mode %q", d.Mode))
	}

	seen := make(map[string]bool, len(d.Nodes))
	for i, n := range d.Nodes {
		switch {
		case n.ID == "":
			problems = append(problems, fmt.Sprintf("node %d has no id", i))
		case seen[n.ID]:
			problems = append(problems, fmt.Sprintf("duplicate node id %q", n.ID))
		}
		seen[n.ID] = true

		switch n.Kind {
		case "", NodePrimary, NodeTerminal:
		default:
			problems = append(problems, fmt.Sprintf("node %q has unknown kind %q", n.ID, n.Kind))
		}
	}

	return problems
}

func normalize(d *Diagram) {
	d.Canvas = d.Canvas.Clamp()
	if d.Nodes == nil {
		d.Nodes = []Node{}
	}
	if d.Connectors == nil {
		d.Connectors = []Connector{}
	}

	for i := range d.Nodes {
		if d.Nodes[i].Kind == "" {
			d.Nodes[i].Kind = NodePrimary
		}
		d.Nodes[i].Size = d.Nodes[i].Size.Clamp()
	}
	for i := range d.Connectors {
		if d.Connectors[i].Kind == "" {
			d.Connectors[i].Kind = ConnectorFlow
		}
	}
	for i := range d.SideBoxes {
		if d.SideBoxes[i].Side == "" {
			d.SideBoxes[i].Side = SideRight
		}
		if d.SideBoxes[i].LineStyle == "" {
			d.SideBoxes[i].LineStyle = LineDotted
		}
		d.SideBoxes[i].Size = d.SideBoxes[i].Size.Clamp()
	}
	if d.Panel != nil {
		d.Panel.Size = d.Panel.Size.Clamp()
	}

	EnsureUniqueConnectorIDs(d)
}
