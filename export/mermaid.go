package export

import (
	"errors"
	"fmt"
	"strings"

	"mindflow/diagram"
	"mindflow/layout"
)

// MermaidExporter exports diagrams to Mermaid syntax
type MermaidExporter struct{}

// NewMermaidExporter creates a new Mermaid exporter
func NewMermaidExporter() *MermaidExporter {
	return &MermaidExporter{}
}

// Export converts the diagram to Mermaid syntax
func (e *MermaidExporter) Export(d *diagram.Diagram) ([]byte, error) {
	if d == nil {
		return nil, errors.New("diagram is nil")
	}

	if len(d.Nodes) == 0 {
		return nil, errors.New("diagram has no nodes")
	}

	if d.IsMindMap() {
		return []byte(e.exportMindMap(d)), nil
	}
	return []byte(e.exportFlowchart(d)), nil
}

// exportFlowchart exports a flowchart to Mermaid syntax
func (e *MermaidExporter) exportFlowchart(d *diagram.Diagram) string {
	var sb strings.Builder
	sb.WriteString("flowchart TD\n")

	// Mermaid ids must be simple words, so nodes are numbered
	nodeMap := make(map[string]string, len(d.Nodes))
	for i, node := range d.Nodes {
		nodeID := fmt.Sprintf("N%d", i+1)
		nodeMap[node.ID] = nodeID
		sb.WriteString(fmt.Sprintf("    %s%s\n", nodeID, e.formatNode(node)))
	}

	if len(d.Connectors) > 0 {
		sb.WriteString("\n")
	}

	for _, conn := range d.Connectors {
		fromID, ok := nodeMap[conn.From]
		if !ok {
			continue
		}
		toID, ok := nodeMap[conn.To]
		if !ok {
			continue
		}

		connStyle := "-->"
		if conn.Style != nil {
			switch {
			case len(conn.Style.Dash) > 0:
				connStyle = "-.->"
			case conn.Style.Width >= 3:
				connStyle = "==>"
			}
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", fromID, connStyle, toID))
	}

	return sb.String()
}

// exportMindMap writes the tree reachable from the root. Connectors are
// followed in both directions; each node is written once.
func (e *MermaidExporter) exportMindMap(d *diagram.Diagram) string {
	var sb strings.Builder
	sb.WriteString("mindmap\n")

	rootID, _ := layout.FindRoot(d)

	adjacent := make(map[string][]string, len(d.Nodes))
	for _, c := range d.Connectors {
		if d.NodeIndex(c.From) < 0 || d.NodeIndex(c.To) < 0 || c.From == c.To {
			continue
		}
		adjacent[c.From] = append(adjacent[c.From], c.To)
		adjacent[c.To] = append(adjacent[c.To], c.From)
	}

	visited := map[string]bool{rootID: true}
	var write func(id string, depth int)
	write = func(id string, depth int) {
		node, _ := d.Node(id)
		indent := strings.Repeat("  ", depth+1)
		label := e.getNodeLabel(node)
		if depth == 0 {
			sb.WriteString(fmt.Sprintf("%sroot((%s))\n", indent, label))
		} else {
			sb.WriteString(fmt.Sprintf("%s%s\n", indent, label))
		}
		for _, next := range adjacent[id] {
			if visited[next] {
				continue
			}
			visited[next] = true
			write(next, depth+1)
		}
	}
	write(rootID, 0)

	return sb.String()
}

func (e *MermaidExporter) formatNode(node diagram.Node) string {
	label := e.getNodeLabel(node)
	if node.Kind == diagram.NodeTerminal {
		return fmt.Sprintf("([%s])", label)
	}
	return fmt.Sprintf("[%s]", label)
}

// getNodeLabel extracts a label from a node
func (e *MermaidExporter) getNodeLabel(node diagram.Node) string {
	if node.Title == "" {
		return e.escapeLabel(node.ID)
	}
	return e.escapeLabel(node.Title)
}

// escapeLabel escapes special characters in labels
func (e *MermaidExporter) escapeLabel(label string) string {
	label = strings.ReplaceAll(label, "\n", " ")
	label = strings.ReplaceAll(label, `"`, "#quot;")
	for _, ch := range []string{"[", "]", "{", "}", "(", ")", "|"} {
		label = strings.ReplaceAll(label, ch, " ")
	}
	return strings.Join(strings.Fields(label), " ")
}

// GetFileExtension returns the recommended file extension
func (e *MermaidExporter) GetFileExtension() string {
	return ".mmd"
}

// GetFormatName returns the format name
func (e *MermaidExporter) GetFormatName() string {
	return "Mermaid"
}
