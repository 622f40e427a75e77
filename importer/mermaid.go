package importer

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"mindflow/diagram"
)

// MermaidImporter imports Mermaid flowcharts and mind maps
type MermaidImporter struct{}

// NewMermaidImporter creates a new Mermaid importer
func NewMermaidImporter() *MermaidImporter {
	return &MermaidImporter{}
}

var (
	// Matches: ID([text]), ID((text)), ID[[text]], ID[(text)], ID{{text}},
	// ID[text], ID(text), ID{text}, ID>text]
	nodePattern = regexp.MustCompile(`([A-Za-z0-9_]+)(\(\[[^\]]*\]\)|\(\([^)]*\)\)|\[\[[^\]]*\]\]|\[\([^)]*\)\]|\{\{[^}]*\}\}|\[[^\]]*\]|\([^)]*\)|\{[^}]*\}|>[^\]]*\])`)
	// Links with an optional |label|, which is dropped.
	arrowPattern = regexp.MustCompile(`\s*(-\.->|==>|-->|---)\s*(?:\|[^|]*\|)?\s*`)
	idPattern    = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

// Statements that carry styling or grouping only.
var ignoredPrefixes = []string{"subgraph", "classDef", "class ", "style ", "linkStyle", "click ", "direction "}

type frontMatter struct {
	Title string `yaml:"title"`
}

// CanImport checks if the content is a Mermaid diagram
func (m *MermaidImporter) CanImport(content string) bool {
	_, body, err := splitFrontMatter(content)
	if err != nil {
		return false
	}
	header, _ := splitHeader(body)
	return isFlowchartHeader(header) || header == "mindmap"
}

// Import converts Mermaid content to a diagram
func (m *MermaidImporter) Import(content string) (*diagram.Diagram, error) {
	fm, body, err := splitFrontMatter(content)
	if err != nil {
		return nil, err
	}
	header, lines := splitHeader(body)

	var d *diagram.Diagram
	switch {
	case header == "mindmap":
		d, err = m.importMindMap(lines)
	case isFlowchartHeader(header):
		d, err = m.importFlowchart(lines)
	default:
		return nil, fmt.Errorf("unsupported Mermaid diagram type %q", header)
	}
	if err != nil {
		return nil, err
	}
	if len(d.Nodes) == 0 {
		return nil, ErrNoNodes
	}

	d.Title = fm.Title
	d.Canvas = DefaultCanvas
	diagram.EnsureUniqueConnectorIDs(d)
	return d, nil
}

// GetFormatName returns the format name
func (m *MermaidImporter) GetFormatName() string {
	return "Mermaid"
}

// GetFileExtensions returns common file extensions
func (m *MermaidImporter) GetFileExtensions() []string {
	return []string{".mmd", ".mermaid"}
}

// importFlowchart imports a Mermaid flowchart/graph
func (m *MermaidImporter) importFlowchart(lines []string) (*diagram.Diagram, error) {
	d := &diagram.Diagram{Mode: diagram.ModeFlowchart}
	index := make(map[string]int)

	addNode := func(id, label string, kind diagram.NodeKind) {
		if i, ok := index[id]; ok {
			// A bare reference may come before the declaration.
			if label != "" && d.Nodes[i].Title == id {
				d.Nodes[i].Title = label
				d.Nodes[i].Kind = kind
			}
			return
		}
		if label == "" {
			label = id
		}
		index[id] = len(d.Nodes)
		d.Nodes = append(d.Nodes, diagram.Node{
			ID:    id,
			Kind:  kind,
			Title: label,
			Size:  DefaultNodeSize,
		})
	}

	for _, line := range lines {
		for _, stmt := range splitStatements(line) {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" || stmt == "end" || strings.HasPrefix(stmt, "%%") || ignored(stmt) {
				continue
			}

			for _, match := range nodePattern.FindAllStringSubmatch(stmt, -1) {
				label, kind := shapeLabel(match[2])
				addNode(match[1], label, kind)
			}

			stripped := nodePattern.ReplaceAllString(stmt, "$1")
			ids := arrowPattern.Split(stripped, -1)
			arrows := arrowPattern.FindAllStringSubmatch(stripped, -1)
			if len(arrows) == 0 {
				if idPattern.MatchString(stripped) {
					addNode(stripped, "", diagram.NodePrimary)
				}
				continue
			}

			for i, arrow := range arrows {
				from, to := strings.TrimSpace(ids[i]), strings.TrimSpace(ids[i+1])
				if !idPattern.MatchString(from) || !idPattern.MatchString(to) {
					continue
				}
				addNode(from, "", diagram.NodePrimary)
				addNode(to, "", diagram.NodePrimary)
				d.Connectors = append(d.Connectors, diagram.Connector{
					From:  from,
					To:    to,
					Kind:  diagram.ConnectorFlow,
					Style: linkStyle(arrow[1]),
				})
			}
		}
	}

	return d, nil
}

// importMindMap builds the tree described by indentation. Each line is a
// child of the closest preceding line indented less than it.
func (m *MermaidImporter) importMindMap(lines []string) (*diagram.Diagram, error) {
	d := &diagram.Diagram{Mode: diagram.ModeMindMap}

	type entry struct {
		indent int
		id     string
	}
	var stack []entry

	for _, raw := range lines {
		text := strings.TrimSpace(raw)
		if text == "" || strings.HasPrefix(text, "%%") || strings.HasPrefix(text, "::") {
			continue
		}
		indent := len(raw) - len(strings.TrimLeft(raw, " \t"))

		for len(stack) > 0 && stack[len(stack)-1].indent >= indent {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 && len(d.Nodes) > 0 {
			return nil, errors.New("mindmap has more than one root")
		}

		id := fmt.Sprintf("n%d", len(d.Nodes)+1)
		d.Nodes = append(d.Nodes, diagram.Node{
			ID:    id,
			Kind:  diagram.NodePrimary,
			Title: mindMapLabel(text),
			Size:  DefaultNodeSize,
		})
		if len(stack) > 0 {
			d.Connectors = append(d.Connectors, diagram.Connector{
				From: stack[len(stack)-1].id,
				To:   id,
				Kind: diagram.ConnectorFlow,
			})
		}
		stack = append(stack, entry{indent: indent, id: id})
	}

	return d, nil
}

// shapeLabel extracts the text of a node shape. Stadium shapes mark
// start and end nodes.
func shapeLabel(shape string) (string, diagram.NodeKind) {
	kind := diagram.NodePrimary
	trim := 1
	for _, open := range []string{"([", "((", "[[", "[(", "{{"} {
		if strings.HasPrefix(shape, open) {
			trim = 2
			if open == "([" {
				kind = diagram.NodeTerminal
			}
			break
		}
	}
	if len(shape) < 2*trim {
		return "", kind
	}
	return cleanLabel(shape[trim : len(shape)-trim]), kind
}

// mindMapLabel strips an optional id and shape from a mind map line.
func mindMapLabel(text string) string {
	i := strings.IndexAny(text, "[({)")
	if i < 0 || strings.ContainsAny(text[:i], " \t") || !strings.ContainsAny(text[len(text)-1:], "])}(") {
		return cleanLabel(text)
	}
	inner := strings.TrimLeft(text[i:], "[({)")
	inner = strings.TrimRight(inner, "])}(")
	return cleanLabel(inner)
}

func cleanLabel(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"`)
	s = strings.ReplaceAll(s, "#quot;", `"`)
	for _, br := range []string{"<br/>", "<br>", "<br />"} {
		s = strings.ReplaceAll(s, br, " ")
	}
	return strings.Join(strings.Fields(s), " ")
}

// splitStatements splits a line at semicolons outside node shapes, so
// entities like #quot; inside labels survive.
func splitStatements(line string) []string {
	var out []string
	depth, start := 0, 0
	for i, r := range line {
		switch r {
		case '[', '(', '{':
			depth++
		case ']', ')', '}':
			depth = max(depth-1, 0)
		case ';':
			if depth == 0 {
				out = append(out, line[start:i])
				start = i + 1
			}
		}
	}
	return append(out, line[start:])
}

func linkStyle(arrow string) *diagram.StyleOverride {
	switch arrow {
	case "-.->":
		return &diagram.StyleOverride{Dash: []float64{6, 4}}
	case "==>":
		return &diagram.StyleOverride{Width: 3}
	}
	return nil
}

func ignored(stmt string) bool {
	for _, p := range ignoredPrefixes {
		if strings.HasPrefix(stmt, p) {
			return true
		}
	}
	return false
}

func isFlowchartHeader(header string) bool {
	return header == "graph" || header == "flowchart" ||
		strings.HasPrefix(header, "graph ") || strings.HasPrefix(header, "flowchart ")
}

// splitFrontMatter separates a leading YAML block fenced by "---" lines.
func splitFrontMatter(content string) (frontMatter, string, error) {
	var fm frontMatter
	body := strings.TrimSpace(content)
	if !strings.HasPrefix(body, "---") {
		return fm, body, nil
	}
	rest := strings.TrimPrefix(body, "---")
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return fm, "", errors.New("unterminated front matter")
	}
	if err := yaml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
		return fm, "", fmt.Errorf("front matter: %w", err)
	}
	return fm, strings.TrimSpace(rest[end+len("\n---"):]), nil
}

// splitHeader returns the first statement line and the lines after it.
// Leading comments are skipped.
func splitHeader(body string) (string, []string) {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "%%") {
			continue
		}
		return strings.TrimSuffix(line, ";"), lines[i+1:]
	}
	return "", nil
}
