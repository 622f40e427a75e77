package generate

import (
	"encoding/json"
	"fmt"
	"strings"

	"mindflow/diagram"
	"mindflow/geometry"
)

// Defaults applied to generated documents that leave them out.
var (
	DefaultCanvas   = diagram.Canvas{Width: 1600, Height: 1000}
	DefaultNodeSize = geometry.Sz(240, 86)
)

// stripFences removes a surrounding markdown code fence.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ParseDiagram turns a model response into a diagram in the given mode.
// Missing canvas, sizes and kinds are filled with defaults.
func ParseDiagram(content string, mode diagram.LayoutMode) (*diagram.Diagram, error) {
	body := []byte(stripFences(content))

	var probe struct {
		Canvas *diagram.Canvas `json:"canvas"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	d, err := diagram.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(d.Nodes) == 0 {
		return nil, fmt.Errorf("%w: no nodes", ErrMalformedResponse)
	}

	if probe.Canvas == nil {
		d.Canvas = DefaultCanvas
	}
	if mode != "" {
		d.Mode = mode
	}
	for i := range d.Nodes {
		if d.Nodes[i].Size.W == 0 {
			d.Nodes[i].Size.W = DefaultNodeSize.W
		}
		if d.Nodes[i].Size.H == 0 {
			d.Nodes[i].Size.H = DefaultNodeSize.H
		}
	}
	return d, nil
}

// ParseChildren reads the response to an expand request.
func ParseChildren(content string) ([]Child, error) {
	var out struct {
		Children []Child `json:"children"`
	}
	if err := json.Unmarshal([]byte(stripFences(content)), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	children := out.Children[:0]
	for _, c := range out.Children {
		if strings.TrimSpace(c.Title) != "" {
			children = append(children, c)
		}
	}
	if len(children) == 0 {
		return nil, fmt.Errorf("%w: no children", ErrMalformedResponse)
	}
	return children, nil
}
