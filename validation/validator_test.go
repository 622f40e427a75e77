package validation

import (
	"strings"
	"testing"

	"mindflow/diagram"
	"mindflow/geometry"
)

func node(id string, x, y float64) diagram.Node {
	return diagram.Node{ID: id, Title: id, Position: geometry.Pt(x, y), Size: geometry.Sz(100, 50)}
}

func TestValidator(t *testing.T) {
	tests := []struct {
		name    string
		diagram *diagram.Diagram
		wantErr bool
		errMsg  string
	}{
		{
			name: "clean flowchart",
			diagram: &diagram.Diagram{
				Canvas:     diagram.Canvas{Width: 800, Height: 600},
				Nodes:      []diagram.Node{node("a", 0, 0), node("b", 0, 200)},
				Connectors: []diagram.Connector{{ID: "c1", From: "a", To: "b"}},
			},
		},
		{
			name: "dangling connector",
			diagram: &diagram.Diagram{
				Canvas:     diagram.Canvas{Width: 800, Height: 600},
				Nodes:      []diagram.Node{node("a", 0, 0)},
				Connectors: []diagram.Connector{{ID: "c1", From: "a", To: "ghost"}},
			},
			wantErr: true,
			errMsg:  `target "ghost" does not exist`,
		},
		{
			name: "dangling side box",
			diagram: &diagram.Diagram{
				Canvas:    diagram.Canvas{Width: 800, Height: 600},
				Nodes:     []diagram.Node{node("a", 0, 0)},
				SideBoxes: []diagram.SideBox{{ID: "s1", AttachedNodeID: "b"}},
			},
			wantErr: true,
			errMsg:  "side box is skipped",
		},
		{
			name: "overlapping nodes",
			diagram: &diagram.Diagram{
				Canvas: diagram.Canvas{Width: 800, Height: 600},
				Nodes:  []diagram.Node{node("a", 0, 0), node("b", 50, 20)},
			},
			wantErr: true,
			errMsg:  `node overlaps "b"`,
		},
		{
			name: "unknown icon",
			diagram: &diagram.Diagram{
				Canvas: diagram.Canvas{Width: 800, Height: 600},
				Nodes:  []diagram.Node{{ID: "a", Title: "A", Icon: "unicorn", Size: geometry.Sz(10, 10)}},
			},
			wantErr: true,
			errMsg:  `unknown icon "unicorn"`,
		},
		{
			name: "mind map with two roots",
			diagram: &diagram.Diagram{
				Canvas: diagram.Canvas{Width: 800, Height: 600},
				Mode:   diagram.ModeMindMap,
				Nodes:  []diagram.Node{node("a", 0, 0), node("b", 300, 0)},
			},
			wantErr: true,
			errMsg:  "without incoming connectors",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator()
			errs := v.Validate(tt.diagram)

			if tt.wantErr && len(errs) == 0 {
				t.Errorf("expected validation errors, got none")
			}
			if !tt.wantErr && len(errs) > 0 {
				for _, e := range errs {
					t.Errorf("unexpected error: %s", e)
				}
			}
			if tt.errMsg != "" {
				found := false
				for _, e := range errs {
					if strings.Contains(e.Message, tt.errMsg) {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("expected error containing %q, got %v", tt.errMsg, errs)
				}
			}
		})
	}
}

func TestStrictMode(t *testing.T) {
	d := &diagram.Diagram{
		Canvas: diagram.Canvas{Width: 800, Height: 600},
		Nodes:  []diagram.Node{{ID: "a", Size: geometry.Sz(10, 10)}},
	}

	v := NewValidator()
	if HasErrors(v.Validate(d)) {
		t.Error("a missing title is only a warning")
	}

	v.SetStrictMode(true)
	if !HasErrors(v.Validate(d)) {
		t.Error("strict mode should promote warnings to errors")
	}
}

func TestNilDiagram(t *testing.T) {
	errs := NewValidator().Validate(nil)
	if len(errs) != 1 || errs[0].Severity != Error {
		t.Errorf("unexpected result %v", errs)
	}
}
