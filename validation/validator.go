// Package validation lints a decoded diagram and reports problems that do
// not stop it from being rendered.
package validation

import (
	"fmt"

	"mindflow/diagram"
	"mindflow/geometry"
	"mindflow/icons"
)

// Severity ranks a validation finding.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Validator checks a diagram for dangling references, unknown icons and
// other suspicious content.
type Validator struct {
	// Track validation errors
	errors []ValidationError
	// Options
	strictMode    bool // Report warnings as errors
	checkOverlaps bool // Report nodes whose boxes intersect
}

// ValidationError represents a validation finding with its location in the
// document, e.g. "connectors[2]" or "nodes[n4]".
type ValidationError struct {
	Path     string
	Severity Severity
	Context  string
	Message  string
}

// NewValidator creates a new validator with default settings.
func NewValidator() *Validator {
	return &Validator{
		checkOverlaps: true,
	}
}

// SetStrictMode enables or disables strict validation.
func (v *Validator) SetStrictMode(strict bool) {
	v.strictMode = strict
}

// SetCheckOverlaps enables or disables the node overlap check.
func (v *Validator) SetCheckOverlaps(check bool) {
	v.checkOverlaps = check
}

// Validate checks d and returns every finding in document order.
func (v *Validator) Validate(d *diagram.Diagram) []ValidationError {
	v.errors = nil
	if d == nil {
		v.addError("", Error, "diagram", "document is empty")
		return v.errors
	}

	ids := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		ids[n.ID] = true
	}

	v.checkNodes(d)
	v.checkConnectors(d, ids)
	v.checkSideBoxes(d, ids)
	v.checkPanel(d, ids)
	if d.IsMindMap() {
		v.checkMindMap(d)
	}

	return v.errors
}

// HasErrors reports whether any finding has Error severity.
func HasErrors(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Severity == Error {
			return true
		}
	}
	return false
}

func (v *Validator) checkNodes(d *diagram.Diagram) {
	for i, n := range d.Nodes {
		path := fmt.Sprintf("nodes[%s]", n.ID)
		if n.Title == "" {
			v.addError(path, Warning, "title", "node has no title")
		}
		if !icons.Known(n.Icon) {
			v.addError(path, Warning, "icon", "unknown icon %q, the default glyph is used", n.Icon)
		}
		if n.AttachedSideBoxID != "" && !hasSideBox(d, n.AttachedSideBoxID) {
			v.addError(path, Warning, "attachedSideBoxId", "side box %q does not exist", n.AttachedSideBoxID)
		}
		if n.Position.X+n.Size.W < 0 || n.Position.Y+n.Size.H < 0 ||
			n.Position.X > d.Canvas.Width || n.Position.Y > d.Canvas.Height {
			v.addError(path, Warning, "position", "node lies outside the canvas")
		}

		if !v.checkOverlaps {
			continue
		}
		box := geometry.Bounds(n.Position, n.Size)
		for _, other := range d.Nodes[i+1:] {
			overlap := box.Intersect(geometry.Bounds(other.Position, other.Size))
			if overlap.Width() > 0 && overlap.Height() > 0 {
				v.addError(path, Warning, "position", "node overlaps %q", other.ID)
			}
		}
	}
}

func (v *Validator) checkConnectors(d *diagram.Diagram, ids map[string]bool) {
	for i, c := range d.Connectors {
		path := fmt.Sprintf("connectors[%d]", i)
		if !ids[c.From] {
			v.addError(path, Warning, "fromNodeId", "source %q does not exist, connector is skipped", c.From)
		}
		if !ids[c.To] {
			v.addError(path, Warning, "toNodeId", "target %q does not exist, connector is skipped", c.To)
		}
		if c.From == c.To && c.From != "" {
			v.addError(path, Warning, "toNodeId", "connector %q starts and ends at the same node", c.ID)
		}
		if c.Style != nil && c.Style.Width < 0 {
			v.addError(path, Error, "styleOverride", "stroke width must not be negative")
		}
	}
}

func (v *Validator) checkSideBoxes(d *diagram.Diagram, ids map[string]bool) {
	for i, b := range d.SideBoxes {
		path := fmt.Sprintf("sideBoxes[%d]", i)
		if !ids[b.AttachedNodeID] {
			v.addError(path, Warning, "attachedNodeId", "node %q does not exist, side box is skipped", b.AttachedNodeID)
		}
		if b.Side != "" && b.Side != diagram.SideRight {
			v.addError(path, Warning, "side", "unsupported side %q, drawn on the right", b.Side)
		}
	}
}

func (v *Validator) checkPanel(d *diagram.Diagram, ids map[string]bool) {
	if d.Panel == nil {
		return
	}
	for i, item := range d.Panel.Items {
		path := fmt.Sprintf("supportingPanel.items[%d]", i)
		if item.ConnectsToNodeID != "" && !ids[item.ConnectsToNodeID] {
			v.addError(path, Warning, "connectsToNodeId", "node %q does not exist, link is skipped", item.ConnectsToNodeID)
		}
		if !icons.Known(item.Icon) {
			v.addError(path, Warning, "icon", "unknown icon %q, the default glyph is used", item.Icon)
		}
	}
}

// checkMindMap reports mind maps with more than one node lacking an
// incoming connector, since only one of them can act as the root.
func (v *Validator) checkMindMap(d *diagram.Diagram) {
	var roots []string
	for _, n := range d.Nodes {
		if !d.HasIncoming(n.ID) {
			roots = append(roots, n.ID)
		}
	}
	if len(roots) > 1 {
		v.addError("nodes", Warning, "layoutMode", "mind map has %d nodes without incoming connectors: %v", len(roots), roots)
	}
}

func hasSideBox(d *diagram.Diagram, id string) bool {
	for _, b := range d.SideBoxes {
		if b.ID == id {
			return true
		}
	}
	return false
}

// addError adds a validation error.
func (v *Validator) addError(path string, severity Severity, context, format string, args ...interface{}) {
	if v.strictMode {
		severity = Error
	}
	v.errors = append(v.errors, ValidationError{
		Path:     path,
		Severity: severity,
		Context:  context,
		Message:  fmt.Sprintf(format, args...),
	})
}

// String formats validation errors as a string.
func (e ValidationError) String() string {
	return fmt.Sprintf("%s %s [%s]: %s", e.Severity, e.Path, e.Context, e.Message)
}
