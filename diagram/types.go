// Package diagram contains the document model edited by mindflow: nodes,
// connectors, side boxes and the supporting panel.
package diagram

import (
	"errors"

	"mindflow/geometry"
)

// ErrNodeNotFound is returned when an operation names a node id the diagram
// does not contain.
var ErrNodeNotFound = errors.New("node not found")

// MinCanvasDimension is the smallest width or height a canvas may have.
const MinCanvasDimension = 100

// NodeKind distinguishes ordinary steps from start/end markers.
type NodeKind string

// Node kinds
const (
	NodePrimary  NodeKind = "primary"
	NodeTerminal NodeKind = "terminal"
)

// ConnectorKind is the semantic type of a connector. Only flow exists today.
type ConnectorKind string

// ConnectorFlow is the default connector kind.
const ConnectorFlow ConnectorKind = "flow"

// LayoutMode selects how the diagram is drawn and arranged.
type LayoutMode string

// Layout modes
const (
	ModeFlowchart LayoutMode = "flowchart"
	ModeMindMap   LayoutMode = "mindmap"
)

// LineStyle is the stroke used between a side box and its node.
type LineStyle string

// Line styles
const (
	LineSolid  LineStyle = "solid"
	LineDotted LineStyle = "dotted"
)

// SideRight is the only side a side box can be anchored to.
const SideRight = "right"

// Canvas is the logical drawing surface.
type Canvas struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Clamp returns the canvas with both dimensions raised to MinCanvasDimension.
func (c Canvas) Clamp() Canvas {
	return Canvas{
		Width:  max(c.Width, MinCanvasDimension),
		Height: max(c.Height, MinCanvasDimension),
	}
}

// Center returns the middle of the canvas.
func (c Canvas) Center() geometry.Point {
	return geometry.Pt(c.Width/2, c.Height/2)
}

// Node is a draggable, resizable box.
type Node struct {
	ID                string         `json:"id"`
	Kind              NodeKind       `json:"kind,omitempty"`
	Title             string         `json:"title"`
	Description       string         `json:"description,omitempty"`
	Icon              string         `json:"icon,omitempty"`
	Position          geometry.Point `json:"position"`
	Size              geometry.Size  `json:"size"`
	IsLoopSource      bool           `json:"isLoopSource,omitempty"`
	AttachedSideBoxID string         `json:"attachedSideBoxId,omitempty"`
}

// Center returns the center point of the node.
func (n Node) Center() geometry.Point {
	return geometry.Center(n.Position, n.Size)
}

// Bottom returns the y coordinate of the node's bottom edge.
func (n Node) Bottom() float64 {
	return n.Position.Y + n.Size.H
}

// Right returns the x coordinate of the node's right edge.
func (n Node) Right() float64 {
	return n.Position.X + n.Size.W
}

// Contains checks if a model-space point is inside the node.
func (n Node) Contains(p geometry.Point) bool {
	return p.X >= n.Position.X && p.X < n.Right() &&
		p.Y >= n.Position.Y && p.Y < n.Bottom()
}

// StyleOverride replaces the router's default stroke for one connector.
type StyleOverride struct {
	Dash  []float64 `json:"dash,omitempty"`
	Width float64   `json:"width,omitempty"`
}

// Connector is a directed edge between two nodes.
type Connector struct {
	ID    string         `json:"id"`
	From  string         `json:"fromNodeId"`
	To    string         `json:"toNodeId"`
	Kind  ConnectorKind  `json:"kind,omitempty"`
	Style *StyleOverride `json:"styleOverride,omitempty"`
}

// Touches reports whether the connector starts or ends at nodeID.
func (c Connector) Touches(nodeID string) bool {
	return c.From == nodeID || c.To == nodeID
}

// SideBox is a small annotation anchored to the right of one node.
type SideBox struct {
	ID             string        `json:"id"`
	Text           string        `json:"text"`
	AttachedNodeID string        `json:"attachedNodeId"`
	Side           string        `json:"side,omitempty"`
	Size           geometry.Size `json:"size"`
	LineStyle      LineStyle     `json:"lineStyle,omitempty"`
}

// PanelItem is one entry of the supporting panel.
type PanelItem struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Description      string `json:"description,omitempty"`
	Icon             string `json:"icon,omitempty"`
	ConnectsToNodeID string `json:"connectsToNodeId,omitempty"`
	Color            string `json:"color,omitempty"`
	// Height is the measured height of the item, filled by auto-sizing.
	Height float64 `json:"height,omitempty"`
}

// SupportingPanel is the floating list of auxiliary items.
type SupportingPanel struct {
	Title     string         `json:"title"`
	Position  geometry.Point `json:"position"`
	Size      geometry.Size  `json:"size"`
	MinHeight float64        `json:"minHeight,omitempty"`
	Items     []PanelItem    `json:"items"`
}

// Diagram is the root aggregate of the document.
type Diagram struct {
	Title      string           `json:"title"`
	Caption    string           `json:"caption,omitempty"`
	Canvas     Canvas           `json:"canvas"`
	Nodes      []Node           `json:"nodes"`
	Connectors []Connector      `json:"connectors"`
	SideBoxes  []SideBox        `json:"sideBoxes,omitempty"`
	Panel      *SupportingPanel `json:"supportingPanel,omitempty"`
	Mode       LayoutMode       `json:"layoutMode,omitempty"`
}

// GetMode returns the layout mode, treating empty as flowchart.
func (d *Diagram) GetMode() LayoutMode {
	if d.Mode == "" {
		return ModeFlowchart
	}
	return d.Mode
}

// IsMindMap returns true if the diagram is drawn as a mind map.
func (d *Diagram) IsMindMap() bool {
	return d.GetMode() == ModeMindMap
}

// NodeIndex returns the index of the node with the given id, or -1.
func (d *Diagram) NodeIndex(id string) int {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

// Node returns the node with the given id.
func (d *Diagram) Node(id string) (Node, bool) {
	if i := d.NodeIndex(id); i >= 0 {
		return d.Nodes[i], true
	}
	return Node{}, false
}

// HasIncoming reports whether any connector ends at id.
func (d *Diagram) HasIncoming(id string) bool {
	for _, c := range d.Connectors {
		if c.To == id {
			return true
		}
	}
	return false
}

// IncomingSource returns the source node id of the first connector ending at id.
func (d *Diagram) IncomingSource(id string) (string, bool) {
	for _, c := range d.Connectors {
		if c.To == id {
			return c.From, true
		}
	}
	return "", false
}

// SetNodePosition moves a node in place. Callers work on a clone.
func (d *Diagram) SetNodePosition(id string, pos geometry.Point) error {
	i := d.NodeIndex(id)
	if i < 0 {
		return ErrNodeNotFound
	}
	d.Nodes[i].Position = pos
	return nil
}

// SetNodeSize resizes a node in place, clamping negative dimensions.
func (d *Diagram) SetNodeSize(id string, size geometry.Size) error {
	i := d.NodeIndex(id)
	if i < 0 {
		return ErrNodeNotFound
	}
	d.Nodes[i].Size = size.Clamp()
	return nil
}

// Clone creates a deep copy of the diagram
func (d *Diagram) Clone() *Diagram {
	if d == nil {
		return nil
	}

	clone := &Diagram{
		Title:      d.Title,
		Caption:    d.Caption,
		Canvas:     d.Canvas,
		Nodes:      make([]Node, len(d.Nodes)),
		Connectors: make([]Connector, len(d.Connectors)),
		Mode:       d.Mode,
	}
	copy(clone.Nodes, d.Nodes)

	// Style overrides are pointers and carry a dash slice
	for i, conn := range d.Connectors {
		clone.Connectors[i] = conn
		if conn.Style != nil {
			style := *conn.Style
			style.Dash = append([]float64(nil), conn.Style.Dash...)
			clone.Connectors[i].Style = &style
		}
	}

	if d.SideBoxes != nil {
		clone.SideBoxes = make([]SideBox, len(d.SideBoxes))
		copy(clone.SideBoxes, d.SideBoxes)
	}

	if d.Panel != nil {
		panel := *d.Panel
		panel.Items = make([]PanelItem, len(d.Panel.Items))
		copy(panel.Items, d.Panel.Items)
		clone.Panel = &panel
	}

	return clone
}
