// Package layout provides algorithms for positioning nodes in 2D space,
// plus the mind-map helpers that depend on graph structure: root finding,
// branch color propagation and rigid root drags.
package layout

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"mindflow/diagram"
)

// ErrUnknownAlgorithm is returned by New for an unrecognised name.
var ErrUnknownAlgorithm = errors.New("unknown layout algorithm")

// Engine positions the nodes of a diagram. Implementations return a new
// snapshot and leave the input untouched.
type Engine interface {
	Layout(d *diagram.Diagram) (*diagram.Diagram, error)
	Name() string
}

// Config holds the spacing constants shared by the engines.
type Config struct {
	HorizontalSpacing float64 `yaml:"horizontal_spacing"`
	VerticalSpacing   float64 `yaml:"vertical_spacing"`
	Margin            float64 `yaml:"margin"`

	// Radial layout.
	RootRadius    float64 `yaml:"root_radius"`
	ChildRadius   float64 `yaml:"child_radius"`
	ConeHalfAngle float64 `yaml:"cone_half_angle"`

	// New child placement.
	SubnodeRadius    float64 `yaml:"subnode_radius"`
	SubnodeHalfAngle float64 `yaml:"subnode_half_angle"`
	RowGap           float64 `yaml:"row_gap"`
}

// DefaultConfig returns the standard layout constants.
func DefaultConfig() Config {
	return Config{
		HorizontalSpacing: 60,
		VerticalSpacing:   80,
		Margin:            40,
		RootRadius:        260,
		ChildRadius:       300,
		ConeHalfAngle:     math.Pi / 4,
		SubnodeRadius:     220,
		SubnodeHalfAngle:  math.Pi / 6,
		RowGap:            80,
	}
}

// Algorithm names accepted by New.
const (
	AlgorithmTree       = "tree"
	AlgorithmHorizontal = "horizontal"
	AlgorithmRadial     = "radial"
)

// New returns the engine registered under name.
func New(name string, cfg Config) (Engine, error) {
	switch name {
	case AlgorithmTree:
		return NewTree(cfg), nil
	case AlgorithmHorizontal:
		return NewHorizontalTree(cfg), nil
	case AlgorithmRadial:
		return NewRadial(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}

// Names returns the algorithm names in a stable order.
func Names() []string {
	names := []string{AlgorithmTree, AlgorithmHorizontal, AlgorithmRadial}
	sort.Strings(names)
	return names
}

// shiftNonNegative moves every node so that none has a coordinate below
// margin, keeping their relative placement.
func shiftNonNegative(d *diagram.Diagram, margin float64) {
	if len(d.Nodes) == 0 {
		return
	}
	minX, minY := math.Inf(1), math.Inf(1)
	for _, n := range d.Nodes {
		minX = math.Min(minX, n.Position.X)
		minY = math.Min(minY, n.Position.Y)
	}
	dx := math.Max(0, margin-minX)
	dy := math.Max(0, margin-minY)
	if dx == 0 && dy == 0 {
		return
	}
	for i := range d.Nodes {
		d.Nodes[i].Position.X += dx
		d.Nodes[i].Position.Y += dy
	}
}
