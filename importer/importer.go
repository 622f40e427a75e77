// Package importer converts diagrams written in other text formats into
// mindflow documents. Imported nodes have no positions; run a layout before
// drawing them.
package importer

import (
	"errors"
	"fmt"
	"strings"

	"mindflow/diagram"
	"mindflow/geometry"
)

var (
	// ErrUnknownFormat is returned when no importer accepts the content or
	// the requested format name.
	ErrUnknownFormat = errors.New("unknown import format")
	// ErrNoNodes is returned for documents that declare nothing to draw.
	ErrNoNodes = errors.New("no nodes found")
)

// DefaultNodeSize is given to every imported node before auto-sizing.
var DefaultNodeSize = geometry.Sz(240, 86)

// DefaultCanvas is the canvas of imported documents.
var DefaultCanvas = diagram.Canvas{Width: 1200, Height: 800}

// Importer interface defines methods for importing diagrams from various formats
type Importer interface {
	// CanImport checks if the given content can be imported by this importer
	CanImport(content string) bool

	// Import converts the input content into a diagram
	Import(content string) (*diagram.Diagram, error)

	// GetFormatName returns the human-readable name of the format
	GetFormatName() string

	// GetFileExtensions returns common file extensions for this format
	GetFileExtensions() []string
}

// Registry manages available importers
type Registry struct {
	importers []Importer
}

// NewRegistry creates a registry with every built-in importer.
func NewRegistry() *Registry {
	return &Registry{
		importers: []Importer{
			NewMermaidImporter(),
		},
	}
}

// Register adds a new importer to the registry
func (r *Registry) Register(importer Importer) {
	r.importers = append(r.importers, importer)
}

// DetectFormat attempts to detect the format of the given content
func (r *Registry) DetectFormat(content string) (Importer, error) {
	for _, imp := range r.importers {
		if imp.CanImport(content) {
			return imp, nil
		}
	}
	return nil, fmt.Errorf("unable to detect format: %w", ErrUnknownFormat)
}

// Import attempts to import content using auto-detection
func (r *Registry) Import(content string) (*diagram.Diagram, error) {
	importer, err := r.DetectFormat(content)
	if err != nil {
		return nil, err
	}
	return importer.Import(content)
}

// ImportWithFormat imports content using a specific format, matched by name
// or file extension.
func (r *Registry) ImportWithFormat(content, format string) (*diagram.Diagram, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))

	for _, imp := range r.importers {
		if strings.ToLower(imp.GetFormatName()) == format {
			return imp.Import(content)
		}
		for _, ext := range imp.GetFileExtensions() {
			if strings.TrimPrefix(ext, ".") == format {
				return imp.Import(content)
			}
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
}

// GetAvailableFormats returns a list of available import formats
func (r *Registry) GetAvailableFormats() []string {
	formats := make([]string, len(r.importers))
	for i, imp := range r.importers {
		formats[i] = imp.GetFormatName()
	}
	return formats
}
