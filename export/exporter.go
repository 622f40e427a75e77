// Package export writes diagrams to interchange, vector and raster formats.
package export

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/lucasb-eyer/go-colorful"

	"mindflow/diagram"
	"mindflow/render"
	"mindflow/theme"
)

// ErrUnsupportedFormat is returned for format names no exporter handles.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format represents an export format
type Format string

const (
	// FormatJSON writes the interchange document
	FormatJSON Format = "json"
	// FormatMermaid exports to Mermaid diagram syntax
	FormatMermaid Format = "mermaid"
	// FormatSVG draws the scene as scalable vector graphics
	FormatSVG Format = "svg"
	// FormatPNG rasterizes the scene
	FormatPNG Format = "png"
)

// Exporter interface for different export formats
type Exporter interface {
	// Export converts a diagram to the target format
	Export(d *diagram.Diagram) ([]byte, error)
	// GetFileExtension returns the recommended file extension for this format
	GetFileExtension() string
	// GetFormatName returns a human-readable name for this format
	GetFormatName() string
}

// Options configures the drawing exporters. Zero values get defaults.
type Options struct {
	Theme theme.Theme
	// Background overrides the theme background when set.
	Background *colorful.Color
	// FontSize is the title size in model units.
	FontSize float64
	// Scale multiplies the raster size of PNG output.
	Scale float64
	// Scene holds the routing and placement options. Zero values get
	// render defaults.
	Scene  render.Options
	Logger *slog.Logger
}

// DefaultOptions returns light-theme options.
func DefaultOptions() Options {
	return Options{Theme: theme.Light, FontSize: 16, Scale: 1}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Theme.Name == "" {
		o.Theme = def.Theme
	}
	if o.FontSize <= 0 {
		o.FontSize = def.FontSize
	}
	if o.Scale <= 0 {
		o.Scale = def.Scale
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

func (o Options) background() colorful.Color {
	if o.Background != nil {
		return *o.Background
	}
	return o.Theme.Background
}

// NewExporter creates an exporter for the specified format
func NewExporter(format Format, opts Options) (Exporter, error) {
	switch format {
	case FormatJSON:
		return NewJSONExporter(), nil
	case FormatMermaid:
		return NewMermaidExporter(), nil
	case FormatSVG:
		return NewSVGExporter(opts), nil
	case FormatPNG:
		return NewPNGExporter(opts), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// ParseFormat converts a string to a Format
func ParseFormat(s string) (Format, error) {
	switch s {
	case "json":
		return FormatJSON, nil
	case "mermaid", "mmd":
		return FormatMermaid, nil
	case "svg":
		return FormatSVG, nil
	case "png":
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// GetAvailableFormats returns a list of all available export formats
func GetAvailableFormats() []Format {
	return []Format{
		FormatJSON,
		FormatMermaid,
		FormatSVG,
		FormatPNG,
	}
}

// GetFormatDescriptions returns human-readable descriptions of all formats
func GetFormatDescriptions() map[Format]string {
	return map[Format]string{
		FormatJSON:    "Diagram document (load and save format)",
		FormatMermaid: "Mermaid diagram syntax (for Markdown)",
		FormatSVG:     "Scalable vector graphics at canvas size",
		FormatPNG:     "Raster image at canvas size",
	}
}
