package autosize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/golang/freetype/truetype"
	"github.com/mattn/go-runewidth"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// Measurer reports how tall a block of text is when wrapped to a width.
type Measurer interface {
	Height(text string, width float64) float64
}

// MeasureFunc adapts a function to Measurer.
type MeasureFunc func(text string, width float64) float64

// Height implements Measurer.
func (f MeasureFunc) Height(text string, width float64) float64 {
	return f(text, width)
}

// LoadFace returns the Go Regular font at the given point size.
func LoadFace(size float64) (font.Face, error) {
	ttf, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return truetype.NewFace(ttf, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// FontMeasurer measures text with a real font face, the way it is drawn in
// exported images.
type FontMeasurer struct {
	face        font.Face
	lineSpacing float64
}

// NewFontMeasurer creates a measurer for the Go Regular font at size points.
func NewFontMeasurer(size, lineSpacing float64) (*FontMeasurer, error) {
	face, err := LoadFace(size)
	if err != nil {
		return nil, err
	}
	if lineSpacing <= 0 {
		lineSpacing = 1.4
	}
	return &FontMeasurer{face: face, lineSpacing: lineSpacing}, nil
}

// Face returns the underlying font face.
func (m *FontMeasurer) Face() font.Face {
	return m.face
}

// Width returns the advance width of s.
func (m *FontMeasurer) Width(s string) float64 {
	return float64(font.MeasureString(m.face, s)) / 64
}

// LineHeight returns the distance between two baselines.
func (m *FontMeasurer) LineHeight() float64 {
	return float64(m.face.Metrics().Height) / 64 * m.lineSpacing
}

// Height implements Measurer.
func (m *FontMeasurer) Height(text string, width float64) float64 {
	lines := Wrap(text, width, m.Width)
	return float64(len(lines)) * m.LineHeight()
}

// CellMeasurer measures text in terminal cells. Each cell is CellWidth by
// CellHeight model units.
type CellMeasurer struct {
	CellWidth  float64
	CellHeight float64
}

// Width returns the display width of s in model units.
func (m CellMeasurer) Width(s string) float64 {
	return float64(runewidth.StringWidth(s)) * m.cellWidth()
}

// Height implements Measurer.
func (m CellMeasurer) Height(text string, width float64) float64 {
	lines := Wrap(text, width, m.Width)
	h := m.CellHeight
	if h <= 0 {
		h = 1
	}
	return float64(len(lines)) * h
}

func (m CellMeasurer) cellWidth() float64 {
	if m.CellWidth <= 0 {
		return 1
	}
	return m.CellWidth
}

// Wrap splits text into lines no wider than width, breaking at spaces.
// Explicit newlines always break. Words wider than width are split by rune.
// Empty text has no lines.
func Wrap(text string, width float64, measure func(string) float64) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		line := ""
		for _, word := range words {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			if measure(candidate) <= width {
				line = candidate
				continue
			}
			if line != "" {
				lines = append(lines, line)
			}
			line = word
			for measure(line) > width && len([]rune(line)) > 1 {
				head, tail := splitAt(line, width, measure)
				lines = append(lines, head)
				line = tail
			}
		}
		lines = append(lines, line)
	}
	return lines
}

// splitAt returns the longest prefix of s that fits in width (at least one
// rune) and the rest.
func splitAt(s string, width float64, measure func(string) float64) (string, string) {
	runes := []rune(s)
	n := sort.Search(len(runes), func(i int) bool {
		return measure(string(runes[:i+1])) > width
	})
	n = max(n, 1)
	return string(runes[:n]), string(runes[n:])
}
