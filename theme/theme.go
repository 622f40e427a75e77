// Package theme holds the color tables used to draw diagrams.
package theme

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Theme is a named set of colors for one visual style.
type Theme struct {
	Name       string
	Background colorful.Color
	Surface    colorful.Color
	Text       colorful.Color
	Muted      colorful.Color
	Border     colorful.Color
	Accent     colorful.Color
	// Neutral is used for connectors and nodes that carry no branch color.
	Neutral colorful.Color
	Panel   colorful.Color
	SideBox colorful.Color
}

// BranchPalette is the fixed sequence of mind-map branch colors.
var BranchPalette = []colorful.Color{
	mustHex("#ef4444"), // red
	mustHex("#f97316"), // orange
	mustHex("#f59e0b"), // amber
	mustHex("#84cc16"), // lime
	mustHex("#10b981"), // emerald
	mustHex("#06b6d4"), // cyan
	mustHex("#3b82f6"), // blue
	mustHex("#8b5cf6"), // violet
	mustHex("#ec4899"), // pink
}

// Light is the default theme.
var Light = Theme{
	Name:       "light",
	Background: mustHex("#ffffff"),
	Surface:    mustHex("#f8fafc"),
	Text:       mustHex("#0f172a"),
	Muted:      mustHex("#64748b"),
	Border:     mustHex("#cbd5e1"),
	Accent:     mustHex("#2563eb"),
	Neutral:    mustHex("#94a3b8"),
	Panel:      mustHex("#f1f5f9"),
	SideBox:    mustHex("#fef9c3"),
}

// Dark is the dark variant.
var Dark = Theme{
	Name:       "dark",
	Background: mustHex("#0b1120"),
	Surface:    mustHex("#1e293b"),
	Text:       mustHex("#e2e8f0"),
	Muted:      mustHex("#94a3b8"),
	Border:     mustHex("#334155"),
	Accent:     mustHex("#60a5fa"),
	Neutral:    mustHex("#64748b"),
	Panel:      mustHex("#111827"),
	SideBox:    mustHex("#3f3f1f"),
}

// ByName returns the theme with the given name. Unknown names fall back
// to Light and report false.
func ByName(name string) (Theme, bool) {
	switch strings.ToLower(name) {
	case "", "light":
		return Light, true
	case "dark":
		return Dark, true
	default:
		return Light, false
	}
}

// Names returns the available theme names.
func Names() []string {
	return []string{Light.Name, Dark.Name}
}

// PaletteColor returns palette[i mod len(palette)].
func PaletteColor(palette []colorful.Color, i int) colorful.Color {
	n := len(palette)
	return palette[((i%n)+n)%n]
}

// Tint mixes c towards the background so filled shapes stay readable.
func (t Theme) Tint(c colorful.Color, amount float64) colorful.Color {
	return c.BlendLab(t.Background, amount).Clamped()
}

// ParseColor accepts a "#rrggbb" string and returns the color.
func ParseColor(s string) (colorful.Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return c, nil
}

// mustHex parses the static color tables above.
func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}
