package terminal

// BoxStyle defines the characters used to draw a box.
type BoxStyle struct {
	TopLeft     rune
	TopRight    rune
	BottomLeft  rune
	BottomRight rune
	Horizontal  rune
	Vertical    rune
}

// Predefined box styles
var (
	// DefaultBoxStyle uses rounded corners
	DefaultBoxStyle = BoxStyle{
		TopLeft:     '╭',
		TopRight:    '╮',
		BottomLeft:  '╰',
		BottomRight: '╯',
		Horizontal:  '─',
		Vertical:    '│',
	}

	// DoubleBoxStyle marks start and end nodes
	DoubleBoxStyle = BoxStyle{
		TopLeft:     '╔',
		TopRight:    '╗',
		BottomLeft:  '╚',
		BottomRight: '╝',
		Horizontal:  '═',
		Vertical:    '║',
	}

	// HeavyBoxStyle marks the selected node
	HeavyBoxStyle = BoxStyle{
		TopLeft:     '┏',
		TopRight:    '┓',
		BottomLeft:  '┗',
		BottomRight: '┛',
		Horizontal:  '━',
		Vertical:    '┃',
	}
)

// ArrowStyle defines the characters used for arrows in different directions.
type ArrowStyle struct {
	Right rune
	Left  rune
	Up    rune
	Down  rune
}

// StandardArrows uses Unicode triangles
var StandardArrows = ArrowStyle{
	Right: '▶',
	Left:  '◀',
	Up:    '▲',
	Down:  '▼',
}

// Arrow returns the arrow pointing along (dx, dy).
func (a ArrowStyle) Arrow(dx, dy float64) rune {
	if abs(dx) >= abs(dy) {
		if dx >= 0 {
			return a.Right
		}
		return a.Left
	}
	if dy >= 0 {
		return a.Down
	}
	return a.Up
}

// lineRune picks the character for a line step along (dx, dy).
func lineRune(dx, dy int, dotted bool) rune {
	switch {
	case dotted:
		return '┄'
	case dy == 0:
		return '─'
	case dx == 0:
		return '│'
	case (dx > 0) == (dy > 0):
		return '╲'
	default:
		return '╱'
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
