package autosize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	measure := func(s string) float64 { return float64(len([]rune(s))) }

	tests := []struct {
		name  string
		text  string
		width float64
		want  []string
	}{
		{"empty", "   ", 10, nil},
		{"fits", "hello world", 20, []string{"hello world"}},
		{"breaks at spaces", "hello big world", 9, []string{"hello big", "world"}},
		{"explicit newline", "a\nb", 10, []string{"a", "b"}},
		{"long word", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Wrap(tt.text, tt.width, measure))
		})
	}
}

func TestCellMeasurer(t *testing.T) {
	m := CellMeasurer{CellWidth: 1, CellHeight: 2}
	assert.Equal(t, 4.0, m.Height("ab cd", 3))
	// Wide runes take two cells.
	assert.Equal(t, 4.0, m.Width("日本"))
	assert.Equal(t, 0.0, m.Height("", 10))
}

func TestFontMeasurer(t *testing.T) {
	m, err := NewFontMeasurer(14, 1.2)
	require.NoError(t, err)

	one := m.Height("word", 1000)
	assert.Greater(t, one, 0.0)

	narrow := m.Height("several words that will need to wrap", m.Width("several"))
	assert.Greater(t, narrow, one)
	assert.Greater(t, m.Width("wider text"), m.Width("w"))
}
