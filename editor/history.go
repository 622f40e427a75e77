package editor

import (
	"mindflow/diagram"
)

// History is a linear undo/redo stack of committed diagram snapshots.
// The snapshot at the current index is the diagram being shown. Only
// Commit discards entries; Undo and Redo move the index.
type History struct {
	states  []*diagram.Diagram // Committed snapshots, never mutated
	current int                // Current position in history
	max     int                // Maximum number of states to keep, 0 for no limit
}

// NewHistory creates a history whose first entry is initial. A positive
// max bounds the number of entries; the oldest ones are dropped first.
func NewHistory(initial *diagram.Diagram, max int) *History {
	if initial == nil {
		initial = &diagram.Diagram{}
	}
	return &History{
		states:  []*diagram.Diagram{initial.Clone()},
		current: 0,
		max:     max,
	}
}

// Commit truncates everything after the current entry, appends a copy of d
// and makes it current.
func (h *History) Commit(d *diagram.Diagram) {
	// If we're not at the end, truncate everything after current
	if h.current < len(h.states)-1 {
		clear(h.states[h.current+1:])
		h.states = h.states[:h.current+1]
	}

	h.states = append(h.states, d.Clone())

	// If we exceed max, remove oldest
	if h.max > 0 && len(h.states) > h.max {
		drop := len(h.states) - h.max
		h.states = append(h.states[:0], h.states[drop:]...)
	}
	h.current = len(h.states) - 1
}

// CanUndo returns true if we can undo
func (h *History) CanUndo() bool {
	return h.current > 0
}

// CanRedo returns true if we can redo
func (h *History) CanRedo() bool {
	return h.current < len(h.states)-1
}

// Undo goes back one state. It is a no-op at the first entry.
func (h *History) Undo() bool {
	if !h.CanUndo() {
		return false
	}
	h.current--
	return true
}

// Redo goes forward one state. It is a no-op at the last entry.
func (h *History) Redo() bool {
	if !h.CanRedo() {
		return false
	}
	h.current++
	return true
}

// Current returns the snapshot being shown. Callers must not modify it.
func (h *History) Current() *diagram.Diagram {
	return h.states[h.current]
}

// Reset drops every entry and starts over from d.
func (h *History) Reset(d *diagram.Diagram) {
	clear(h.states)
	h.states = append(h.states[:0], d.Clone())
	h.current = 0
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.states)
}

// Index returns the current position.
func (h *History) Index() int {
	return h.current
}

// Stats returns current position and total states
func (h *History) Stats() (current, total int) {
	return h.current + 1, len(h.states)
}
