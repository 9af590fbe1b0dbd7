// Package history implements linear snapshot-based undo/redo over the block
// list of a scene.
//
// Every entry is an independent deep copy. Mutating the live scene never
// changes a stored entry, and mutating a returned snapshot never changes
// history.
package history

import "github.com/matzehuels/blockfit/pkg/scene"

// History is a list of snapshots plus a cursor that stays within bounds.
// The zero value is an empty history; New starts with an initial snapshot.
type History struct {
	entries [][]scene.Block
	cursor  int
}

// New returns a history whose first entry is a copy of initial.
func New(initial []scene.Block) *History {
	h := &History{}
	h.Record(initial)
	return h
}

// Record discards every entry after the cursor, appends a copy of blocks and
// moves the cursor onto it.
func (h *History) Record(blocks []scene.Block) {
	if len(h.entries) > 0 {
		h.entries = h.entries[:h.cursor+1]
	}
	h.entries = append(h.entries, scene.CloneBlocks(blocks))
	h.cursor = len(h.entries) - 1
}

// Undo steps back one entry and returns a copy of it. It returns false when
// already at the first entry.
func (h *History) Undo() ([]scene.Block, bool) {
	if !h.CanUndo() {
		return nil, false
	}
	h.cursor--
	return scene.CloneBlocks(h.entries[h.cursor]), true
}

// Redo steps forward one entry and returns a copy of it. It returns false
// when already at the last entry.
func (h *History) Redo() ([]scene.Block, bool) {
	if !h.CanRedo() {
		return nil, false
	}
	h.cursor++
	return scene.CloneBlocks(h.entries[h.cursor]), true
}

// CanUndo reports whether Undo would move the cursor.
func (h *History) CanUndo() bool { return h.cursor > 0 }

// CanRedo reports whether Redo would move the cursor.
func (h *History) CanRedo() bool { return h.cursor < len(h.entries)-1 }

// Len returns the number of stored entries.
func (h *History) Len() int { return len(h.entries) }

// Cursor returns the index of the current entry, or -1 when empty.
func (h *History) Cursor() int {
	if len(h.entries) == 0 {
		return -1
	}
	return h.cursor
}
