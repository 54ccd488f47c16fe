// Package history keeps a bounded linear undo/redo list of store patches.
//
// Entries up to the cursor are applied; entries after it can be redone. A
// push after an undo discards everything after the cursor. When the list
// reaches its depth the oldest entry is evicted, so undo stops at the
// eviction horizon.
package history

import "github.com/gogpu/draft/store"

// DefaultDepth is the depth used when New is given a non-positive depth.
const DefaultDepth = 50

// Applier applies a delta. *store.Store implements it.
type Applier interface {
	Apply(d store.Delta)
}

// Meta describes the history without exposing patches.
type Meta struct {
	Depth      int    // entries held
	Capacity   int    // maximum entries
	Cursor     int    // entries currently applied
	Generation uint64 // bumped on every push, undo, redo and clear
}

// History is a bounded undo/redo list. It is not safe for concurrent use.
type History struct {
	entries  []store.Patch
	cursor   int
	capacity int
	gen      uint64
	evicted  int
}

// New returns an empty history holding at most depth entries.
func New(depth int) *History {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &History{capacity: depth}
}

// Push records a patch as the newest entry, dropping any redo entries.
// Empty patches are ignored.
func (h *History) Push(p store.Patch) {
	if p.Forward.Empty() && p.Reverse.Empty() {
		return
	}
	h.entries = append(h.entries[:h.cursor], p)
	if len(h.entries) > h.capacity {
		n := len(h.entries) - h.capacity
		clear(h.entries[:n])
		h.entries = append(h.entries[:0], h.entries[n:]...)
		h.evicted += n
	}
	h.cursor = len(h.entries)
	h.gen++
}

// CanUndo reports whether an applied entry remains.
func (h *History) CanUndo() bool { return h.cursor > 0 }

// CanRedo reports whether an undone entry remains.
func (h *History) CanRedo() bool { return h.cursor < len(h.entries) }

// Undo applies the reverse delta of the entry at the cursor.
func (h *History) Undo(a Applier) bool {
	if !h.CanUndo() {
		return false
	}
	h.cursor--
	a.Apply(h.entries[h.cursor].Reverse)
	h.gen++
	return true
}

// Redo applies the forward delta of the entry after the cursor.
func (h *History) Redo(a Applier) bool {
	if !h.CanRedo() {
		return false
	}
	a.Apply(h.entries[h.cursor].Forward)
	h.cursor++
	h.gen++
	return true
}

// Clear drops every entry.
func (h *History) Clear() {
	clear(h.entries)
	h.entries = h.entries[:0]
	h.cursor = 0
	h.gen++
}

// Evicted returns how many entries have fallen off the front since New.
func (h *History) Evicted() int { return h.evicted }

// Meta returns the current counters.
func (h *History) Meta() Meta {
	return Meta{Depth: len(h.entries), Capacity: h.capacity, Cursor: h.cursor, Generation: h.gen}
}
