package history

import (
	"testing"

	"github.com/gogpu/draft/entity"
	"github.com/gogpu/draft/store"
)

// record upserts a rect at x under a recording and returns the patch.
func record(t *testing.T, st *store.Store, id entity.ID, x float32) store.Patch {
	t.Helper()
	if err := st.BeginRecord(); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Upsert(id, &entity.Rect{X: x, W: 1, H: 1}); err != nil {
		t.Fatal(err)
	}
	p, ok := st.EndRecord()
	if !ok {
		t.Fatal("EndRecord() recorded nothing")
	}
	return p
}

func xOf(st *store.Store, id entity.ID) float32 {
	e, ok := st.Get(id)
	if !ok {
		return -1
	}
	return e.Shape.(*entity.Rect).X
}

func TestUndoRedo(t *testing.T) {
	st := store.New()
	h := New(0)
	if h.CanUndo() || h.CanRedo() {
		t.Fatal("fresh history can undo or redo")
	}
	for _, x := range []float32{1, 2, 3} {
		h.Push(record(t, st, 1, x))
	}
	if m := h.Meta(); m.Depth != 3 || m.Cursor != 3 || m.Capacity != DefaultDepth {
		t.Fatalf("Meta() = %+v", m)
	}

	steps := []struct {
		name string
		do   func() bool
		ok   bool
		x    float32
	}{
		{"undo to 2", func() bool { return h.Undo(st) }, true, 2},
		{"undo to 1", func() bool { return h.Undo(st) }, true, 1},
		{"undo create", func() bool { return h.Undo(st) }, true, -1},
		{"undo past start", func() bool { return h.Undo(st) }, false, -1},
		{"redo create", func() bool { return h.Redo(st) }, true, 1},
		{"redo to 2", func() bool { return h.Redo(st) }, true, 2},
		{"redo to 3", func() bool { return h.Redo(st) }, true, 3},
		{"redo past end", func() bool { return h.Redo(st) }, false, 3},
	}
	for _, s := range steps {
		if got := s.do(); got != s.ok {
			t.Fatalf("%s: returned %v, want %v", s.name, got, s.ok)
		}
		if got := xOf(st, 1); got != s.x {
			t.Fatalf("%s: x = %v, want %v", s.name, got, s.x)
		}
	}
}

func TestPushDiscardsRedo(t *testing.T) {
	st := store.New()
	h := New(10)
	h.Push(record(t, st, 1, 1))
	h.Push(record(t, st, 1, 2))
	h.Undo(st)
	h.Push(record(t, st, 1, 5))
	if h.CanRedo() {
		t.Error("CanRedo() after a new push")
	}
	if m := h.Meta(); m.Depth != 2 || m.Cursor != 2 {
		t.Errorf("Meta() = %+v, want depth 2 cursor 2", m)
	}
	h.Undo(st)
	if got := xOf(st, 1); got != 1 {
		t.Errorf("x after undo = %v, want 1", got)
	}
}

func TestEviction(t *testing.T) {
	st := store.New()
	h := New(3)
	for i := range 5 {
		h.Push(record(t, st, 1, float32(i+1)))
	}
	if m := h.Meta(); m.Depth != 3 || m.Cursor != 3 {
		t.Fatalf("Meta() = %+v, want depth 3 cursor 3", m)
	}
	if h.Evicted() != 2 {
		t.Errorf("Evicted() = %d, want 2", h.Evicted())
	}
	n := 0
	for h.Undo(st) {
		n++
	}
	if n != 3 {
		t.Errorf("undid %d entries, want 3", n)
	}
	if h.CanUndo() {
		t.Error("CanUndo() at the eviction horizon")
	}
	// The oldest kept entry moved x from 2 to 3.
	if got := xOf(st, 1); got != 2 {
		t.Errorf("x at horizon = %v, want 2", got)
	}
}

func TestEmptyPatchIgnored(t *testing.T) {
	h := New(5)
	gen := h.Meta().Generation
	h.Push(store.Patch{})
	if h.CanUndo() || h.Meta().Generation != gen {
		t.Error("empty patch was recorded")
	}
}

func TestGenerationAndClear(t *testing.T) {
	st := store.New()
	h := New(5)
	h.Push(record(t, st, 1, 1))
	g1 := h.Meta().Generation
	h.Undo(st)
	g2 := h.Meta().Generation
	h.Clear()
	g3 := h.Meta().Generation
	if !(g1 < g2 && g2 < g3) {
		t.Errorf("generations %d, %d, %d not increasing", g1, g2, g3)
	}
	if h.CanUndo() || h.CanRedo() || h.Meta().Depth != 0 {
		t.Error("Clear() left entries")
	}
}
