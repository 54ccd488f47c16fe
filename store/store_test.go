package store

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/gogpu/draft/entity"
)

func rect(x float32) *entity.Rect {
	return &entity.Rect{X: x, Y: 0, W: 10, H: 10, Style: entity.DefaultStyle()}
}

func withRects(t *testing.T, ids ...entity.ID) *Store {
	t.Helper()
	s := New()
	for _, id := range ids {
		if _, err := s.Upsert(id, rect(float32(id))); err != nil {
			t.Fatalf("Upsert(%d) error = %v", id, err)
		}
	}
	return s
}

func TestUpsertKeepsPositionAndReplacesPayload(t *testing.T) {
	s := withRects(t, 1, 2, 3)
	s.Select(SelectReplace, []entity.ID{2})

	created, err := s.Upsert(2, &entity.Rect{X: 99, W: 1, H: 1})
	if err != nil || created {
		t.Fatalf("Upsert(2) = (%v, %v), want (false, nil)", created, err)
	}
	if got := s.Order(); !slices.Equal(got, []entity.ID{1, 2, 3}) {
		t.Errorf("Order() = %v, want [1 2 3]", got)
	}
	e, _ := s.Get(2)
	if e.Shape.(*entity.Rect).X != 99 {
		t.Errorf("payload X = %v, want 99", e.Shape.(*entity.Rect).X)
	}
	if !s.Selected(2) {
		t.Error("replacing the payload dropped the selection")
	}
}

func TestUpsertErrors(t *testing.T) {
	s := withRects(t, 1)
	if _, err := s.Upsert(1, &entity.Circle{}); !errors.Is(err, ErrKindMismatch) {
		t.Errorf("Upsert(kind change) error = %v, want ErrKindMismatch", err)
	}
	if _, err := s.Upsert(0, rect(0)); !errors.Is(err, ErrInvalidID) {
		t.Errorf("Upsert(0) error = %v, want ErrInvalidID", err)
	}
	if _, err := s.Upsert(2, nil); !errors.Is(err, ErrNilShape) {
		t.Errorf("Upsert(nil) error = %v, want ErrNilShape", err)
	}
	if e, _ := s.Get(1); e.Kind() != entity.KindRect {
		t.Errorf("kind after rejected upsert = %s", e.Kind())
	}
	if _, err := s.Upsert(3, &entity.Node{X: float32(math.NaN())}); !errors.Is(err, ErrNonFinite) {
		t.Errorf("Upsert(NaN) error = %v, want ErrNonFinite", err)
	}
	if s.Has(3) {
		t.Error("non-finite entity was stored")
	}
}

func TestUpdateRejectsNonFinite(t *testing.T) {
	s := withRects(t, 1)
	gen := s.Generation()
	err := s.Update(1, func(sh entity.Shape) { sh.(*entity.Rect).W = float32(math.Inf(1)) })
	if !errors.Is(err, ErrNonFinite) {
		t.Fatalf("Update(Inf) error = %v, want ErrNonFinite", err)
	}
	if e, _ := s.Get(1); e.Shape.(*entity.Rect).W != 10 {
		t.Errorf("rejected update stored %+v", e.Shape)
	}
	if s.Generation() != gen {
		t.Error("rejected update moved the generation")
	}
}

func TestGetReturnsCopy(t *testing.T) {
	s := withRects(t, 1)
	e, _ := s.Get(1)
	e.Shape.(*entity.Rect).X = 1000
	if got, _ := s.Get(1); got.Shape.(*entity.Rect).X == 1000 {
		t.Error("mutating Get() result changed the store")
	}
}

func TestDeletePrunesOrderAndSelection(t *testing.T) {
	s := withRects(t, 1, 2, 3)
	s.Select(SelectReplace, []entity.ID{2, 3})
	if !s.Delete(2) {
		t.Fatal("Delete(2) = false")
	}
	if got := s.Order(); !slices.Equal(got, []entity.ID{1, 3}) {
		t.Errorf("Order() = %v, want [1 3]", got)
	}
	if got := s.Selection().IDs(); !slices.Equal(got, []entity.ID{3}) {
		t.Errorf("selection = %v, want [3]", got)
	}
	if s.Delete(2) {
		t.Error("Delete(unknown) = true")
	}
}

func TestReorder(t *testing.T) {
	tests := []struct {
		name string
		op   func(*Store, []entity.ID) bool
		ids  []entity.ID
		want []entity.ID
	}{
		{"send to back", (*Store).SendToBack, []entity.ID{3}, []entity.ID{3, 1, 2, 4, 5}},
		{"bring to front keeps relative order", (*Store).BringToFront, []entity.ID{4, 1}, []entity.ID{2, 3, 5, 1, 4}},
		{"send to back keeps relative order", (*Store).SendToBack, []entity.ID{5, 2}, []entity.ID{2, 5, 1, 3, 4}},
		{"bring forward one step", (*Store).BringForward, []entity.ID{2}, []entity.ID{1, 3, 2, 4, 5}},
		{"bring forward block", (*Store).BringForward, []entity.ID{1, 2}, []entity.ID{3, 1, 2, 4, 5}},
		{"bring forward at top", (*Store).BringForward, []entity.ID{5}, []entity.ID{1, 2, 3, 4, 5}},
		{"bring forward separated", (*Store).BringForward, []entity.ID{1, 3}, []entity.ID{2, 1, 4, 3, 5}},
		{"send backward one step", (*Store).SendBackward, []entity.ID{4}, []entity.ID{1, 2, 4, 3, 5}},
		{"send backward block", (*Store).SendBackward, []entity.ID{4, 5}, []entity.ID{1, 2, 4, 5, 3}},
		{"send backward at bottom", (*Store).SendBackward, []entity.ID{1, 2}, []entity.ID{1, 2, 3, 4, 5}},
		{"unknown ids ignored", (*Store).BringToFront, []entity.ID{42}, []entity.ID{1, 2, 3, 4, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := withRects(t, 1, 2, 3, 4, 5)
			before := s.Generation().Content
			changed := tt.op(s, tt.ids)
			got := s.Order()
			if !slices.Equal(got, tt.want) {
				t.Errorf("Order() = %v, want %v", got, tt.want)
			}
			wantChanged := !slices.Equal(tt.want, []entity.ID{1, 2, 3, 4, 5})
			if changed != wantChanged {
				t.Errorf("changed = %v, want %v", changed, wantChanged)
			}
			if bumped := s.Generation().Content != before; bumped != wantChanged {
				t.Errorf("generation bumped = %v, want %v", bumped, wantChanged)
			}
		})
	}
}

func TestSetOrderNormalizes(t *testing.T) {
	s := withRects(t, 1, 2, 3, 4)
	s.SetOrder([]entity.ID{3, 9, 3, 1})
	if got := s.Order(); !slices.Equal(got, []entity.ID{3, 1, 2, 4}) {
		t.Errorf("Order() = %v, want [3 1 2 4]", got)
	}
}

func TestSelect(t *testing.T) {
	s := withRects(t, 1, 2, 3)
	steps := []struct {
		mode SelectMode
		ids  []entity.ID
		want []entity.ID
	}{
		{SelectReplace, []entity.ID{1, 2, 77}, []entity.ID{1, 2}},
		{SelectAdd, []entity.ID{3}, []entity.ID{1, 2, 3}},
		{SelectRemove, []entity.ID{1}, []entity.ID{2, 3}},
		{SelectToggle, []entity.ID{1, 2, 2}, []entity.ID{1, 3}},
		{SelectReplace, nil, nil},
	}
	for i, st := range steps {
		s.Select(st.mode, st.ids)
		if got := s.Selection().IDs(); !slices.Equal(got, st.want) {
			t.Errorf("step %d (%s %v): selection = %v, want %v", i, st.mode, st.ids, got, st.want)
		}
	}
	gen := s.Generation()
	if s.ClearSelection() {
		t.Error("ClearSelection() on empty selection = true")
	}
	if s.Generation() != gen {
		t.Error("no-op ClearSelection bumped generations")
	}
}

func TestSelectionIsNotContent(t *testing.T) {
	s := withRects(t, 1)
	before := s.Generation().Content
	s.Select(SelectAdd, []entity.ID{1})
	if s.Generation().Content != before {
		t.Error("selecting bumped the content generation")
	}
}

func TestRecordAndApply(t *testing.T) {
	s := withRects(t, 1, 2, 3)
	before := s.Document()

	if err := s.BeginRecord(); err != nil {
		t.Fatal(err)
	}
	if err := s.BeginRecord(); !errors.Is(err, ErrRecording) {
		t.Errorf("nested BeginRecord() error = %v, want ErrRecording", err)
	}
	s.Upsert(1, rect(50))
	s.Upsert(4, &entity.Circle{RX: 1, RY: 1})
	s.Delete(2)
	s.SendToBack([]entity.ID{3})
	s.PutLayer(Layer{ID: 5, Name: "notes", Flags: entity.LayerVisible})
	s.SetLayer(4, 5)
	patch, ok := s.EndRecord()
	if !ok {
		t.Fatal("EndRecord() ok = false")
	}
	after := s.Document()

	s.Apply(patch.Reverse)
	assertDocEqual(t, "after reverse", s.Document(), before)
	s.Apply(patch.Forward)
	assertDocEqual(t, "after forward", s.Document(), after)
}

func TestRecordNetNoChange(t *testing.T) {
	s := withRects(t, 1, 2)
	s.BeginRecord()
	s.Upsert(1, rect(7))
	s.Upsert(1, rect(1))
	s.BringToFront([]entity.ID{1})
	s.SendToBack([]entity.ID{1})
	s.Upsert(9, rect(9))
	s.Delete(9)
	if p, ok := s.EndRecord(); ok {
		t.Errorf("EndRecord() = %+v, want nothing recorded", p)
	}
}

func TestClearIsRecorded(t *testing.T) {
	s := withRects(t, 1, 2)
	before := s.Document()
	s.BeginRecord()
	s.Clear()
	patch, ok := s.EndRecord()
	if !ok || s.Len() != 0 {
		t.Fatalf("Clear: ok=%v len=%d", ok, s.Len())
	}
	s.Apply(patch.Reverse)
	assertDocEqual(t, "undo clear", s.Document(), before)
}

func TestLayers(t *testing.T) {
	s := withRects(t, 1)
	if err := s.DeleteLayer(entity.DefaultLayer); !errors.Is(err, ErrDefaultLayer) {
		t.Errorf("DeleteLayer(default) error = %v, want ErrDefaultLayer", err)
	}
	if err := s.SetLayer(1, 3); !errors.Is(err, ErrNoLayer) {
		t.Errorf("SetLayer(unknown layer) error = %v, want ErrNoLayer", err)
	}
	s.PutLayer(Layer{ID: 3, Name: "hidden"})
	if err := s.SetLayer(1, 3); err != nil {
		t.Fatal(err)
	}
	e, _ := s.Peek(1)
	if s.LayerOf(e).Visible() {
		t.Error("entity on a layer without LayerVisible reports visible")
	}
	if err := s.DeleteLayer(3); err != nil {
		t.Fatal(err)
	}
	if e, _ := s.Get(1); e.Layer != entity.DefaultLayer {
		t.Errorf("layer after DeleteLayer = %d, want default", e.Layer)
	}
	if n := len(s.Layers()); n != 1 {
		t.Errorf("len(Layers()) = %d, want 1", n)
	}
}

func TestReplace(t *testing.T) {
	src := withRects(t, 1, 2, 3)
	src.SendToBack([]entity.ID{3})
	src.Select(SelectReplace, []entity.ID{1})
	doc := src.Document()

	dst := withRects(t, 7)
	for range 10 {
		dst.Upsert(7, rect(1))
	}
	live := dst.Generation().Content
	if err := dst.Replace(doc); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	assertDocEqual(t, "replaced", dst.Document(), doc)
	if g := dst.Generation().Content; g <= live {
		t.Errorf("content generation = %d, want > %d", g, live)
	}

	bad := doc
	bad.Order = []entity.ID{1, 1, 2}
	if err := dst.Replace(bad); !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("Replace(bad order) error = %v, want ErrInvalidDocument", err)
	}
	if got := dst.Order(); !slices.Equal(got, doc.Order) {
		t.Errorf("failed Replace changed the order to %v", got)
	}
}

func TestNodePosition(t *testing.T) {
	s := New()
	s.Upsert(1, &entity.Node{X: 3, Y: 4})
	s.Upsert(2, rect(0))
	if p, ok := s.NodePosition(1); !ok || p.X != 3 || p.Y != 4 {
		t.Errorf("NodePosition(1) = %v, %v", p, ok)
	}
	if _, ok := s.NodePosition(2); ok {
		t.Error("NodePosition(rect) ok = true")
	}
}

func assertDocEqual(t *testing.T, label string, got, want Document) {
	t.Helper()
	if !slices.Equal(got.Order, want.Order) {
		t.Errorf("%s: order = %v, want %v", label, got.Order, want.Order)
	}
	if !slices.Equal(got.Selection, want.Selection) {
		t.Errorf("%s: selection = %v, want %v", label, got.Selection, want.Selection)
	}
	if !slices.Equal(got.Layers, want.Layers) {
		t.Errorf("%s: layers = %v, want %v", label, got.Layers, want.Layers)
	}
	if len(got.Entities) != len(want.Entities) {
		t.Fatalf("%s: %d entities, want %d", label, len(got.Entities), len(want.Entities))
	}
	for i := range got.Entities {
		if !entity.Equal(got.Entities[i], want.Entities[i]) {
			t.Errorf("%s: entity %d = %+v, want %+v", label, i, got.Entities[i], want.Entities[i])
		}
	}
}
