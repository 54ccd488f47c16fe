package snapshot

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/draft/entity"
	"github.com/gogpu/draft/store"
)

func sample(t *testing.T) *store.Store {
	t.Helper()
	st := store.New()
	st.PutLayer(store.Layer{ID: 3, Name: "annotations", Flags: entity.LayerVisible | entity.LayerLocked, Style: entity.DefaultStyle()})
	shapes := []entity.Shape{
		&entity.Rect{X: 1, Y: 2, W: 3, H: 4, Rotation: 0.5, Style: entity.DefaultStyle()},
		&entity.Polyline{Points: []entity.Vec2{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 0}}, Style: entity.DefaultStyle()},
		&entity.Node{X: 5, Y: 5, Anchor: 1},
		&entity.Node{X: 9, Y: 9},
		&entity.Conduit{From: 3, To: 4, Style: entity.DefaultStyle()},
		&entity.Text{X: 10, Y: 20, Align: entity.AlignCenter, Runs: []entity.TextRun{{Length: 5, Size: 12, Color: entity.Black}}, Content: []byte("hello")},
		&entity.Symbol{Key: 7, X: 1, Y: 1, W: 2, H: 2, ScaleX: 1, ScaleY: 1},
	}
	for i, s := range shapes {
		if _, err := st.Upsert(entity.ID(i+1), s); err != nil {
			t.Fatal(err)
		}
	}
	if err := st.SetLayer(2, 3); err != nil {
		t.Fatal(err)
	}
	st.SendToBack([]entity.ID{6})
	st.Select(store.SelectReplace, []entity.ID{1, 7})
	return st
}

func assertSameContent(t *testing.T, got, want store.Document) {
	t.Helper()
	if !slices.Equal(got.Order, want.Order) {
		t.Errorf("Order = %v, want %v", got.Order, want.Order)
	}
	if !slices.Equal(got.Selection, want.Selection) {
		t.Errorf("Selection = %v, want %v", got.Selection, want.Selection)
	}
	if !slices.Equal(got.Layers, want.Layers) {
		t.Errorf("Layers = %+v, want %+v", got.Layers, want.Layers)
	}
	if len(got.Entities) != len(want.Entities) {
		t.Fatalf("%d entities, want %d", len(got.Entities), len(want.Entities))
	}
	for i := range want.Entities {
		if !entity.Equal(got.Entities[i], want.Entities[i]) {
			t.Errorf("entity %d = %+v, want %+v", i, got.Entities[i], want.Entities[i])
		}
	}
}

func TestRoundTrip(t *testing.T) {
	src := sample(t)
	buf := Save(src)

	dst := store.New()
	dst.Upsert(99, &entity.Node{})
	if err := Load(dst, buf); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	assertSameContent(t, dst.Document(), src.Document())
	if dst.Has(99) {
		t.Error("Load() kept an entity from the previous document")
	}
	if again := Save(dst); len(again) != len(buf) {
		t.Errorf("re-saved snapshot is %d bytes, want %d", len(again), len(buf))
	}
}

func TestGenerationMonotonic(t *testing.T) {
	src := sample(t)
	buf := Save(src)
	saved := src.Generation().Content

	dst := store.New()
	for i := range 100 {
		dst.Upsert(entity.ID(i+1), &entity.Node{})
	}
	live := dst.Generation().Content
	if err := Load(dst, buf); err != nil {
		t.Fatal(err)
	}
	if got, want := dst.Generation().Content, max(saved, live+1); got != want {
		t.Errorf("content generation = %d, want %d", got, want)
	}
}

func TestRejectedLoadLeavesStore(t *testing.T) {
	good := Save(sample(t))
	corrupt := func(f func([]byte) []byte) []byte { return f(slices.Clone(good)) }

	tests := []struct {
		name string
		buf  []byte
		want error
	}{
		{"empty", nil, ErrIncompatible},
		{"bad magic", corrupt(func(b []byte) []byte { b[0] = 'X'; return b }), ErrIncompatible},
		{"bad version", corrupt(func(b []byte) []byte { b[4] = 9; return b }), ErrIncompatible},
		{"unknown flags", corrupt(func(b []byte) []byte { b[8] = 1; return b }), ErrIncompatible},
		{"flipped body byte", corrupt(func(b []byte) []byte { b[40] ^= 0xFF; return b }), ErrCorrupt},
		{"truncated", good[:len(good)-1], ErrCorrupt},
		{"header only", good[:16], ErrCorrupt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := sample(t)
			before := st.Document()
			gen := st.Generation()
			err := Load(st, tt.buf)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Load() error = %v, want %v", err, tt.want)
			}
			assertSameContent(t, st.Document(), before)
			if st.Generation() != gen {
				t.Errorf("Generation() = %+v, want %+v", st.Generation(), gen)
			}
		})
	}
}

func TestInconsistentDocumentRejected(t *testing.T) {
	doc := sample(t).Document()
	doc.Order = doc.Order[1:]
	if _, err := Decode(Encode(doc)); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Decode(order missing an id) error = %v, want ErrCorrupt", err)
	}

	doc = sample(t).Document()
	doc.Selection = append(doc.Selection, 1000)
	if _, err := Decode(Encode(doc)); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Decode(selection of unknown id) error = %v, want ErrCorrupt", err)
	}
}

func TestPeek(t *testing.T) {
	st := sample(t)
	h, err := Peek(Save(st))
	if err != nil {
		t.Fatal(err)
	}
	if h.Version != Version || h.Entities != st.Len() || h.Layers != len(st.Layers()) || h.Generation != st.Generation().Content {
		t.Errorf("Peek() = %+v", h)
	}
}
