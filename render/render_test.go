package render

import (
	"testing"

	"github.com/gogpu/draft/entity"
	"github.com/gogpu/draft/store"
	"github.com/gogpu/draft/text"
)

const red entity.Color = 0xFF0000FF

func fillOnly(c entity.Color) entity.Style {
	return entity.Style{Fill: c, Flags: entity.FillEnabled}
}

func newBuilder(t *testing.T, st *store.Store) *Builder {
	t.Helper()
	eng, err := text.New()
	if err != nil {
		t.Fatal(err)
	}
	return New(st, nil, eng)
}

func TestVertexLayouts(t *testing.T) {
	for name, l := range map[string]struct {
		stride uint64
		floats int
		attrs  int
	}{
		"shape": {ShapeVertexLayout().ArrayStride, ShapeStride, len(ShapeVertexLayout().Attributes)},
		"text":  {TextVertexLayout().ArrayStride, TextStride, len(TextVertexLayout().Attributes)},
	} {
		if l.stride != uint64(l.floats*4) {
			t.Errorf("%s stride = %d, want %d", name, l.stride, l.floats*4)
		}
		if l.attrs == 0 {
			t.Errorf("%s layout has no attributes", name)
		}
	}
	var sum uint64
	for _, a := range TextVertexLayout().Attributes {
		sum += a.Format.Size()
	}
	if sum != TextVertexLayout().ArrayStride {
		t.Errorf("text attributes cover %d bytes, want %d", sum, TextVertexLayout().ArrayStride)
	}
}

func TestRectTriangles(t *testing.T) {
	st := store.New()
	st.Upsert(1, &entity.Rect{X: 0, Y: 0, W: 10, H: 5, Style: fillOnly(red)})
	buf := newBuilder(t, st).Shapes()
	if buf.Vertices != 6 || len(buf.Data) != 6*ShapeStride {
		t.Fatalf("Vertices = %d, len = %d", buf.Vertices, len(buf.Data))
	}
	minX, maxX, minY, maxY := buf.Data[0], buf.Data[0], buf.Data[1], buf.Data[1]
	for i := 0; i < len(buf.Data); i += ShapeStride {
		v := buf.Data[i : i+ShapeStride]
		minX, maxX = min(minX, v[0]), max(maxX, v[0])
		minY, maxY = min(minY, v[1]), max(maxY, v[1])
		if v[2] != 1 || v[3] != 0 || v[4] != 0 || v[5] != 1 {
			t.Fatalf("vertex color = %v, want red", v[2:])
		}
	}
	if minX != 0 || maxX != 10 || minY != 0 || maxY != 5 {
		t.Errorf("extent = [%v %v] x [%v %v]", minX, maxX, minY, maxY)
	}
}

func TestVertexCounts(t *testing.T) {
	stroke := entity.Style{Stroke: red, StrokeWidth: 2, Flags: entity.StrokeEnabled}
	tests := []struct {
		name  string
		shape entity.Shape
		want  int
	}{
		{"stroked rect", &entity.Rect{W: 10, H: 10, Style: stroke}, 4*6 + 4*6},
		{"open polyline", &entity.Polyline{Points: []entity.Vec2{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 5, Y: 5}}, Style: stroke}, 2*6 + 6},
		{"line", &entity.Line{X1: 10, Style: stroke}, 6},
		{"unstroked line", &entity.Line{X1: 10, Style: fillOnly(red)}, 0},
		{"filled square polygon", &entity.Polygon{RX: 5, RY: 5, Sides: 4, Style: fillOnly(red)}, 2 * 3},
		{"arrow", &entity.Arrow{X1: 20, Head: 4, Style: stroke}, 6 + 3},
		{"node", &entity.Node{X: 1, Y: 1}, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := store.New()
			st.Upsert(1, tt.shape)
			if got := newBuilder(t, st).Shapes().Vertices; got != tt.want {
				t.Errorf("Vertices = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCircleSegments(t *testing.T) {
	st := store.New()
	st.Upsert(1, &entity.Circle{RX: 100, RY: 50, Style: fillOnly(red)})
	n := segmentsFor(100, 0.25, 12, 256)
	if got := newBuilder(t, st).Shapes().Vertices; got != 3*(n-2) {
		t.Errorf("Vertices = %d, want %d", got, 3*(n-2))
	}
	if segmentsFor(0.1, 0.25, 12, 256) != 12 || segmentsFor(1e9, 0.25, 12, 256) != 256 {
		t.Error("segmentsFor ignores its bounds")
	}
}

func TestGenerationGating(t *testing.T) {
	st := store.New()
	st.Upsert(1, &entity.Rect{W: 1, H: 1, Style: fillOnly(red)})
	b := newBuilder(t, st)

	b.Shapes()
	b.Shapes()
	if got := b.Stats().ShapeRebuilds; got != 1 {
		t.Fatalf("ShapeRebuilds = %d after two reads, want 1", got)
	}
	st.Select(store.SelectReplace, []entity.ID{1})
	b.Shapes()
	if got := b.Stats().ShapeRebuilds; got != 1 {
		t.Errorf("selection change rebuilt shapes (%d rebuilds)", got)
	}
	st.Upsert(2, &entity.Text{Runs: []entity.TextRun{{Length: 1, Size: 12}}, Content: []byte("x")})
	b.Shapes()
	if got := b.Stats().ShapeRebuilds; got != 1 {
		t.Errorf("text upsert rebuilt shapes (%d rebuilds)", got)
	}
	st.Upsert(1, &entity.Rect{W: 2, H: 2, Style: fillOnly(red)})
	if buf := b.Shapes(); buf.Generation != st.Generation().Shapes {
		t.Errorf("buffer generation %d, store %d", buf.Generation, st.Generation().Shapes)
	}
	if got := b.Stats().ShapeRebuilds; got != 2 {
		t.Errorf("ShapeRebuilds = %d after an edit, want 2", got)
	}
	b.Invalidate()
	b.Shapes()
	if got := b.Stats().ShapeRebuilds; got != 3 {
		t.Errorf("ShapeRebuilds = %d after Invalidate, want 3", got)
	}
}

func TestHiddenLayer(t *testing.T) {
	st := store.New()
	st.Upsert(1, &entity.Rect{W: 1, H: 1, Style: fillOnly(red)})
	st.PutLayer(store.Layer{ID: 2, Name: "hidden"})
	st.SetLayer(1, 2)
	if got := newBuilder(t, st).Shapes().Vertices; got != 0 {
		t.Errorf("hidden entity produced %d vertices", got)
	}
}

func TestTextQuads(t *testing.T) {
	st := store.New()
	st.Upsert(1, &entity.Text{
		X: 100, Y: 100,
		Runs: []entity.TextRun{
			{Length: 2, Size: 16, Color: red},
			{Start: 2, Length: 3, Size: 16, Color: red, Flags: entity.RunUnderline},
		},
		Content: []byte("a d e"),
	})
	b := newBuilder(t, st)
	buf := b.Text()
	// Three visible glyphs, and three underlined glyphs including the space.
	if len(buf.Quads) != 3+3 || buf.Vertices != 6*len(buf.Quads) {
		t.Fatalf("%d quads, %d vertices", len(buf.Quads), buf.Vertices)
	}
	solid := 0
	for _, q := range buf.Quads {
		if q.Entity != 1 {
			t.Errorf("quad entity = %d", q.Entity)
		}
		if q.Solid {
			solid++
		}
	}
	if solid != 3 {
		t.Errorf("%d solid quads, want 3", solid)
	}
	// The text hangs below its anchor.
	for i := 1; i < len(buf.Data); i += TextStride {
		if buf.Data[i] > 100+16 {
			t.Fatalf("vertex y = %v above the anchor band", buf.Data[i])
		}
	}
	b.Text()
	if b.Stats().TextRebuilds != 1 {
		t.Errorf("TextRebuilds = %d, want 1", b.Stats().TextRebuilds)
	}
}

func TestOverlay(t *testing.T) {
	st := store.New()
	b := newBuilder(t, st)
	ents := []entity.Entity{{ID: 5, Shape: &entity.Rect{W: 1, H: 1, Style: fillOnly(red)}}}
	o := b.Overlay(1, ents)
	if o.Vertices != 6 {
		t.Fatalf("overlay Vertices = %d, want 6", o.Vertices)
	}
	if o := b.Overlay(1, nil); o.Vertices != 6 {
		t.Errorf("same key rebuilt the overlay: %d vertices", o.Vertices)
	}
	if o := b.Overlay(2, nil); o.Vertices != 0 {
		t.Errorf("new key kept %d vertices", o.Vertices)
	}
	if got := b.Shapes().Vertices; got != 0 {
		t.Errorf("overlay leaked into shapes: %d vertices", got)
	}
}
