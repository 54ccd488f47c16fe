package pick

import (
	"math"
	"slices"
	"testing"

	"github.com/gogpu/draft/entity"
	"github.com/gogpu/draft/geom"
	"github.com/gogpu/draft/store"
)

type resolver struct {
	*store.Store
	textW, textH float64
}

func (r resolver) TextSize(entity.ID) (float64, float64, bool) { return r.textW, r.textH, true }

type caretStub struct{}

func (caretStub) CaretAt(_ entity.ID, x, _ float64) (int, bool) { return int(x / 10), true }

func newPicker(s *store.Store) *Picker {
	return &Picker{Store: s, Resolver: resolver{Store: s, textW: 100, textH: 20}, Text: caretStub{}}
}

var opts = Options{Tolerance: 2, ViewScale: 1, HandleSize: 8, RotateOffset: 20}

func filled() entity.Style {
	return entity.Style{Fill: entity.White, Stroke: entity.Black, StrokeWidth: 2, Flags: entity.FillEnabled | entity.StrokeEnabled}
}

func overlapping(t *testing.T) *store.Store {
	t.Helper()
	s := store.New()
	for i, id := range []entity.ID{1, 2, 3} {
		off := float32(i) * 5
		if _, err := s.Upsert(id, &entity.Rect{X: off, Y: off, W: 30, H: 30, Style: filled()}); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func TestPickTopmostAfterReorder(t *testing.T) {
	s := overlapping(t)
	pk := newPicker(s)
	p := geom.Pt(20, 20)
	if got := pk.Pick(p, opts); got != 3 {
		t.Fatalf("Pick() = %d, want 3", got)
	}
	s.SendToBack([]entity.ID{3})
	if got := s.Order(); !slices.Equal(got, []entity.ID{3, 1, 2}) {
		t.Fatalf("Order() = %v, want [3 1 2]", got)
	}
	if got := pk.Pick(p, opts); got != 2 {
		t.Errorf("Pick() after SendToBack = %d, want 2", got)
	}
}

func TestPickMissAfterDelete(t *testing.T) {
	s := overlapping(t)
	s.Delete(3)
	s.Delete(1)
	pk := newPicker(s)
	p := geom.Pt(20, 20)
	if got := pk.Pick(p, opts); got != 2 {
		t.Fatalf("Pick() = %d, want 2", got)
	}
	s.Select(store.SelectReplace, []entity.ID{2})
	s.Delete(2)
	if got := pk.Pick(p, opts); got != entity.None {
		t.Errorf("Pick() after delete = %d, want 0", got)
	}
	if s.Selection().Len() != 0 {
		t.Error("deleted entity still selected")
	}
}

func TestPickSubTargets(t *testing.T) {
	s := store.New()
	s.Upsert(1, &entity.Rect{X: 0, Y: 0, W: 20, H: 10, Style: filled()})
	s.Upsert(2, &entity.Polyline{Points: []entity.Vec2{{X: 100, Y: 0}, {X: 120, Y: 0}, {X: 120, Y: 20}}, Style: entity.DefaultStyle()})
	s.Upsert(3, &entity.Circle{CX: 200, CY: 0, RX: 10, RY: 10, Style: filled()})
	s.Upsert(4, &entity.Polygon{CX: 300, CY: 0, RX: 10, RY: 10, Sides: 4, Style: filled()})
	s.Upsert(5, &entity.Text{X: 400, Y: 0, Runs: []entity.TextRun{{Length: 5, Size: 10}}, Content: []byte("hello")})
	s.Upsert(6, &entity.Node{X: 500, Y: 0})
	s.Upsert(7, &entity.Node{X: 600, Y: 0})
	s.Upsert(8, &entity.Conduit{From: 6, To: 7, Style: entity.DefaultStyle()})
	pk := newPicker(s)

	tests := []struct {
		name  string
		p     geom.Point
		id    entity.ID
		sub   SubTarget
		index int
	}{
		{"rect body", geom.Pt(10, 5), 1, SubBody, -1},
		{"rect north edge", geom.Pt(10, 10.5), 1, SubEdge, 2},
		{"rect east edge", geom.Pt(20.5, 5), 1, SubEdge, 1},
		{"polyline vertex", geom.Pt(120.5, 0.5), 2, SubVertex, 1},
		{"polyline edge", geom.Pt(110, 1), 2, SubEdge, 0},
		{"circle edge", geom.Pt(210.5, 0), 3, SubEdge, 0},
		{"circle body", geom.Pt(203, 3), 3, SubBody, -1},
		{"polygon vertex", geom.Pt(300, 10), 4, SubVertex, 0},
		{"polygon body", geom.Pt(301, 1), 4, SubBody, -1},
		{"text caret", geom.Pt(435, -10), 5, SubBody, 3},
		{"node", geom.Pt(497, 3), 6, SubBody, -1},
		{"conduit", geom.Pt(550, 1), 8, SubEdge, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := pk.PickEx(tt.p, opts)
			if !ok {
				t.Fatalf("PickEx(%v) missed", tt.p)
			}
			if r.ID != tt.id || r.Sub != tt.sub || r.SubIndex != tt.index {
				t.Errorf("PickEx(%v) = {ID %d %s %d}, want {ID %d %s %d}", tt.p, r.ID, r.Sub, r.SubIndex, tt.id, tt.sub, tt.index)
			}
		})
	}

	if got := pk.Pick(geom.Pt(10, 50), opts); got != entity.None {
		t.Errorf("Pick(empty space) = %d, want 0", got)
	}
}

func TestPickHandles(t *testing.T) {
	s := overlapping(t)
	pk := newPicker(s)
	o := opts
	o.Handles = true

	// Without a selection the bottom-left corner of rect 1 is just an edge.
	if r, _ := pk.PickEx(geom.Pt(0, 0), o); r.Sub.IsHandle() {
		t.Fatalf("PickEx() = %s on an unselected entity", r.Sub)
	}

	s.Select(store.SelectReplace, []entity.ID{1})
	tests := []struct {
		name  string
		p     geom.Point
		sub   SubTarget
		index int
	}{
		{"bottom-left corner", geom.Pt(1, 1), SubCorner, 0},
		{"top-right corner under rect 2 and 3", geom.Pt(30, 30), SubCorner, 2},
		{"east side", geom.Pt(30, 15), SubSide, 1},
		{"rotate handle", geom.Pt(15, 50), SubRotate, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := pk.PickEx(tt.p, o)
			if !ok || r.ID != 1 || r.Sub != tt.sub || r.SubIndex != tt.index {
				t.Errorf("PickEx(%v) = %+v, want handle %s %d of 1", tt.p, r, tt.sub, tt.index)
			}
		})
	}
}

func TestHandleTieBreak(t *testing.T) {
	// A tiny rect puts corner, side and rotate handles within one radius.
	s := store.New()
	s.Upsert(1, &entity.Rect{X: 0, Y: 0, W: 2, H: 2, Style: filled()})
	s.Select(store.SelectReplace, []entity.ID{1})
	pk := newPicker(s)
	o := Options{Tolerance: 2, ViewScale: 1, HandleSize: 40, RotateOffset: 1, Handles: true}
	r, ok := pk.PickEx(geom.Pt(1, 2), o)
	if !ok || r.Sub != SubCorner {
		t.Fatalf("PickEx() = %+v, want a corner handle", r)
	}
	if r.SubIndex != 2 && r.SubIndex != 3 {
		t.Errorf("corner index = %d, want a top corner", r.SubIndex)
	}
}

func TestViewScaleShrinksTolerance(t *testing.T) {
	s := store.New()
	s.Upsert(1, &entity.Line{X0: 0, Y0: 0, X1: 100, Y1: 0, Style: entity.Style{StrokeWidth: 0, Flags: entity.StrokeEnabled}})
	pk := newPicker(s)
	p := geom.Pt(50, 1.5)
	if got := pk.Pick(p, Options{Tolerance: 2, ViewScale: 1}); got != 1 {
		t.Errorf("Pick() at scale 1 = %d, want 1", got)
	}
	if got := pk.Pick(p, Options{Tolerance: 2, ViewScale: 4}); got != entity.None {
		t.Errorf("Pick() at scale 4 = %d, want 0", got)
	}
}

func TestMaskAndLayers(t *testing.T) {
	s := overlapping(t)
	s.Upsert(4, &entity.Circle{CX: 20, CY: 20, RX: 5, RY: 5, Style: filled()})
	pk := newPicker(s)
	p := geom.Pt(20, 20)

	if got := pk.Pick(p, opts); got != 4 {
		t.Fatalf("Pick() = %d, want 4", got)
	}
	o := opts
	o.Mask = MaskOf(entity.KindRect)
	if got := pk.Pick(p, o); got != 3 {
		t.Errorf("Pick(rect mask) = %d, want 3", got)
	}

	s.PutLayer(store.Layer{ID: 1, Name: "locked", Flags: entity.LayerVisible | entity.LayerLocked})
	s.SetLayer(3, 1)
	if got := pk.Pick(p, o); got != 2 {
		t.Errorf("Pick() with 3 locked = %d, want 2", got)
	}
}

func TestCandidates(t *testing.T) {
	s := overlapping(t)
	pk := newPicker(s)
	got := pk.Candidates(geom.Pt(20, 20), opts)
	ids := make([]entity.ID, len(got))
	for i, r := range got {
		ids[i] = r.ID
	}
	if !slices.Equal(ids, []entity.ID{3, 2, 1}) {
		t.Errorf("Candidates() ids = %v, want [3 2 1]", ids)
	}
}

func TestRotatedRectBody(t *testing.T) {
	s := store.New()
	s.Upsert(1, &entity.Rect{X: -10, Y: -1, W: 20, H: 2, Rotation: float32(math.Pi / 2), Style: filled()})
	pk := newPicker(s)
	if got := pk.Pick(geom.Pt(0, 8), Options{}); got != 1 {
		t.Errorf("Pick(inside rotated rect) = %d, want 1", got)
	}
	if got := pk.Pick(geom.Pt(8, 0), Options{}); got != entity.None {
		t.Errorf("Pick(outside rotated rect) = %d, want 0", got)
	}
}
