package entity

import (
	"math"
	"testing"

	"github.com/gogpu/draft/geom"
)

const eps = 1e-4

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func TestKindString(t *testing.T) {
	tests := []struct {
		k    Kind
		want string
	}{
		{KindRect, "Rect"},
		{KindText, "Text"},
		{KindInvalid, "Invalid"},
		{Kind(200), "Kind(200)"},
	}
	for _, tt := range tests {
		if got := tt.k.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", uint8(tt.k), got, tt.want)
		}
	}
	if n := len(Kinds()); n != 10 {
		t.Errorf("len(Kinds()) = %d, want 10", n)
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := Entity{ID: 1, Shape: &Polyline{Points: []Vec2{{0, 0}, {1, 1}}}}
	c := orig.Clone()
	c.Shape.(*Polyline).Points[0].X = 5
	if orig.Shape.(*Polyline).Points[0].X != 0 {
		t.Error("Clone() shares polyline points with the original")
	}

	txt := Entity{ID: 2, Shape: &Text{Content: []byte("hi"), Runs: []TextRun{{Length: 2}}}}
	tc := txt.Clone()
	tc.Shape.(*Text).Content[0] = 'H'
	tc.Shape.(*Text).Runs[0].Size = 9
	if got := txt.Shape.(*Text).String(); got != "hi" {
		t.Errorf("original content = %q after editing clone, want %q", got, "hi")
	}
	if txt.Shape.(*Text).Runs[0].Size != 0 {
		t.Error("Clone() shares text runs with the original")
	}
}

func TestFinite(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	tests := []struct {
		name  string
		shape Shape
		want  bool
	}{
		{"rect", &Rect{W: 1, H: 1}, true},
		{"rect NaN rotation", &Rect{Rotation: nan}, false},
		{"line infinite stroke", &Line{Style: Style{StrokeWidth: inf}}, false},
		{"polyline", &Polyline{Points: []Vec2{{0, 0}, {1, 1}}}, true},
		{"polyline NaN point", &Polyline{Points: []Vec2{{0, 0}, {nan, 1}}}, false},
		{"circle", &Circle{RX: inf}, false},
		{"polygon", &Polygon{CY: -inf, Sides: 3}, false},
		{"arrow head", &Arrow{Head: nan}, false},
		{"symbol scale", &Symbol{ScaleX: inf}, false},
		{"node", &Node{X: 1, Y: 2}, true},
		{"conduit", &Conduit{From: 1, To: 2}, true},
		{"text run size", &Text{Runs: []TextRun{{Size: nan}}}, false},
		{"text", &Text{X: 3, BoxWidth: 10}, true},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Finite(tt.shape); got != tt.want {
				t.Errorf("Finite() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	a := Entity{ID: 1, Shape: &Rect{W: 2, H: 3}}
	b := Entity{ID: 1, Shape: &Rect{W: 2, H: 3}}
	if !Equal(a, b) {
		t.Error("Equal(identical rects) = false")
	}
	b.Shape.(*Rect).W = 4
	if Equal(a, b) {
		t.Error("Equal(different rects) = true")
	}
	if Equal(a, Entity{ID: 1, Shape: &Circle{}}) {
		t.Error("Equal(rect, circle) = true")
	}
	empty := Entity{ID: 3, Shape: &Text{}}
	zero := Entity{ID: 3, Shape: &Text{Content: []byte{}, Runs: []TextRun{}}}
	if !Equal(empty, zero) {
		t.Error("Equal should treat nil and empty slices alike")
	}
}

func TestColor(t *testing.T) {
	c := RGBA(0x11, 0x22, 0x33, 0x44)
	if c != 0x11223344 {
		t.Fatalf("RGBA() = %#x, want 0x11223344", uint32(c))
	}
	if c.R() != 0x11 || c.G() != 0x22 || c.B() != 0x33 || c.A() != 0x44 {
		t.Errorf("channels = %x %x %x %x", c.R(), c.G(), c.B(), c.A())
	}
	_, _, _, a := White.Floats()
	if a != 1 {
		t.Errorf("White alpha = %v, want 1", a)
	}
}

func TestTextInsert(t *testing.T) {
	tests := []struct {
		name     string
		runs     []TextRun
		content  string
		at       int
		data     string
		want     string
		wantRuns []TextRun
	}{
		{
			name:     "empty text gets default run",
			at:       0,
			data:     "ab",
			want:     "ab",
			wantRuns: []TextRun{{Start: 0, Length: 2, Size: DefaultFontSize, Color: Black}},
		},
		{
			name:     "inside first run shifts second",
			runs:     []TextRun{{Start: 0, Length: 3, Size: 10}, {Start: 3, Length: 3, Size: 20}},
			content:  "abcdef",
			at:       1,
			data:     "XY",
			want:     "aXYbcdef",
			wantRuns: []TextRun{{Start: 0, Length: 5, Size: 10}, {Start: 5, Length: 3, Size: 20}},
		},
		{
			name:     "boundary extends the earlier run",
			runs:     []TextRun{{Start: 0, Length: 3, Size: 10}, {Start: 3, Length: 3, Size: 20}},
			content:  "abcdef",
			at:       3,
			data:     "Z",
			want:     "abcZdef",
			wantRuns: []TextRun{{Start: 0, Length: 4, Size: 10}, {Start: 4, Length: 3, Size: 20}},
		},
		{
			name:     "append at end",
			runs:     []TextRun{{Start: 0, Length: 2, Size: 10}},
			content:  "ab",
			at:       2,
			data:     "c",
			want:     "abc",
			wantRuns: []TextRun{{Start: 0, Length: 3, Size: 10}},
		},
		{
			name:     "gap before first run",
			runs:     []TextRun{{Start: 2, Length: 2, Size: 10}},
			content:  "abcd",
			at:       0,
			data:     "x",
			want:     "xabcd",
			wantRuns: []TextRun{{Start: 0, Length: 1, Size: 10}, {Start: 3, Length: 2, Size: 10}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Text{Runs: tt.runs, Content: []byte(tt.content)}
			s.Insert(tt.at, []byte(tt.data))
			if s.String() != tt.want {
				t.Errorf("content = %q, want %q", s.String(), tt.want)
			}
			if len(s.Runs) != len(tt.wantRuns) {
				t.Fatalf("runs = %+v, want %+v", s.Runs, tt.wantRuns)
			}
			for i := range s.Runs {
				if s.Runs[i] != tt.wantRuns[i] {
					t.Errorf("run %d = %+v, want %+v", i, s.Runs[i], tt.wantRuns[i])
				}
			}
		})
	}
}

func TestTextDelete(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
		want       string
		wantRuns   []TextRun
	}{
		{
			name:  "within first run",
			start: 0, end: 2,
			want:     "cdef",
			wantRuns: []TextRun{{Start: 0, Length: 1, Size: 10}, {Start: 1, Length: 3, Size: 20}},
		},
		{
			name:  "across runs",
			start: 2, end: 4,
			want:     "abef",
			wantRuns: []TextRun{{Start: 0, Length: 2, Size: 10}, {Start: 2, Length: 2, Size: 20}},
		},
		{
			name:  "whole first run dropped",
			start: 0, end: 3,
			want:     "def",
			wantRuns: []TextRun{{Start: 0, Length: 3, Size: 20}},
		},
		{
			name:  "everything keeps one run",
			start: 0, end: 6,
			want:     "",
			wantRuns: []TextRun{{Start: 0, Length: 0, Size: 10}},
		},
		{
			name:  "out of range clamps",
			start: 4, end: 99,
			want:     "abcd",
			wantRuns: []TextRun{{Start: 0, Length: 3, Size: 10}, {Start: 3, Length: 1, Size: 20}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Text{
				Runs:    []TextRun{{Start: 0, Length: 3, Size: 10}, {Start: 3, Length: 3, Size: 20}},
				Content: []byte("abcdef"),
			}
			s.Delete(tt.start, tt.end)
			if s.String() != tt.want {
				t.Errorf("content = %q, want %q", s.String(), tt.want)
			}
			if len(s.Runs) != len(tt.wantRuns) {
				t.Fatalf("runs = %+v, want %+v", s.Runs, tt.wantRuns)
			}
			for i := range s.Runs {
				if s.Runs[i] != tt.wantRuns[i] {
					t.Errorf("run %d = %+v, want %+v", i, s.Runs[i], tt.wantRuns[i])
				}
			}
		})
	}
}

func TestTextDeleteDoesNotAliasClone(t *testing.T) {
	orig := &Text{Runs: []TextRun{{Length: 4}}, Content: []byte("abcd")}
	c := orig.Clone().(*Text)
	c.Delete(0, 2)
	if orig.String() != "abcd" {
		t.Errorf("original content = %q, want %q", orig.String(), "abcd")
	}
}

type fakeResolver struct {
	nodes map[ID]geom.Point
	texts map[ID][2]float64
}

func (r fakeResolver) NodePosition(id ID) (geom.Point, bool) {
	p, ok := r.nodes[id]
	return p, ok
}

func (r fakeResolver) TextSize(id ID) (float64, float64, bool) {
	s, ok := r.texts[id]
	return s[0], s[1], ok
}

func TestBounds(t *testing.T) {
	res := fakeResolver{
		nodes: map[ID]geom.Point{1: geom.Pt(0, 0), 2: geom.Pt(10, 5)},
		texts: map[ID][2]float64{7: {40, 20}},
	}
	tests := []struct {
		name string
		e    Entity
		want geom.Rect
	}{
		{"rect", Entity{Shape: &Rect{X: 1, Y: 2, W: 3, H: 4}}, geom.Rect{MinX: 1, MinY: 2, MaxX: 4, MaxY: 6}},
		{"circle", Entity{Shape: &Circle{CX: 5, CY: 5, RX: 2, RY: 1}}, geom.Rect{MinX: 3, MinY: 4, MaxX: 7, MaxY: 6}},
		{"line", Entity{Shape: &Line{X0: 3, Y0: 1, X1: -1, Y1: 4}}, geom.Rect{MinX: -1, MinY: 1, MaxX: 3, MaxY: 4}},
		{"conduit", Entity{Shape: &Conduit{From: 1, To: 2}}, geom.Rect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 5}},
		{"text hangs below anchor", Entity{ID: 7, Shape: &Text{X: 0, Y: 100}}, geom.Rect{MinX: 0, MinY: 80, MaxX: 40, MaxY: 100}},
		{"symbol scaled", Entity{Shape: &Symbol{X: 0, Y: 0, W: 2, H: 2, ScaleX: 2, ScaleY: 1}}, geom.Rect{MinX: -2, MinY: -1, MaxX: 2, MaxY: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Bounds(tt.e, res)
			if !ok {
				t.Fatal("Bounds() ok = false")
			}
			if !near(got.MinX, tt.want.MinX) || !near(got.MinY, tt.want.MinY) ||
				!near(got.MaxX, tt.want.MaxX) || !near(got.MaxY, tt.want.MaxY) {
				t.Errorf("Bounds() = %+v, want %+v", got, tt.want)
			}
		})
	}

	if _, ok := Bounds(Entity{Shape: &Conduit{From: 1, To: 9}}, res); ok {
		t.Error("Bounds(conduit with missing node) ok = true")
	}
}

func TestPolygonVertices(t *testing.T) {
	p := &Polygon{CX: 0, CY: 0, RX: 1, RY: 1, Sides: 4}
	v := PolygonVertices(p)
	if len(v) != 4 {
		t.Fatalf("len = %d, want 4", len(v))
	}
	if !near(v[0].X, 0) || !near(v[0].Y, 1) {
		t.Errorf("vertex 0 = %v, want (0, 1)", v[0])
	}
	if !near(v[1].X, -1) || !near(v[1].Y, 0) {
		t.Errorf("vertex 1 = %v, want (-1, 0)", v[1])
	}
}

func TestTranslateAndRotate(t *testing.T) {
	r := &Rect{X: 0, Y: 0, W: 4, H: 2}
	Translate(r, geom.Pt(1, 1))
	if r.X != 1 || r.Y != 1 {
		t.Errorf("Translate rect = (%v, %v), want (1, 1)", r.X, r.Y)
	}

	Rotate(r, geom.Pt(3, 2), math.Pi/2)
	if !near(float64(r.X), 1) || !near(float64(r.Y), 1) {
		t.Errorf("rotating about own center moved the rect to (%v, %v)", r.X, r.Y)
	}
	if !near(float64(r.Rotation), math.Pi/2) {
		t.Errorf("Rotation = %v, want pi/2", r.Rotation)
	}

	l := &Line{X0: 1, Y0: 0, X1: 2, Y1: 0}
	Rotate(l, geom.Pt(0, 0), math.Pi)
	if !near(float64(l.X0), -1) || !near(float64(l.X1), -2) {
		t.Errorf("rotated line = %+v", l)
	}

	c := &Conduit{From: 1, To: 2}
	Translate(c, geom.Pt(5, 5))
	if *c != (Conduit{From: 1, To: 2}) {
		t.Error("Translate changed a conduit")
	}
}

func TestScale(t *testing.T) {
	t.Run("aligned rect scales per axis", func(t *testing.T) {
		r := &Rect{X: 0, Y: 0, W: 2, H: 2}
		Scale(r, Scaler{Origin: geom.Pt(0, 0), SX: 2, SY: 3})
		if r.X != 0 || r.Y != 0 || r.W != 4 || r.H != 6 {
			t.Errorf("got %+v, want X=0 Y=0 W=4 H=6", *r)
		}
	})
	t.Run("quarter-turned circle swaps axes", func(t *testing.T) {
		c := &Circle{RX: 1, RY: 1, Rotation: float32(math.Pi / 2)}
		Scale(c, Scaler{SX: 2, SY: 1})
		if !near(float64(c.RX), 1) || !near(float64(c.RY), 2) {
			t.Errorf("radii = (%v, %v), want (1, 2)", c.RX, c.RY)
		}
	})
	t.Run("skewed orientation scales uniformly", func(t *testing.T) {
		c := &Circle{RX: 1, RY: 1, Rotation: float32(math.Pi / 4)}
		Scale(c, Scaler{SX: 4, SY: 1})
		if !near(float64(c.RX), 2) || !near(float64(c.RY), 2) {
			t.Errorf("radii = (%v, %v), want (2, 2)", c.RX, c.RY)
		}
	})
	t.Run("flip keeps sizes positive", func(t *testing.T) {
		r := &Rect{X: 1, Y: 0, W: 2, H: 1}
		Scale(r, Scaler{SX: -1, SY: 1})
		if r.W != 2 || r.X != -3 {
			t.Errorf("got %+v, want X=-3 W=2", *r)
		}
	})
}

func TestSetVertex(t *testing.T) {
	pl := &Polyline{Points: []Vec2{{0, 0}, {1, 0}, {2, 0}}}
	if !SetVertex(pl, 1, geom.Pt(1, 5)) {
		t.Fatal("SetVertex(polyline, 1) = false")
	}
	if pl.Points[1] != (Vec2{1, 5}) {
		t.Errorf("point 1 = %v, want {1 5}", pl.Points[1])
	}
	if SetVertex(pl, 3, geom.Pt(0, 0)) {
		t.Error("SetVertex out of range = true")
	}

	pg := &Polygon{RX: 1, RY: 1, Sides: 4}
	if !SetVertex(pg, 0, geom.Pt(2, 0)) {
		t.Fatal("SetVertex(polygon, 0) = false")
	}
	v := PolygonVertices(pg)[0]
	if !near(v.X, 2) || !near(v.Y, 0) {
		t.Errorf("vertex 0 = %v, want (2, 0)", v)
	}
	if SetVertex(&Rect{}, 0, geom.Pt(0, 0)) {
		t.Error("SetVertex(rect) = true")
	}
}

func TestOffsetEdge(t *testing.T) {
	pl := &Polyline{Points: []Vec2{{0, 0}, {1, 0}, {2, 0}}}
	OffsetEdge(pl, 1, geom.Pt(0, 2))
	if pl.Points[0] != (Vec2{0, 0}) || pl.Points[1] != (Vec2{1, 2}) || pl.Points[2] != (Vec2{2, 2}) {
		t.Errorf("points = %v", pl.Points)
	}

	pg := &Polygon{RX: 1, RY: 1, Sides: 4, Rotation: float32(math.Pi / 4)}
	verts := PolygonVertices(pg)
	mid := verts[0].Lerp(verts[1], 0.5)
	before := mid.Length()
	OffsetEdge(pg, 0, mid.Normalize().Mul(before))
	if !near(float64(pg.RX), 2) {
		t.Errorf("RX = %v, want 2 after doubling the apothem", pg.RX)
	}
}
