package geom

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func nearly(a, b float64) bool { return math.Abs(a-b) < epsilon }

func TestAffineInverse(t *testing.T) {
	tests := []struct {
		name string
		m    Affine
	}{
		{"identity", Identity},
		{"translate", Translation(Pt(10, -4))},
		{"scale", Scaling(2, 0.5)},
		{"rotate", Rotation(math.Pi / 3)},
		{"frame", Frame(Pt(3, 4), 0.7)},
		{"composed", Scaling(3, -1).Then(Rotation(1)).Then(Translation(Pt(-2, 9)))},
	}
	p := Pt(12.5, -7.25)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, ok := tt.m.Inverse()
			if !ok {
				t.Fatal("Inverse() reported a singular map")
			}
			got := inv.Apply(tt.m.Apply(p))
			if !nearly(got.X, p.X) || !nearly(got.Y, p.Y) {
				t.Errorf("inverse round trip = %+v, want %+v", got, p)
			}
		})
	}
	if _, ok := Scaling(0, 1).Inverse(); ok {
		t.Error("Inverse() of a singular map reported ok")
	}
}

func TestAffineOrder(t *testing.T) {
	// Rotate a quarter turn, then move right.
	m := Rotation(math.Pi / 2).Then(Translation(Pt(10, 0)))
	got := m.Apply(Pt(1, 0))
	if !nearly(got.X, 10) || !nearly(got.Y, 1) {
		t.Errorf("Apply() = %+v, want (10, 1)", got)
	}
	if v := m.ApplyVector(Pt(1, 0)); !nearly(v.X, 0) || !nearly(v.Y, 1) {
		t.Errorf("ApplyVector() = %+v, want (0, 1)", v)
	}
	if f := Frame(Pt(5, 5), math.Pi); !nearly(f.Apply(Pt(1, 0)).X, 4) {
		t.Errorf("Frame().Apply() = %+v", f.Apply(Pt(1, 0)))
	}
}

func TestRectCornersAndSides(t *testing.T) {
	r := Rect{MinX: 0, MinY: 0, MaxX: 4, MaxY: 2}
	corners := r.Corners()
	want := [4]Point{{0, 0}, {4, 0}, {4, 2}, {0, 2}}
	if corners != want {
		t.Errorf("Corners() = %v, want %v", corners, want)
	}
	sides := r.Sides()
	wantSides := [4]Point{{2, 0}, {4, 1}, {2, 2}, {0, 1}}
	if sides != wantSides {
		t.Errorf("Sides() = %v, want %v", sides, wantSides)
	}
}

func TestRectUnionWithEmpty(t *testing.T) {
	r := Rect{MinX: 1, MinY: 1, MaxX: 2, MaxY: 2}
	if got := EmptyRect().Union(r); got != r {
		t.Errorf("EmptyRect().Union(r) = %v, want %v", got, r)
	}
	line := RectFromPoints(Pt(0, 5), Pt(10, 5))
	if line.IsEmpty() {
		t.Error("bounds of a horizontal segment should not be empty")
	}
}

func TestSegmentDistance(t *testing.T) {
	tests := []struct {
		name string
		p    Point
		want float64
	}{
		{"above middle", Pt(5, 3), 3},
		{"past end", Pt(13, 4), 5},
		{"before start", Pt(-3, 0), 3},
		{"on segment", Pt(2, 0), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SegmentDistance(tt.p, Pt(0, 0), Pt(10, 0))
			if !nearly(got, tt.want) {
				t.Errorf("SegmentDistance(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestPointInPolygon(t *testing.T) {
	square := []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	if !PointInPolygon(Pt(5, 5), square) {
		t.Error("center should be inside")
	}
	if PointInPolygon(Pt(15, 5), square) {
		t.Error("outside point reported inside")
	}
	if !PointInTriangle(Pt(1, 1), Pt(0, 0), Pt(4, 0), Pt(0, 4)) {
		t.Error("PointInTriangle missed interior point")
	}
}

func TestNormalizeAngle(t *testing.T) {
	if got := NormalizeAngle(3 * math.Pi); !nearly(got, math.Pi) {
		t.Errorf("NormalizeAngle(3pi) = %v, want pi", got)
	}
	if got := NormalizeAngle(-3 * math.Pi / 2); !nearly(got, math.Pi/2) {
		t.Errorf("NormalizeAngle(-3pi/2) = %v, want pi/2", got)
	}
}
