package pick

import (
	"math"

	"github.com/gogpu/draft/entity"
	"github.com/gogpu/draft/geom"
)

// NodeRadius is the pick radius of a node in screen pixels, added to the
// tolerance.
const NodeRadius = 4.0

// hits accumulates the best hit on a single entity.
type hits struct {
	e     entity.Entity
	best  Result
	found bool
}

func (h *hits) add(sub SubTarget, index int, d float64, at geom.Point) {
	r := Result{ID: h.e.ID, Kind: h.e.Kind(), Sub: sub, SubIndex: index, Distance: d, Hit: at}
	if !h.found || r.better(h.best) {
		h.best, h.found = r, true
	}
}

// vertices records vertex hits within tol.
func (h *hits) vertices(p geom.Point, pts []geom.Point, tol float64) {
	for i, v := range pts {
		if d := p.Distance(v); d <= tol {
			h.add(SubVertex, i, d, v)
		}
	}
}

// edges records segment hits within tol. Closed paths include the segment
// from the last point back to the first.
func (h *hits) edges(p geom.Point, pts []geom.Point, closed bool, tol float64) {
	n := len(pts)
	segs := n - 1
	if closed {
		segs = n
	}
	for i := 0; i < segs; i++ {
		a, b := pts[i], pts[(i+1)%n]
		c, _ := geom.ClosestOnSegment(p, a, b)
		if d := p.Distance(c); d <= tol {
			h.add(SubEdge, i, d, c)
		}
	}
}

// test runs the kind-specific hit test of e against p.
func (pk *Picker) test(e entity.Entity, p geom.Point, o Options) (Result, bool) {
	tol := o.tol()
	st, _ := entity.StyleOf(e.Shape)
	band := tol + st.HalfStroke()
	h := &hits{e: e}

	switch s := e.Shape.(type) {
	case *entity.Rect, *entity.Symbol:
		box, _ := entity.BoxOf(e, pk.Resolver)
		testBox(h, box, p, band)
	case *entity.Circle:
		box, _ := entity.BoxOf(e, pk.Resolver)
		testEllipse(h, box, p, band)
	case *entity.Polygon:
		pts := entity.PolygonVertices(s)
		h.vertices(p, pts, tol)
		h.edges(p, pts, true, band)
		if geom.PointInPolygon(p, pts) {
			h.add(SubBody, -1, 0, p)
		}
	case *entity.Line:
		pts := []geom.Point{geom.Pt32(s.X0, s.Y0), geom.Pt32(s.X1, s.Y1)}
		h.vertices(p, pts, tol)
		h.edges(p, pts, false, band)
	case *entity.Arrow:
		pts := []geom.Point{geom.Pt32(s.X0, s.Y0), geom.Pt32(s.X1, s.Y1)}
		h.vertices(p, pts, tol)
		h.edges(p, pts, false, band)
		head := entity.ArrowHead(s)
		if geom.PointInTriangle(p, head[0], head[1], head[2]) {
			h.add(SubBody, -1, 0, p)
		}
	case *entity.Polyline:
		pts, _ := entity.Points(e, nil)
		h.vertices(p, pts, tol)
		h.edges(p, pts, false, band)
	case *entity.Node:
		c := geom.Pt32(s.X, s.Y)
		if d := p.Distance(c); d <= tol+NodeRadius/o.scale() {
			h.add(SubBody, -1, d, c)
		}
	case *entity.Conduit:
		if pts, ok := entity.Points(e, pk.Resolver); ok {
			h.edges(p, pts, false, band)
		}
	case *entity.Text:
		pk.testText(h, p, tol)
	}
	return h.best, h.found
}

// testBox tests an oriented rectangle: the outline within band is an edge
// (SubIndex = side S, E, N, W), the interior is the body.
func testBox(h *hits, box entity.Box, p geom.Point, band float64) {
	l := box.ToLocal(p)
	corners := box.LocalRect().Corners()
	for i := range corners {
		a, b := corners[i], corners[(i+1)%4]
		c, _ := geom.ClosestOnSegment(l, a, b)
		if d := l.Distance(c); d <= band {
			h.add(SubEdge, i, d, box.ToWorld(c))
		}
	}
	if math.Abs(l.X) <= box.HalfW && math.Abs(l.Y) <= box.HalfH {
		h.add(SubBody, -1, 0, p)
	}
}

// testEllipse tests an oriented ellipse. The edge distance uses the first
// order approximation |f| / |grad f| of the implicit form, which is exact on
// circles and close to the outline on ellipses.
func testEllipse(h *hits, box entity.Box, p geom.Point, band float64) {
	rx, ry := box.HalfW, box.HalfH
	l := box.ToLocal(p)
	if rx == 0 || ry == 0 {
		// Degenerate ellipse: a segment along the non-zero axis.
		a, b := geom.Pt(-rx, -ry), geom.Pt(rx, ry)
		c, _ := geom.ClosestOnSegment(l, a, b)
		if d := l.Distance(c); d <= band {
			h.add(SubEdge, 0, d, box.ToWorld(c))
		}
		return
	}
	f := l.X*l.X/(rx*rx) + l.Y*l.Y/(ry*ry) - 1
	gx, gy := 2*l.X/(rx*rx), 2*l.Y/(ry*ry)
	g := math.Hypot(gx, gy)
	var d float64
	if g == 0 {
		d = math.Min(rx, ry)
	} else {
		d = math.Abs(f) / g
	}
	if d <= band {
		// Project radially onto the outline for the reported hit point.
		on := geom.Pt(rx, 0)
		if f+1 > 0 {
			on = l.Mul(1 / math.Sqrt(f+1))
		}
		h.add(SubEdge, 0, d, box.ToWorld(on))
	}
	if f <= 0 {
		h.add(SubBody, -1, 0, p)
	}
}

// testText hits anywhere inside the laid-out box, expanded by tol.
func (pk *Picker) testText(h *hits, p geom.Point, tol float64) {
	box, ok := entity.BoxOf(h.e, pk.Resolver)
	if !ok {
		return
	}
	l := box.ToLocal(p)
	if math.Abs(l.X) > box.HalfW+tol || math.Abs(l.Y) > box.HalfH+tol {
		return
	}
	caret := -1
	if pk.Text != nil {
		if off, ok := pk.Text.CaretAt(h.e.ID, l.X+box.HalfW, box.HalfH-l.Y); ok {
			caret = off
		}
	}
	h.add(SubBody, caret, 0, p)
}
