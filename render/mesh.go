package render

import (
	"math"

	"github.com/gogpu/draft/entity"
	"github.com/gogpu/draft/geom"
)

type rgba [4]float32

func colorOf(c entity.Color) rgba {
	r, g, b, a := c.Floats()
	return rgba{r, g, b, a}
}

// mesh accumulates shape triangles.
type mesh struct {
	data []float32
}

func (m *mesh) vertex(p geom.Point, c rgba) {
	x, y := p.F32()
	m.data = append(m.data, x, y, c[0], c[1], c[2], c[3])
}

func (m *mesh) tri(a, b, c geom.Point, col rgba) {
	m.vertex(a, col)
	m.vertex(b, col)
	m.vertex(c, col)
}

func (m *mesh) quad(a, b, c, d geom.Point, col rgba) {
	m.tri(a, b, c, col)
	m.tri(a, c, d, col)
}

// fan fills a convex polygon.
func (m *mesh) fan(pts []geom.Point, col rgba) {
	for i := 1; i+1 < len(pts); i++ {
		m.tri(pts[0], pts[i], pts[i+1], col)
	}
}

// stroke draws every segment of pts as a quad of the given width, with a
// square cap at each joint so consecutive segments meet without gaps.
func (m *mesh) stroke(pts []geom.Point, closed bool, width float64, col rgba) {
	n := len(pts)
	if n < 2 || width <= 0 {
		return
	}
	hw := width / 2
	segs := n - 1
	if closed {
		segs = n
	}
	for i := range segs {
		a, b := pts[i], pts[(i+1)%n]
		d := b.Sub(a).Normalize()
		if d == (geom.Point{}) {
			continue
		}
		off := d.Perp().Mul(hw)
		m.quad(a.Add(off), b.Add(off), b.Sub(off), a.Sub(off), col)
	}
	for i, p := range pts {
		if !closed && (i == 0 || i == n-1) {
			continue
		}
		m.quad(p.Add(geom.Pt(-hw, -hw)), p.Add(geom.Pt(hw, -hw)), p.Add(geom.Pt(hw, hw)), p.Add(geom.Pt(-hw, hw)), col)
	}
}

// fillStroke fills a closed outline and strokes it per style.
func (m *mesh) fillStroke(pts []geom.Point, st entity.Style) {
	if st.Filled() && len(pts) >= 3 {
		m.fan(pts, colorOf(st.Fill))
	}
	if st.Stroked() {
		m.stroke(pts, true, float64(st.StrokeWidth), colorOf(st.Stroke))
	}
}

// ellipse returns n points on the outline of box.
func ellipse(box entity.Box, n int) []geom.Point {
	pts := make([]geom.Point, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = box.ToWorld(geom.Pt(box.HalfW*math.Cos(a), box.HalfH*math.Sin(a)))
	}
	return pts
}

// segmentsFor picks a segment count so the chord error of an ellipse with
// the given largest radius stays under tol.
func segmentsFor(r, tol float64, lo, hi int) int {
	if r <= tol {
		return lo
	}
	n := int(math.Ceil(math.Pi / math.Acos(1-tol/r)))
	return min(max(n, lo), hi)
}
