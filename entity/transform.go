package entity

import (
	"math"

	"github.com/gogpu/draft/geom"
)

// The functions in this file edit a shape in place. Callers that need to keep
// the original clone it first.

// Translate moves a shape by d. Conduits follow their nodes and are unchanged.
func Translate(s Shape, d geom.Point) {
	dx, dy := float32(d.X), float32(d.Y)
	switch v := s.(type) {
	case *Rect:
		v.X += dx
		v.Y += dy
	case *Line:
		v.X0, v.Y0, v.X1, v.Y1 = v.X0+dx, v.Y0+dy, v.X1+dx, v.Y1+dy
	case *Polyline:
		for i := range v.Points {
			v.Points[i].X += dx
			v.Points[i].Y += dy
		}
	case *Circle:
		v.CX += dx
		v.CY += dy
	case *Polygon:
		v.CX += dx
		v.CY += dy
	case *Arrow:
		v.X0, v.Y0, v.X1, v.Y1 = v.X0+dx, v.Y0+dy, v.X1+dx, v.Y1+dy
	case *Symbol:
		v.X += dx
		v.Y += dy
	case *Node:
		v.X += dx
		v.Y += dy
	case *Text:
		v.X += dx
		v.Y += dy
	case *Conduit:
	}
}

// Scaler maps points through a scale by (SX, SY) along the axes of a frame
// rotated by Angle about Origin.
type Scaler struct {
	Origin geom.Point
	Angle  float64
	SX, SY float64
}

// Apply maps a point.
func (k Scaler) Apply(p geom.Point) geom.Point {
	l := p.Sub(k.Origin).Rotate(-k.Angle)
	l.X *= k.SX
	l.Y *= k.SY
	return l.Rotate(k.Angle).Add(k.Origin)
}

// extents returns the factors applied to the width and height of a box whose
// rotation is boxAngle. Boxes aligned with the frame (up to quarter turns)
// scale per axis; other orientations scale uniformly, since an oriented box
// cannot represent a skew.
func (k Scaler) extents(boxAngle float64) (fw, fh float64) {
	ax, ay := math.Abs(k.SX), math.Abs(k.SY)
	rel := geom.NormalizeAngle(boxAngle - k.Angle)
	const eps = 1e-6
	switch {
	case math.Abs(rel) < eps, math.Abs(math.Abs(rel)-math.Pi) < eps:
		return ax, ay
	case math.Abs(math.Abs(rel)-math.Pi/2) < eps:
		return ay, ax
	default:
		u := math.Sqrt(ax * ay)
		return u, u
	}
}

// Scale resizes a shape through k.
func Scale(s Shape, k Scaler) {
	point := func(x, y *float32) {
		*x, *y = k.Apply(geom.Pt32(*x, *y)).F32()
	}
	switch v := s.(type) {
	case *Rect:
		fw, fh := k.extents(float64(v.Rotation))
		c := k.Apply(geom.Pt(float64(v.X)+float64(v.W)/2, float64(v.Y)+float64(v.H)/2))
		w := math.Abs(float64(v.W)) * fw
		h := math.Abs(float64(v.H)) * fh
		v.W, v.H = float32(w), float32(h)
		v.X, v.Y = float32(c.X-w/2), float32(c.Y-h/2)
	case *Line:
		point(&v.X0, &v.Y0)
		point(&v.X1, &v.Y1)
	case *Polyline:
		for i := range v.Points {
			point(&v.Points[i].X, &v.Points[i].Y)
		}
	case *Circle:
		fw, fh := k.extents(float64(v.Rotation))
		point(&v.CX, &v.CY)
		v.RX = float32(math.Abs(float64(v.RX)) * fw)
		v.RY = float32(math.Abs(float64(v.RY)) * fh)
	case *Polygon:
		fw, fh := k.extents(float64(v.Rotation))
		point(&v.CX, &v.CY)
		v.RX = float32(math.Abs(float64(v.RX)) * fw)
		v.RY = float32(math.Abs(float64(v.RY)) * fh)
	case *Arrow:
		point(&v.X0, &v.Y0)
		point(&v.X1, &v.Y1)
	case *Symbol:
		fw, fh := k.extents(float64(v.Rotation))
		point(&v.X, &v.Y)
		v.ScaleX = float32(math.Abs(float64(v.ScaleX)) * fw)
		v.ScaleY = float32(math.Abs(float64(v.ScaleY)) * fh)
	case *Node:
		point(&v.X, &v.Y)
	case *Text:
		fw, _ := k.extents(float64(v.Rotation))
		point(&v.X, &v.Y)
		if v.BoxMode == FixedWidth {
			v.BoxWidth = float32(math.Abs(float64(v.BoxWidth)) * fw)
		}
	case *Conduit:
	}
}

// Rotate turns a shape by angle radians about pivot.
func Rotate(s Shape, pivot geom.Point, angle float64) {
	point := func(x, y *float32) {
		*x, *y = geom.Pt32(*x, *y).RotateAbout(pivot, angle).F32()
	}
	turn := func(r *float32) {
		*r = float32(geom.NormalizeAngle(float64(*r) + angle))
	}
	switch v := s.(type) {
	case *Rect:
		c := geom.Pt(float64(v.X)+float64(v.W)/2, float64(v.Y)+float64(v.H)/2).RotateAbout(pivot, angle)
		v.X = float32(c.X - float64(v.W)/2)
		v.Y = float32(c.Y - float64(v.H)/2)
		turn(&v.Rotation)
	case *Line:
		point(&v.X0, &v.Y0)
		point(&v.X1, &v.Y1)
	case *Polyline:
		for i := range v.Points {
			point(&v.Points[i].X, &v.Points[i].Y)
		}
	case *Circle:
		point(&v.CX, &v.CY)
		turn(&v.Rotation)
	case *Polygon:
		point(&v.CX, &v.CY)
		turn(&v.Rotation)
	case *Arrow:
		point(&v.X0, &v.Y0)
		point(&v.X1, &v.Y1)
	case *Symbol:
		point(&v.X, &v.Y)
		turn(&v.Rotation)
	case *Node:
		point(&v.X, &v.Y)
	case *Text:
		point(&v.X, &v.Y)
		turn(&v.Rotation)
	case *Conduit:
	}
}

// VertexCount returns the number of editable vertices of a polyline or
// polygon, and zero for every other kind.
func VertexCount(s Shape) int {
	switch v := s.(type) {
	case *Polyline:
		return len(v.Points)
	case *Polygon:
		return int(max(v.Sides, 3))
	default:
		return 0
	}
}

// EdgeCount returns the number of editable edges of a polyline (open) or
// polygon (closed).
func EdgeCount(s Shape) int {
	switch v := s.(type) {
	case *Polyline:
		return max(len(v.Points)-1, 0)
	case *Polygon:
		return int(max(v.Sides, 3))
	default:
		return 0
	}
}

// SetVertex moves vertex i to p. A polygon stays regular: its radii scale and
// its rotation turns so that vertex i lands on p. It reports false when the
// shape has no vertex i.
func SetVertex(s Shape, i int, p geom.Point) bool {
	switch v := s.(type) {
	case *Polyline:
		if i < 0 || i >= len(v.Points) {
			return false
		}
		v.Points[i].X, v.Points[i].Y = p.F32()
		return true
	case *Polygon:
		n := VertexCount(v)
		if i < 0 || i >= n {
			return false
		}
		c := geom.Pt32(v.CX, v.CY)
		old := PolygonVertices(v)[i].Sub(c)
		want := p.Sub(c)
		if old.Length() == 0 || want.Length() == 0 {
			return true
		}
		f := want.Length() / old.Length()
		v.RX = float32(float64(v.RX) * f)
		v.RY = float32(float64(v.RY) * f)
		v.Rotation = float32(geom.NormalizeAngle(float64(v.Rotation) + want.Angle() - old.Angle()))
		return true
	default:
		return false
	}
}

// OffsetEdge drags edge i (from vertex i to vertex i+1) by d. Polyline edges
// move both endpoints. Polygon edges change the apothem: the radii scale by
// the ratio of the dragged edge's distance from the center along its normal.
func OffsetEdge(s Shape, i int, d geom.Point) bool {
	switch v := s.(type) {
	case *Polyline:
		if i < 0 || i+1 >= len(v.Points) {
			return false
		}
		dx, dy := float32(d.X), float32(d.Y)
		for _, j := range []int{i, i + 1} {
			v.Points[j].X += dx
			v.Points[j].Y += dy
		}
		return true
	case *Polygon:
		n := VertexCount(v)
		if i < 0 || i >= n {
			return false
		}
		verts := PolygonVertices(v)
		c := geom.Pt32(v.CX, v.CY)
		mid := verts[i].Lerp(verts[(i+1)%n], 0.5)
		normal := mid.Sub(c)
		apothem := normal.Length()
		if apothem == 0 {
			return true
		}
		normal = normal.Mul(1 / apothem)
		next := apothem + d.Dot(normal)
		if next <= 0 {
			next = apothem * 1e-3
		}
		f := next / apothem
		v.RX = float32(float64(v.RX) * f)
		v.RY = float32(float64(v.RY) * f)
		return true
	default:
		return false
	}
}
