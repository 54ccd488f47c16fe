package entity

import (
	"math"

	"github.com/gogpu/draft/geom"
)

// Resolver supplies geometry an entity cannot compute from its own payload:
// node positions for conduits and laid-out sizes for text.
type Resolver interface {
	// NodePosition returns the position of a node entity.
	NodePosition(id ID) (geom.Point, bool)
	// TextSize returns the laid-out width and height of a text entity.
	TextSize(id ID) (w, h float64, ok bool)
}

// Box is an oriented bounding box. Its local frame has the origin at Center
// and axes rotated by Angle.
type Box struct {
	Center       geom.Point
	HalfW, HalfH float64
	Angle        float64
}

// ToLocal maps a world point into the box's local frame.
func (b Box) ToLocal(p geom.Point) geom.Point {
	return p.Sub(b.Center).Rotate(-b.Angle)
}

// ToWorld maps a local point into world space.
func (b Box) ToWorld(p geom.Point) geom.Point {
	return p.Rotate(b.Angle).Add(b.Center)
}

// LocalRect returns the box extent in its local frame.
func (b Box) LocalRect() geom.Rect {
	return geom.Rect{MinX: -b.HalfW, MinY: -b.HalfH, MaxX: b.HalfW, MaxY: b.HalfH}
}

// Corners returns the world-space corners in handle order
// (bottom-left, bottom-right, top-right, top-left).
func (b Box) Corners() [4]geom.Point {
	local := b.LocalRect().Corners()
	var out [4]geom.Point
	for i, p := range local {
		out[i] = b.ToWorld(p)
	}
	return out
}

// Sides returns the world-space side midpoints in handle order
// (south, east, north, west).
func (b Box) Sides() [4]geom.Point {
	local := b.LocalRect().Sides()
	var out [4]geom.Point
	for i, p := range local {
		out[i] = b.ToWorld(p)
	}
	return out
}

// Bounds returns the axis-aligned bounds of the box.
func (b Box) Bounds() geom.Rect {
	c := b.Corners()
	return geom.RectFromPoints(c[:]...)
}

// BoxFromRect returns an unrotated box covering r.
func BoxFromRect(r geom.Rect) Box {
	return Box{Center: r.Center(), HalfW: r.Width() / 2, HalfH: r.Height() / 2}
}

// BoxOf returns the oriented box of an entity. Point-like kinds (lines,
// polylines, arrows, nodes, conduits) get an unrotated box around their
// points. The second result is false when the geometry cannot be resolved.
func BoxOf(e Entity, res Resolver) (Box, bool) {
	switch s := e.Shape.(type) {
	case *Rect:
		w, h := math.Abs(float64(s.W)), math.Abs(float64(s.H))
		return Box{
			Center: geom.Pt(float64(s.X)+float64(s.W)/2, float64(s.Y)+float64(s.H)/2),
			HalfW:  w / 2,
			HalfH:  h / 2,
			Angle:  float64(s.Rotation),
		}, true
	case *Circle:
		return Box{
			Center: geom.Pt32(s.CX, s.CY),
			HalfW:  math.Abs(float64(s.RX)),
			HalfH:  math.Abs(float64(s.RY)),
			Angle:  float64(s.Rotation),
		}, true
	case *Polygon:
		return Box{
			Center: geom.Pt32(s.CX, s.CY),
			HalfW:  math.Abs(float64(s.RX)),
			HalfH:  math.Abs(float64(s.RY)),
			Angle:  float64(s.Rotation),
		}, true
	case *Symbol:
		return Box{
			Center: geom.Pt32(s.X, s.Y),
			HalfW:  math.Abs(float64(s.W)*float64(s.ScaleX)) / 2,
			HalfH:  math.Abs(float64(s.H)*float64(s.ScaleY)) / 2,
			Angle:  float64(s.Rotation),
		}, true
	case *Text:
		if res == nil {
			return Box{}, false
		}
		w, h, ok := res.TextSize(e.ID)
		if !ok {
			return Box{}, false
		}
		anchor := geom.Pt32(s.X, s.Y)
		angle := float64(s.Rotation)
		return Box{
			Center: anchor.Add(geom.Pt(w/2, -h/2).Rotate(angle)),
			HalfW:  w / 2,
			HalfH:  h / 2,
			Angle:  angle,
		}, true
	case *Line, *Polyline, *Arrow, *Node, *Conduit:
		pts, ok := Points(e, res)
		if !ok {
			return Box{}, false
		}
		return BoxFromRect(geom.RectFromPoints(pts...)), true
	default:
		return Box{}, false
	}
}

// Bounds returns the world-space axis-aligned bounds of an entity, not
// including stroke width.
func Bounds(e Entity, res Resolver) (geom.Rect, bool) {
	switch e.Shape.(type) {
	case *Line, *Polyline, *Arrow, *Node, *Conduit:
		pts, ok := Points(e, res)
		if !ok {
			return geom.EmptyRect(), false
		}
		return geom.RectFromPoints(pts...), true
	case *Polygon:
		return geom.RectFromPoints(PolygonVertices(e.Shape.(*Polygon))...), true
	}
	b, ok := BoxOf(e, res)
	if !ok {
		return geom.EmptyRect(), false
	}
	return b.Bounds(), true
}

// Points returns the defining points of point-based kinds: segment
// endpoints, polyline vertices, polygon vertices, the node position, or the
// conduit's endpoint node positions.
func Points(e Entity, res Resolver) ([]geom.Point, bool) {
	switch s := e.Shape.(type) {
	case *Line:
		return []geom.Point{geom.Pt32(s.X0, s.Y0), geom.Pt32(s.X1, s.Y1)}, true
	case *Arrow:
		return []geom.Point{geom.Pt32(s.X0, s.Y0), geom.Pt32(s.X1, s.Y1)}, true
	case *Polyline:
		out := make([]geom.Point, len(s.Points))
		for i, p := range s.Points {
			out[i] = geom.Pt32(p.X, p.Y)
		}
		return out, true
	case *Polygon:
		return PolygonVertices(s), true
	case *Node:
		return []geom.Point{geom.Pt32(s.X, s.Y)}, true
	case *Conduit:
		if res == nil {
			return nil, false
		}
		a, okA := res.NodePosition(s.From)
		b, okB := res.NodePosition(s.To)
		if !okA || !okB {
			return nil, false
		}
		return []geom.Point{a, b}, true
	default:
		return nil, false
	}
}

// PolygonVertices returns the world-space vertices of a regular polygon in
// counter-clockwise order, starting with the vertex above the center.
func PolygonVertices(p *Polygon) []geom.Point {
	n := int(p.Sides)
	if n < 3 {
		n = 3
	}
	frame := geom.Frame(geom.Pt32(p.CX, p.CY), float64(p.Rotation))
	out := make([]geom.Point, n)
	for i := range out {
		theta := math.Pi/2 + 2*math.Pi*float64(i)/float64(n)
		local := geom.Pt(float64(p.RX)*math.Cos(theta), float64(p.RY)*math.Sin(theta))
		out[i] = frame.Apply(local)
	}
	return out
}

// ArrowHead returns the three corners of the arrow head triangle: tip, left, right.
func ArrowHead(a *Arrow) [3]geom.Point {
	tip := geom.Pt32(a.X1, a.Y1)
	tail := geom.Pt32(a.X0, a.Y0)
	dir := tip.Sub(tail).Normalize()
	head := float64(a.Head)
	if head <= 0 {
		head = float64(a.Style.StrokeWidth) * 4
	}
	base := tip.Sub(dir.Mul(head))
	side := dir.Perp().Mul(head / 2)
	return [3]geom.Point{tip, base.Add(side), base.Sub(side)}
}
