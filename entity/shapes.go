package entity

import (
	"math"
	"slices"
)

// Vec2 is a float32 point as stored in payloads.
type Vec2 struct {
	X, Y float32
}

// Rect is a rectangle whose unrotated bottom-left corner is (X, Y).
// Rotation turns it about its center.
type Rect struct {
	X, Y, W, H float32
	Rotation   float32
	Style      Style
}

// Line is a straight segment.
type Line struct {
	X0, Y0, X1, Y1 float32
	Style          Style
}

// Polyline is an open path through at least two points.
type Polyline struct {
	Points []Vec2
	Style  Style
}

// Circle is an ellipse centered at (CX, CY). It stays a circle until a
// non-uniform resize makes RX and RY differ.
type Circle struct {
	CX, CY, RX, RY float32
	Rotation       float32
	Style          Style
}

// Polygon is a regular polygon with Sides vertices inscribed in the
// ellipse (CX, CY, RX, RY). Vertex 0 points up before rotation.
type Polygon struct {
	CX, CY, RX, RY float32
	Rotation       float32
	Sides          uint32
	Style          Style
}

// Arrow is a segment from (X0, Y0) to a head at (X1, Y1).
type Arrow struct {
	X0, Y0, X1, Y1 float32
	Head           float32
	Style          Style
}

// Symbol is an instance of a host-defined glyph template centered at (X, Y).
type Symbol struct {
	Key            uint32
	X, Y, W, H     float32
	Rotation       float32
	ScaleX, ScaleY float32
	Style          Style
}

// Node is a routing node. Anchor optionally names the entity it is attached to.
type Node struct {
	X, Y   float32
	Anchor ID
	Flags  uint32
}

// Conduit is a routing edge between two nodes. Its geometry is derived from
// the current positions of From and To.
type Conduit struct {
	From, To ID
	Style    Style
}

func (*Rect) Kind() Kind     { return KindRect }
func (*Line) Kind() Kind     { return KindLine }
func (*Polyline) Kind() Kind { return KindPolyline }
func (*Circle) Kind() Kind   { return KindCircle }
func (*Polygon) Kind() Kind  { return KindPolygon }
func (*Arrow) Kind() Kind    { return KindArrow }
func (*Symbol) Kind() Kind   { return KindSymbol }
func (*Node) Kind() Kind     { return KindNode }
func (*Conduit) Kind() Kind  { return KindConduit }

func (*Rect) isShape()     {}
func (*Line) isShape()     {}
func (*Polyline) isShape() {}
func (*Circle) isShape()   {}
func (*Polygon) isShape()  {}
func (*Arrow) isShape()    {}
func (*Symbol) isShape()   {}
func (*Node) isShape()     {}
func (*Conduit) isShape()  {}

func (s *Rect) Clone() Shape    { c := *s; return &c }
func (s *Line) Clone() Shape    { c := *s; return &c }
func (s *Circle) Clone() Shape  { c := *s; return &c }
func (s *Polygon) Clone() Shape { c := *s; return &c }
func (s *Arrow) Clone() Shape   { c := *s; return &c }
func (s *Symbol) Clone() Shape  { c := *s; return &c }
func (s *Node) Clone() Shape    { c := *s; return &c }
func (s *Conduit) Clone() Shape { c := *s; return &c }

func (s *Polyline) Clone() Shape {
	c := *s
	c.Points = slices.Clone(s.Points)
	return &c
}

// ShapeEqual reports whether two payloads are identical. Nil and empty
// slices compare equal.
func ShapeEqual(a, b Shape) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case *Rect:
		return *x == *b.(*Rect)
	case *Line:
		return *x == *b.(*Line)
	case *Polyline:
		y := b.(*Polyline)
		return x.Style == y.Style && slices.Equal(x.Points, y.Points)
	case *Circle:
		return *x == *b.(*Circle)
	case *Polygon:
		return *x == *b.(*Polygon)
	case *Arrow:
		return *x == *b.(*Arrow)
	case *Symbol:
		return *x == *b.(*Symbol)
	case *Node:
		return *x == *b.(*Node)
	case *Conduit:
		return *x == *b.(*Conduit)
	case *Text:
		y := b.(*Text)
		return x.X == y.X && x.Y == y.Y && x.Rotation == y.Rotation &&
			x.BoxMode == y.BoxMode && x.Align == y.Align && x.BoxWidth == y.BoxWidth &&
			slices.Equal(x.Runs, y.Runs) && slices.Equal(x.Content, y.Content)
	default:
		return false
	}
}

// Finite reports whether every coordinate, size and style width of s is a
// finite number. Only finite shapes can be encoded.
func Finite(s Shape) bool {
	switch x := s.(type) {
	case *Rect:
		return finite(x.X, x.Y, x.W, x.H, x.Rotation, x.Style.StrokeWidth)
	case *Line:
		return finite(x.X0, x.Y0, x.X1, x.Y1, x.Style.StrokeWidth)
	case *Polyline:
		for _, p := range x.Points {
			if !finite(p.X, p.Y) {
				return false
			}
		}
		return finite(x.Style.StrokeWidth)
	case *Circle:
		return finite(x.CX, x.CY, x.RX, x.RY, x.Rotation, x.Style.StrokeWidth)
	case *Polygon:
		return finite(x.CX, x.CY, x.RX, x.RY, x.Rotation, x.Style.StrokeWidth)
	case *Arrow:
		return finite(x.X0, x.Y0, x.X1, x.Y1, x.Head, x.Style.StrokeWidth)
	case *Symbol:
		return finite(x.X, x.Y, x.W, x.H, x.Rotation, x.ScaleX, x.ScaleY, x.Style.StrokeWidth)
	case *Node:
		return finite(x.X, x.Y)
	case *Conduit:
		return finite(x.Style.StrokeWidth)
	case *Text:
		for _, r := range x.Runs {
			if !finite(r.Size) {
				return false
			}
		}
		return finite(x.X, x.Y, x.Rotation, x.BoxWidth)
	default:
		return false
	}
}

func finite(vs ...float32) bool {
	for _, v := range vs {
		if f := float64(v); math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
