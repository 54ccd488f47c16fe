// Package geom provides the small float64 geometry kernel shared by the
// store, picking, transform and render packages.
//
// World coordinates are y-up: "bottom" means smaller Y. Angles are in
// radians and increase counter-clockwise.
package geom

import "math"

// Point is a world position or a displacement between two positions.
type Point struct {
	X, Y float64
}

// Pt builds a Point.
func Pt(x, y float64) Point { return Point{x, y} }

// Pt32 widens stored float32 coordinates.
func Pt32(x, y float32) Point { return Point{float64(x), float64(y)} }

// F32 narrows p for storage.
func (p Point) F32() (float32, float32) { return float32(p.X), float32(p.Y) }

func (p Point) Add(q Point) Point     { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point     { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Mul(k float64) Point   { return Point{p.X * k, p.Y * k} }
func (p Point) Dot(q Point) float64   { return p.X*q.X + p.Y*q.Y }
func (p Point) Cross(q Point) float64 { return p.X*q.Y - p.Y*q.X }

// Length is the Euclidean norm.
func (p Point) Length() float64 { return math.Hypot(p.X, p.Y) }

func (p Point) Distance(q Point) float64 { return p.Sub(q).Length() }

// Normalize scales p to unit length. The zero vector stays zero.
func (p Point) Normalize() Point {
	if n := p.Length(); n != 0 {
		return p.Mul(1 / n)
	}
	return Point{}
}

// Rotate turns p counter-clockwise about the origin.
func (p Point) Rotate(angle float64) Point {
	if angle == 0 {
		return p
	}
	s, c := math.Sincos(angle)
	return Point{c*p.X - s*p.Y, s*p.X + c*p.Y}
}

// RotateAbout turns p counter-clockwise about c.
func (p Point) RotateAbout(c Point, angle float64) Point {
	return p.Sub(c).Rotate(angle).Add(c)
}

// Perp is p turned a quarter counter-clockwise.
func (p Point) Perp() Point { return Point{-p.Y, p.X} }

// Finite reports whether neither coordinate is NaN or infinite.
func (p Point) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Angle is the direction of p, in (-Pi, Pi].
func (p Point) Angle() float64 { return math.Atan2(p.Y, p.X) }

// Lerp moves from p towards q by the fraction t.
func (p Point) Lerp(q Point, t float64) Point { return p.Add(q.Sub(p).Mul(t)) }
