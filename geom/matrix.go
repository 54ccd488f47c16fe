package geom

import "math"

// Affine is the map
//
//	x' = m[0]*x + m[2]*y + m[4]
//	y' = m[1]*x + m[3]*y + m[5]
//
// stored in the column order of SVG's matrix(a b c d e f).
type Affine [6]float64

// Identity is the affine map that changes nothing.
var Identity = Affine{1, 0, 0, 1, 0, 0}

// Translation moves points by d.
func Translation(d Point) Affine { return Affine{1, 0, 0, 1, d.X, d.Y} }

// Rotation turns points counter-clockwise about the origin.
func Rotation(angle float64) Affine {
	s, c := math.Sincos(angle)
	return Affine{c, s, -s, c, 0, 0}
}

// Scaling scales along the axes.
func Scaling(sx, sy float64) Affine { return Affine{sx, 0, 0, sy, 0, 0} }

// Frame maps coordinates local to a frame with the given origin and
// rotation into world coordinates.
func Frame(origin Point, angle float64) Affine {
	return Rotation(angle).Then(Translation(origin))
}

// Then returns the map that applies m first and n second.
func (m Affine) Then(n Affine) Affine {
	return Affine{
		n[0]*m[0] + n[2]*m[1],
		n[1]*m[0] + n[3]*m[1],
		n[0]*m[2] + n[2]*m[3],
		n[1]*m[2] + n[3]*m[3],
		n[0]*m[4] + n[2]*m[5] + n[4],
		n[1]*m[4] + n[3]*m[5] + n[5],
	}
}

// Apply maps a point.
func (m Affine) Apply(p Point) Point {
	return Point{m[0]*p.X + m[2]*p.Y + m[4], m[1]*p.X + m[3]*p.Y + m[5]}
}

// ApplyVector maps a direction, ignoring the translation.
func (m Affine) ApplyVector(v Point) Point {
	return Point{m[0]*v.X + m[2]*v.Y, m[1]*v.X + m[3]*v.Y}
}

// Inverse returns the inverse map. ok is false for a singular map.
func (m Affine) Inverse() (inv Affine, ok bool) {
	det := m[0]*m[3] - m[1]*m[2]
	if math.Abs(det) < 1e-12 {
		return Identity, false
	}
	r := 1 / det
	a, b, c, d := m[3]*r, -m[1]*r, -m[2]*r, m[0]*r
	return Affine{a, b, c, d, -(a*m[4] + c*m[5]), -(b*m[4] + d*m[5])}, true
}
