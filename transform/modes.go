package transform

import (
	"math"

	"github.com/gogpu/draft/entity"
	"github.com/gogpu/draft/geom"
)

// minScale keeps resize factors away from zero so a shape never collapses
// into an unrecoverable point.
const minScale = 1e-4

// apply computes the geometry of one target for the pointer position.
func (s *Session) apply(orig entity.Entity, pointer geom.Point) entity.Entity {
	e := orig.Clone()
	delta := pointer.Sub(s.params.Pointer)
	switch s.params.Mode {
	case Move:
		entity.Translate(e.Shape, delta)
	case Resize, SideResize:
		sx, sy := s.scaleFactors(pointer)
		entity.Scale(e.Shape, entity.Scaler{Origin: s.pivot, Angle: s.frame.Angle, SX: sx, SY: sy})
	case Rotate:
		entity.Rotate(e.Shape, s.center, s.rotation(pointer))
	case VertexDrag:
		pts, _ := entity.Points(orig, nil)
		i := s.params.Handle
		if i < len(pts) {
			entity.SetVertex(e.Shape, i, pts[i].Add(delta))
		}
	case EdgeDrag:
		entity.OffsetEdge(e.Shape, s.params.Handle, delta)
	}
	return e
}

// scaleFactors returns the resize factors along the frame axes. The grabbed
// handle follows the pointer while the pivot stays fixed.
func (s *Session) scaleFactors(pointer geom.Point) (sx, sy float64) {
	delta := pointer.Sub(s.params.Pointer).Rotate(-s.frame.Angle)
	pivot := s.frame.ToLocal(s.pivot)
	from := s.corner.Sub(pivot)
	to := s.corner.Add(delta).Sub(pivot)

	sx, sy = 1, 1
	if from.X != 0 {
		sx = to.X / from.X
	}
	if from.Y != 0 {
		sy = to.Y / from.Y
	}
	if s.params.Mode == SideResize {
		// Only the axis across the grabbed side moves.
		if s.params.Handle%2 == 0 {
			sx = 1
		} else {
			sy = 1
		}
		if s.params.AspectLock {
			if s.params.Handle%2 == 0 {
				sx = math.Abs(sy)
			} else {
				sy = math.Abs(sx)
			}
		}
	} else if s.params.AspectLock {
		m := math.Max(math.Abs(sx), math.Abs(sy))
		sx = math.Copysign(m, sx)
		sy = math.Copysign(m, sy)
	}
	return clampScale(sx), clampScale(sy)
}

func clampScale(v float64) float64 {
	if math.Abs(v) < minScale {
		return math.Copysign(minScale, v)
	}
	return v
}

// rotation returns the angle swept by the pointer around the center,
// snapped when requested.
func (s *Session) rotation(pointer geom.Point) float64 {
	a0 := s.params.Pointer.Sub(s.center)
	a1 := pointer.Sub(s.center)
	if a0.Length() == 0 || a1.Length() == 0 {
		return 0
	}
	angle := geom.NormalizeAngle(a1.Angle() - a0.Angle())
	if step := s.params.SnapAngle; step > 0 {
		angle = math.Round(angle/step) * step
	}
	return angle
}

// handleAndPivot returns the grabbed handle position in frame coordinates
// and the world position of the opposite handle.
func handleAndPivot(frame entity.Box, mode Mode, handle int) (geom.Point, geom.Point) {
	local := frame.LocalRect()
	var pts [4]geom.Point
	if mode == SideResize {
		pts = local.Sides()
	} else {
		pts = local.Corners()
	}
	grabbed := pts[handle]
	opposite := pts[(handle+2)%4]
	return grabbed, frame.ToWorld(opposite)
}

// resizeFrame returns the box in whose axes a resize happens. A single
// boxed target (anchored nodes aside) resizes in its own rotated frame;
// anything else uses the axis-aligned union of the target bounds.
func resizeFrame(targets []target, anchor entity.ID, res entity.Resolver) (entity.Box, bool) {
	var owners []entity.Entity
	for _, t := range targets {
		if t.orig.Kind() != entity.KindNode || t.orig.ID == anchor {
			owners = append(owners, t.orig)
		}
	}
	if len(owners) == 1 {
		switch owners[0].Shape.(type) {
		case *entity.Rect, *entity.Circle, *entity.Polygon, *entity.Symbol, *entity.Text:
			if b, ok := entity.BoxOf(owners[0], res); ok {
				return b, true
			}
		}
	}
	u, ok := unionBounds(targets, res)
	if !ok {
		return entity.Box{}, false
	}
	return entity.BoxFromRect(u), true
}

func unionBounds(targets []target, res entity.Resolver) (geom.Rect, bool) {
	u := geom.EmptyRect()
	for _, t := range targets {
		if b, ok := entity.Bounds(t.orig, res); ok {
			u = u.Union(b)
		}
	}
	return u, !u.IsEmpty()
}
