package pick

import (
	"github.com/gogpu/draft/entity"
	"github.com/gogpu/draft/geom"
)

// Handle is one interactive handle of a selected entity.
type Handle struct {
	Sub   SubTarget
	Index int
	At    geom.Point
}

// HandleBox returns the box whose corners and sides carry the resize
// handles of e. Lines, arrows, nodes and conduits have no box handles:
// lines and arrows are edited through their vertices, nodes and conduits by
// moving.
func HandleBox(e entity.Entity, res entity.Resolver) (entity.Box, bool) {
	switch e.Shape.(type) {
	case *entity.Rect, *entity.Circle, *entity.Polygon, *entity.Symbol, *entity.Text, *entity.Polyline:
		return entity.BoxOf(e, res)
	default:
		return entity.Box{}, false
	}
}

// Handles returns the four corner handles, the four side handles and the
// rotation handle of e, in that order.
func Handles(e entity.Entity, res entity.Resolver, o Options) ([]Handle, bool) {
	box, ok := HandleBox(e, res)
	if !ok {
		return nil, false
	}
	hs := make([]Handle, 0, 9)
	for i, c := range box.Corners() {
		hs = append(hs, Handle{Sub: SubCorner, Index: i, At: c})
	}
	for i, s := range box.Sides() {
		hs = append(hs, Handle{Sub: SubSide, Index: i, At: s})
	}
	hs = append(hs, Handle{Sub: SubRotate, At: RotateHandle(box, o)})
	return hs, true
}

// RotateHandle returns the position of the rotation handle above the top
// side of box.
func RotateHandle(box entity.Box, o Options) geom.Point {
	off := o.RotateOffset / o.scale()
	return box.ToWorld(geom.Pt(0, box.HalfH+off))
}
