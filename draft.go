package draft

import (
	"fmt"
	"math"

	"github.com/gogpu/draft/entity"
	"github.com/gogpu/draft/geom"
	"github.com/gogpu/draft/protocol"
)

// draftState is a shape being drawn. Like a transform session it is
// recomputed from its start point and the latest pointer, and only reaches
// the store on commit.
type draftState struct {
	active  bool
	begin   protocol.DraftBegin
	start   geom.Point
	current geom.Point
	points  []entity.Vec2 // polyline vertices fixed so far, start first
	gen     uint64
}

// BeginDraft starts drawing a shape of b.Kind at (b.X, b.Y).
func (e *Engine) BeginDraft(b protocol.DraftBegin) error {
	if e.draft.active {
		return ErrDraftActive
	}
	if !protocol.Draftable(b.Kind) {
		return fmt.Errorf("draft: %s cannot be drafted", b.Kind)
	}
	if b.Kind == entity.KindPolygon && (b.Sides < 3 || b.Sides > protocol.MaxPolygonSides) {
		return fmt.Errorf("draft: polygon with %d sides", b.Sides)
	}
	start := geom.Pt32(b.X, b.Y)
	if !entity.Finite(&entity.Arrow{X0: b.X, Y0: b.Y, Head: b.Head, Style: b.Style}) {
		return ErrNonFinite
	}
	e.draft = draftState{active: true, begin: b, start: start, current: start, gen: e.draft.gen + 1}
	if b.Kind == entity.KindPolyline {
		e.draft.points = []entity.Vec2{{X: b.X, Y: b.Y}}
	}
	return nil
}

// UpdateDraft moves the free end of the draft to p.
func (e *Engine) UpdateDraft(p geom.Point) error {
	if !e.draft.active {
		return ErrNoDraft
	}
	if !storable(p) {
		return ErrNonFinite
	}
	e.draft.current = p
	e.draft.gen++
	return nil
}

// AppendDraftPoint fixes p as the next vertex of a polyline draft. For
// other kinds it behaves like UpdateDraft.
func (e *Engine) AppendDraftPoint(p geom.Point) error {
	if !e.draft.active {
		return ErrNoDraft
	}
	if !storable(p) {
		return ErrNonFinite
	}
	if e.draft.begin.Kind == entity.KindPolyline {
		v := entity.Vec2{X: float32(p.X), Y: float32(p.Y)}
		if pts := e.draft.points; pts[len(pts)-1] != v {
			e.draft.points = append(pts, v)
		}
	}
	e.draft.current = p
	e.draft.gen++
	return nil
}

// storable reports whether p stays finite once narrowed to float32.
func storable(p geom.Point) bool {
	return geom.Pt32(p.F32()).Finite()
}

// CommitDraft writes the draft into entity id as one undo entry. An
// existing entity of the same kind is replaced.
func (e *Engine) CommitDraft(id entity.ID) error {
	_, err := e.record(func() error { return e.commitDraft(id) })
	return err
}

func (e *Engine) commitDraft(id entity.ID) error {
	if !e.draft.active {
		return ErrNoDraft
	}
	s, ok := e.draft.shape()
	if !ok {
		return ErrDegenerate
	}
	if _, err := e.store.Upsert(id, s); err != nil {
		return err
	}
	e.draft = draftState{gen: e.draft.gen + 1}
	return nil
}

// CancelDraft drops the draft.
func (e *Engine) CancelDraft() error {
	if !e.draft.active {
		return ErrNoDraft
	}
	e.draft = draftState{gen: e.draft.gen + 1}
	return nil
}

// DraftActive reports whether a draft is open.
func (e *Engine) DraftActive() bool { return e.draft.active }

// DraftPreview returns the shape the draft would commit. The entity has the
// null id.
func (e *Engine) DraftPreview() (entity.Entity, bool) {
	if !e.draft.active {
		return entity.Entity{}, false
	}
	s, ok := e.draft.shape()
	if !ok {
		return entity.Entity{}, false
	}
	return entity.Entity{Layer: entity.DefaultLayer, Shape: s}, true
}

// shape builds the drafted shape from the start point and the pointer.
func (d *draftState) shape() (entity.Shape, bool) {
	b := d.begin
	a, p := d.start, d.current
	f := func(v float64) float32 { return float32(v) }
	switch b.Kind {
	case entity.KindRect:
		return &entity.Rect{
			X: f(math.Min(a.X, p.X)), Y: f(math.Min(a.Y, p.Y)),
			W: f(math.Abs(p.X - a.X)), H: f(math.Abs(p.Y - a.Y)),
			Style: b.Style,
		}, true
	case entity.KindLine:
		return &entity.Line{X0: b.X, Y0: b.Y, X1: f(p.X), Y1: f(p.Y), Style: b.Style}, true
	case entity.KindArrow:
		return &entity.Arrow{X0: b.X, Y0: b.Y, X1: f(p.X), Y1: f(p.Y), Head: b.Head, Style: b.Style}, true
	case entity.KindCircle:
		r := f(a.Distance(p))
		return &entity.Circle{CX: b.X, CY: b.Y, RX: r, RY: r, Style: b.Style}, true
	case entity.KindPolygon:
		// Vertex 0 points at the pointer.
		r := f(a.Distance(p))
		rot := 0.0
		if r > 0 {
			rot = p.Sub(a).Angle() - math.Pi/2
		}
		return &entity.Polygon{CX: b.X, CY: b.Y, RX: r, RY: r, Rotation: f(rot), Sides: b.Sides, Style: b.Style}, true
	case entity.KindPolyline:
		pts := append([]entity.Vec2(nil), d.points...)
		if v := (entity.Vec2{X: f(p.X), Y: f(p.Y)}); pts[len(pts)-1] != v {
			pts = append(pts, v)
		}
		if len(pts) < 2 {
			return nil, false
		}
		return &entity.Polyline{Points: pts, Style: b.Style}, true
	}
	return nil, false
}
