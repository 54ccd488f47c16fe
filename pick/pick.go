// Package pick answers "what is under this point" for a document.
//
// Candidates are scanned from the top of the draw order down; the first
// entity with any hit wins, so ties between entities go to the topmost one.
// Within an entity the most specific feature wins: handle, then vertex, then
// edge, then body. Handles exist only on selected entities and are tested in
// a separate first pass, which keeps a resize handle reachable even when it
// overlaps a filled shape drawn above its owner.
//
// Tolerances and handle sizes are given in screen pixels and converted to
// world units with the view scale (pixels per world unit).
package pick

import (
	"fmt"

	"github.com/gogpu/draft/entity"
	"github.com/gogpu/draft/geom"
	"github.com/gogpu/draft/store"
)

// SubTarget is the feature of an entity that was hit.
type SubTarget uint8

const (
	SubNone SubTarget = iota
	// SubBody is the interior of a closed shape, a node, or a text box.
	SubBody
	// SubEdge is an outline segment; SubIndex is the segment or side index.
	SubEdge
	// SubVertex is a polyline, polygon, line or arrow vertex.
	SubVertex
	// SubCorner is a corner resize handle (0..3 = BL, BR, TR, TL).
	SubCorner
	// SubSide is a side resize handle (0..3 = S, E, N, W).
	SubSide
	// SubRotate is the rotation handle.
	SubRotate
)

var subNames = [...]string{"None", "Body", "Edge", "Vertex", "Corner", "Side", "Rotate"}

func (s SubTarget) String() string {
	if int(s) < len(subNames) {
		return subNames[s]
	}
	return fmt.Sprintf("SubTarget(%d)", uint8(s))
}

// IsHandle reports whether s is one of the handle sub-targets.
func (s SubTarget) IsHandle() bool { return s >= SubCorner }

// rank orders sub-targets by priority within one entity.
func (s SubTarget) rank() int {
	switch s {
	case SubBody:
		return 1
	case SubEdge:
		return 2
	case SubVertex:
		return 3
	case SubCorner, SubSide, SubRotate:
		return 4
	default:
		return 0
	}
}

// Result describes a hit. For text bodies SubIndex is the caret byte offset
// nearest to the point, or -1 when no text metrics are available.
type Result struct {
	ID       entity.ID
	Kind     entity.Kind
	Sub      SubTarget
	SubIndex int
	Distance float64
	Hit      geom.Point
}

// better reports whether r should replace cur as the best hit on one entity.
func (r Result) better(cur Result) bool {
	if r.Sub.rank() != cur.Sub.rank() {
		return r.Sub.rank() > cur.Sub.rank()
	}
	if r.Distance != cur.Distance {
		return r.Distance < cur.Distance
	}
	return r.SubIndex < cur.SubIndex
}

// KindMask restricts picking to a set of kinds. The zero mask allows all.
type KindMask uint32

// MaskOf returns a mask allowing exactly the given kinds.
func MaskOf(kinds ...entity.Kind) KindMask {
	var m KindMask
	for _, k := range kinds {
		m |= 1 << k
	}
	return m
}

// Allows reports whether the mask admits k.
func (m KindMask) Allows(k entity.Kind) bool {
	return m == 0 || m&(1<<k) != 0
}

// Options control a query.
type Options struct {
	// Tolerance is the hit slop in screen pixels.
	Tolerance float64
	// ViewScale is screen pixels per world unit. Zero means 1.
	ViewScale float64
	// HandleSize is the side of a square handle in screen pixels.
	HandleSize float64
	// RotateOffset is the distance in screen pixels of the rotation handle
	// above the top side.
	RotateOffset float64
	// Handles enables the handle pass over selected entities.
	Handles bool
	// Mask restricts candidate kinds.
	Mask KindMask
}

func (o Options) scale() float64 {
	if o.ViewScale <= 0 {
		return 1
	}
	return o.ViewScale
}

func (o Options) tol() float64 { return o.Tolerance / o.scale() }

// TextMetrics resolves caret positions inside text boxes. Coordinates are in
// the text's own frame: origin at the anchor, x to the right, y downward.
type TextMetrics interface {
	CaretAt(id entity.ID, x, y float64) (offset int, ok bool)
}

// Picker runs queries against a store. Resolver supplies node positions and
// text sizes; Text is optional.
type Picker struct {
	Store    *store.Store
	Resolver entity.Resolver
	Text     TextMetrics
}

// Pick returns the id of the entity under p, or entity.None.
func (pk *Picker) Pick(p geom.Point, o Options) entity.ID {
	r, ok := pk.PickEx(p, o)
	if !ok {
		return entity.None
	}
	return r.ID
}

// PickEx returns the best hit under p.
func (pk *Picker) PickEx(p geom.Point, o Options) (Result, bool) {
	if o.Handles {
		if r, ok := pk.pickHandle(p, o); ok {
			return r, true
		}
	}
	var (
		best  Result
		found bool
	)
	pk.eachCandidate(o, func(e entity.Entity) bool {
		best, found = pk.test(e, p, o)
		return !found
	})
	return best, found
}

// Candidates returns the best hit of every entity under p, topmost first.
// Handles are not considered.
func (pk *Picker) Candidates(p geom.Point, o Options) []Result {
	var out []Result
	pk.eachCandidate(o, func(e entity.Entity) bool {
		if r, ok := pk.test(e, p, o); ok {
			out = append(out, r)
		}
		return true
	})
	return out
}

func (pk *Picker) eachCandidate(o Options, fn func(entity.Entity) bool) {
	pk.Store.EachTopDown(func(e entity.Entity) bool {
		if !o.Mask.Allows(e.Kind()) || !pk.Store.LayerOf(e).Pickable() {
			return true
		}
		return fn(e)
	})
}

// pickHandle tests the handles of selected entities, topmost first.
func (pk *Picker) pickHandle(p geom.Point, o Options) (Result, bool) {
	var (
		best  Result
		found bool
	)
	pk.eachCandidate(o, func(e entity.Entity) bool {
		if !pk.Store.Selected(e.ID) {
			return true
		}
		hs, ok := Handles(e, pk.Resolver, o)
		if !ok {
			return true
		}
		radius := max(o.HandleSize/2, o.Tolerance) / o.scale()
		for _, h := range hs {
			d := p.Distance(h.At)
			if d > radius {
				continue
			}
			r := Result{ID: e.ID, Kind: e.Kind(), Sub: h.Sub, SubIndex: h.Index, Distance: d, Hit: h.At}
			if !found || r.handleBetter(best) {
				best, found = r, true
			}
		}
		return !found
	})
	return best, found
}

// handleBetter breaks ties between handles of one entity: corners beat
// sides, sides beat the rotation handle, then distance, then index.
func (r Result) handleBetter(cur Result) bool {
	if r.Sub != cur.Sub {
		return r.Sub < cur.Sub
	}
	if r.Distance != cur.Distance {
		return r.Distance < cur.Distance
	}
	return r.SubIndex < cur.SubIndex
}
