// Package transform implements interactive edit sessions: move, resize,
// rotate, side resize and vertex or edge drags.
//
// A Session is a small state machine, Idle or Active. Begin snapshots the
// targets; Update recomputes a preview from that snapshot and the total
// pointer delta since Begin, never from the previous preview, so any number
// of updates is drift-free and replaying the last pointer is idempotent.
// The live store is not touched until Commit, which writes every target in
// one recording and returns the resulting patch. Cancel drops the preview.
package transform

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/gogpu/draft/entity"
	"github.com/gogpu/draft/geom"
	"github.com/gogpu/draft/store"
)

// Session state errors.
var (
	// ErrIdle is returned by Update, Commit and Cancel without an active session.
	ErrIdle = errors.New("transform: no active session")

	// ErrSessionActive is returned by Begin while a session is active.
	ErrSessionActive = errors.New("transform: session already active")

	// ErrNoTargets is returned by Begin when no requested id exists.
	ErrNoTargets = errors.New("transform: no targets")

	// ErrUnsupported is returned by Begin when the mode cannot apply to the targets.
	ErrUnsupported = errors.New("transform: mode not supported for targets")

	// ErrNonFinite is returned for a NaN or infinite pointer or snap angle,
	// and by Commit when the preview overflowed. The session is unchanged.
	ErrNonFinite = errors.New("transform: non-finite coordinate")

	// ErrStale is returned when the document changed under an active session.
	// The session is cancelled.
	ErrStale = errors.New("transform: document changed during session")
)

// Mode selects the edit performed by a session.
type Mode uint8

const (
	Move Mode = iota + 1
	Resize
	Rotate
	VertexDrag
	EdgeDrag
	SideResize
)

var modeNames = map[Mode]string{
	Move:       "move",
	Resize:     "resize",
	Rotate:     "rotate",
	VertexDrag: "vertex_drag",
	EdgeDrag:   "edge_drag",
	SideResize: "side_resize",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// Valid reports whether m is a defined mode.
func (m Mode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// Params describe a session.
type Params struct {
	Mode Mode
	IDs  []entity.ID
	// Anchor is the entity whose handle was grabbed. For a single rotated
	// target, resizing happens in its frame. Zero means the first target.
	Anchor entity.ID
	// Handle is the corner (Resize, 0..3 = BL, BR, TR, TL), side
	// (SideResize, 0..3 = S, E, N, W), vertex (VertexDrag) or edge
	// (EdgeDrag) index.
	Handle int
	// Pointer is the world position where the drag started.
	Pointer geom.Point
	// AspectLock keeps the width to height ratio while resizing.
	AspectLock bool
	// SnapAngle, if positive, rounds rotations to multiples of it (radians).
	SnapAngle float64
}

type state uint8

const (
	idle state = iota
	active
)

type target struct {
	orig entity.Entity
}

// Session is an interactive edit transaction. The zero value is Idle.
type Session struct {
	state   state
	params  Params
	targets []target
	preview []entity.Entity
	base    uint64 // store content generation at Begin
	gen     uint64

	// Resize frame.
	frame  entity.Box
	pivot  geom.Point
	corner geom.Point // grabbed handle, in frame coordinates
	// Rotate pivot.
	center geom.Point

	last geom.Point
}

// Active reports whether a session is in progress.
func (s *Session) Active() bool { return s.state == active }

// Mode returns the mode of the active session, or zero.
func (s *Session) Mode() Mode {
	if !s.Active() {
		return 0
	}
	return s.params.Mode
}

// Targets returns the ids being edited, including nodes anchored to them.
func (s *Session) Targets() []entity.ID {
	ids := make([]entity.ID, len(s.targets))
	for i, t := range s.targets {
		ids[i] = t.orig.ID
	}
	return ids
}

// Preview returns the current computed geometry of every target. The slice
// is valid until the next call on the session.
func (s *Session) Preview() []entity.Entity { return s.preview }

// Pointer returns the last pointer passed to Begin or Update.
func (s *Session) Pointer() geom.Point { return s.last }

// Generation changes whenever the preview changes.
func (s *Session) Generation() uint64 { return s.gen }

// Begin starts a session over the stored entities named in p.IDs. Unknown
// ids are dropped; if none remain the session stays Idle. Move, Resize and
// Rotate also carry nodes anchored to a target.
func (s *Session) Begin(st *store.Store, res entity.Resolver, p Params) error {
	if s.Active() {
		return ErrSessionActive
	}
	if !p.Mode.Valid() {
		return fmt.Errorf("%w: %s", ErrUnsupported, p.Mode)
	}
	if !p.Pointer.Finite() || math.IsNaN(p.SnapAngle) || math.IsInf(p.SnapAngle, 0) {
		return ErrNonFinite
	}
	var targets []target
	seen := make(map[entity.ID]bool, len(p.IDs))
	for _, id := range p.IDs {
		if seen[id] {
			continue
		}
		e, ok := st.Get(id)
		if !ok {
			continue
		}
		seen[id] = true
		targets = append(targets, target{orig: e})
	}
	if len(targets) == 0 {
		return ErrNoTargets
	}

	next := Session{params: p, base: st.Generation().Content, gen: s.gen + 1, last: p.Pointer}
	switch p.Mode {
	case VertexDrag, EdgeDrag:
		if len(targets) != 1 {
			return fmt.Errorf("%w: %s needs exactly one target", ErrUnsupported, p.Mode)
		}
		sh := targets[0].orig.Shape
		n := entity.VertexCount(sh)
		if p.Mode == EdgeDrag {
			n = entity.EdgeCount(sh)
		}
		if p.Handle < 0 || p.Handle >= n {
			return fmt.Errorf("%w: %s index %d on %s", ErrUnsupported, p.Mode, p.Handle, sh.Kind())
		}
	case Resize, SideResize:
		if p.Handle < 0 || p.Handle > 3 {
			return fmt.Errorf("%w: handle %d", ErrUnsupported, p.Handle)
		}
		targets = withAnchored(st, targets, seen)
		frame, ok := resizeFrame(targets, p.Anchor, res)
		if !ok {
			return fmt.Errorf("%w: targets have no extent", ErrUnsupported)
		}
		next.frame = frame
		next.corner, next.pivot = handleAndPivot(frame, p.Mode, p.Handle)
	case Rotate:
		targets = withAnchored(st, targets, seen)
		b, ok := unionBounds(targets, res)
		if !ok {
			return fmt.Errorf("%w: targets have no extent", ErrUnsupported)
		}
		next.center = b.Center()
	case Move:
		targets = withAnchored(st, targets, seen)
	}

	next.state = active
	next.targets = targets
	next.preview = make([]entity.Entity, len(targets))
	for i, t := range targets {
		next.preview[i] = t.orig.Clone()
	}
	*s = next
	return nil
}

// Update recomputes the preview for pointer.
func (s *Session) Update(st *store.Store, pointer geom.Point) error {
	if !s.Active() {
		return ErrIdle
	}
	if !pointer.Finite() {
		return ErrNonFinite
	}
	if st.Generation().Content != s.base {
		s.Cancel()
		return ErrStale
	}
	s.last = pointer
	for i, t := range s.targets {
		s.preview[i] = s.apply(t.orig, pointer)
	}
	s.gen++
	return nil
}

// Commit writes the preview into st as one recorded change and returns to
// Idle. The patch is false when the session changed nothing. A preview that
// overflowed to non-finite geometry is refused and the session stays active.
func (s *Session) Commit(st *store.Store) (store.Patch, bool, error) {
	if !s.Active() {
		return store.Patch{}, false, ErrIdle
	}
	if st.Generation().Content != s.base {
		s.Cancel()
		return store.Patch{}, false, ErrStale
	}
	for _, e := range s.preview {
		if !entity.Finite(e.Shape) {
			return store.Patch{}, false, ErrNonFinite
		}
	}
	if err := st.BeginRecord(); err != nil {
		return store.Patch{}, false, err
	}
	for _, e := range s.preview {
		if _, err := st.Upsert(e.ID, e.Shape); err != nil {
			if p, ok := st.EndRecord(); ok {
				st.Apply(p.Reverse)
			}
			s.reset()
			return store.Patch{}, false, err
		}
	}
	patch, ok := st.EndRecord()
	s.reset()
	return patch, ok, nil
}

// Cancel ends the session without touching the store.
func (s *Session) Cancel() error {
	if !s.Active() {
		return ErrIdle
	}
	s.reset()
	return nil
}

func (s *Session) reset() {
	*s = Session{gen: s.gen + 1}
}

// withAnchored appends the nodes anchored to any target.
func withAnchored(st *store.Store, targets []target, seen map[entity.ID]bool) []target {
	owners := make(map[entity.ID]bool, len(targets))
	for _, t := range targets {
		owners[t.orig.ID] = true
	}
	var extra []entity.ID
	st.Each(func(e entity.Entity) bool {
		if n, ok := e.Shape.(*entity.Node); ok && owners[n.Anchor] && !seen[e.ID] {
			extra = append(extra, e.ID)
		}
		return true
	})
	slices.Sort(extra)
	for _, id := range extra {
		e, _ := st.Get(id)
		seen[id] = true
		targets = append(targets, target{orig: e})
	}
	return targets
}
