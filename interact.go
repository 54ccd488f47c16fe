package draft

import (
	"math"

	"github.com/gogpu/draft/entity"
	"github.com/gogpu/draft/geom"
	"github.com/gogpu/draft/pick"
	"github.com/gogpu/draft/render"
	"github.com/gogpu/draft/transform"
)

// BeginTransform starts an interactive edit over p.IDs. A zero
// p.SnapAngle takes the configured snap step.
func (e *Engine) BeginTransform(p transform.Params) error {
	if p.SnapAngle == 0 && e.cfg.Transform.SnapAngle > 0 {
		p.SnapAngle = e.cfg.Transform.SnapAngle * math.Pi / 180
	}
	if err := e.session.Begin(e.store, resolver{e}, p); err != nil {
		return err
	}
	e.log.Debug("transform begun", "mode", p.Mode, "targets", len(e.session.Targets()))
	return nil
}

// UpdateTransform recomputes the session preview for the pointer. The
// document is not modified. If the document changed since BeginTransform
// the session is cancelled and transform.ErrStale returned.
func (e *Engine) UpdateTransform(pointer geom.Point) error {
	return e.session.Update(e.store, pointer)
}

// CommitTransform writes the preview into the document as one undo entry.
// It reports whether any geometry changed.
func (e *Engine) CommitTransform() (bool, error) {
	mode, n := e.session.Mode(), len(e.session.Targets())
	p, ok, err := e.session.Commit(e.store)
	if err != nil {
		return false, err
	}
	e.push(p, ok)
	if ok {
		e.metrics.Committed(mode.String())
		e.log.Info("transform committed", "mode", mode, "targets", n)
	}
	return ok, nil
}

// CancelTransform ends the session. The document is unchanged.
func (e *Engine) CancelTransform() error {
	return e.session.Cancel()
}

// TransformActive reports whether a transform session is active.
func (e *Engine) TransformActive() bool { return e.session.Active() }

// InteractionActive reports whether a transform session or a draft is open.
func (e *Engine) InteractionActive() bool { return e.session.Active() || e.draft.active }

// TransformPreview returns the previewed geometry of the session targets.
func (e *Engine) TransformPreview() []entity.Entity {
	if !e.session.Active() {
		return nil
	}
	return e.session.Preview()
}

// PickOptions returns pick options from the configuration and the current
// view scale, with handles enabled. tolerance is in screen pixels.
func (e *Engine) PickOptions(tolerance float64) pick.Options {
	return pick.Options{
		Tolerance:    tolerance,
		ViewScale:    e.viewScale,
		HandleSize:   e.cfg.Pick.HandleSize,
		RotateOffset: e.cfg.Pick.RotateOffset,
		Handles:      true,
	}
}

// Pick returns the topmost entity under p, or entity.None. A negative
// tolerance takes the configured one.
func (e *Engine) Pick(p geom.Point, tolerance float64) entity.ID {
	r, ok := e.PickEx(p, e.PickOptions(e.tolerance(tolerance)))
	if !ok {
		return entity.None
	}
	return r.ID
}

// PickEx returns the best hit under p. A zero o.ViewScale takes the current
// view scale.
func (e *Engine) PickEx(p geom.Point, o pick.Options) (pick.Result, bool) {
	if o.ViewScale == 0 {
		o.ViewScale = e.viewScale
	}
	r, ok := e.picker.PickEx(p, o)
	e.metrics.Pick(ok)
	return r, ok
}

// PickCandidates returns every entity under p, topmost first.
func (e *Engine) PickCandidates(p geom.Point, o pick.Options) []pick.Result {
	if o.ViewScale == 0 {
		o.ViewScale = e.viewScale
	}
	out := e.picker.Candidates(p, o)
	e.metrics.Pick(len(out) > 0)
	return out
}

func (e *Engine) tolerance(t float64) float64 {
	if t < 0 {
		return e.cfg.Pick.Tolerance
	}
	return t
}

// Buffers are the render buffers of the document. They are valid until the
// next mutating call; re-fetch them, with their generations, afterwards.
type Buffers struct {
	Shapes *render.Buffer
	Text   *render.TextBuffer
	// Overlay holds the transform preview and the draft shape, or is nil
	// when neither is active.
	Overlay *render.Buffer
}

// RenderBuffers returns the render buffers, rebuilding only those whose
// source generation moved.
func (e *Engine) RenderBuffers() Buffers {
	b := Buffers{Shapes: e.render.Shapes(), Text: e.render.Text()}

	overlay := e.TransformPreview()
	if d, ok := e.DraftPreview(); ok {
		overlay = append(overlay[:len(overlay):len(overlay)], d)
	}
	if len(overlay) > 0 {
		b.Overlay = e.render.Overlay(e.session.Generation()+e.draft.gen, overlay)
	} else {
		e.render.ClearOverlay()
	}

	st := e.render.Stats()
	e.metrics.Rebuilt(st.ShapeRebuilds-e.stats.ShapeRebuilds, st.TextRebuilds-e.stats.TextRebuilds)
	e.stats = st
	return b
}
