package draft

import (
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/gogpu/draft/config"
	"github.com/gogpu/draft/entity"
	"github.com/gogpu/draft/geom"
	"github.com/gogpu/draft/history"
	"github.com/gogpu/draft/metrics"
	"github.com/gogpu/draft/pick"
	"github.com/gogpu/draft/protocol"
	"github.com/gogpu/draft/render"
	"github.com/gogpu/draft/store"
	"github.com/gogpu/draft/text"
	"github.com/gogpu/draft/transform"
)

// Engine owns one document and everything that edits or reads it.
type Engine struct {
	log     *slog.Logger
	cfg     config.Config
	metrics *metrics.Metrics

	store   *store.Store
	history *history.History
	session transform.Session
	text    *text.Engine
	render  *render.Builder
	picker  pick.Picker

	viewScale float64
	focus     textFocus
	draft     draftState
	stats     render.Stats

	// onApply, if set, runs before each decoded command is applied.
	onApply func(protocol.Command)
}

// New returns an engine with an empty document.
func New(opts ...Option) (*Engine, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}

	te := o.text
	if te == nil {
		topts := []text.Option{
			text.WithLineSpacing(o.cfg.Text.LineSpacing),
			text.WithShapeCache(o.cfg.Text.ShapeCache),
		}
		if o.cfg.Text.Font != "" {
			ttf, err := os.ReadFile(o.cfg.Text.Font)
			if err != nil {
				return nil, fmt.Errorf("reading font: %w", err)
			}
			topts = append(topts, text.WithFont(ttf))
		}
		var err error
		if te, err = text.New(topts...); err != nil {
			return nil, err
		}
	}

	e := &Engine{
		log:       o.logger,
		cfg:       o.cfg,
		metrics:   metrics.New(o.registerer, o.constLabels),
		store:     store.New(),
		history:   history.New(o.cfg.HistoryDepth),
		text:      te,
		viewScale: o.cfg.ViewScale,
	}
	res := resolver{e}
	e.render = render.New(e.store, res, te,
		render.WithTolerance(o.cfg.Render.Tolerance),
		render.WithNodeSize(o.cfg.Render.NodeSize))
	e.picker = pick.Picker{Store: e.store, Resolver: res, Text: res}
	return e, nil
}

// Config returns the configuration the engine was created with.
func (e *Engine) Config() config.Config { return e.cfg }

// Metrics returns the engine collectors.
func (e *Engine) Metrics() *metrics.Metrics { return e.metrics }

// Len returns the number of entities.
func (e *Engine) Len() int { return e.store.Len() }

// Get returns a copy of entity id.
func (e *Engine) Get(id entity.ID) (entity.Entity, bool) { return e.store.Get(id) }

// Kind returns the kind of entity id, or entity.KindInvalid.
func (e *Engine) Kind(id entity.ID) entity.Kind { return e.store.Kind(id) }

// DrawOrder returns the draw order, bottom first.
func (e *Engine) DrawOrder() []entity.ID { return e.store.Order() }

// Layers returns the layer table.
func (e *Engine) Layers() []store.Layer { return e.store.Layers() }

// Generation returns the store generation counters.
func (e *Engine) Generation() store.Generations { return e.store.Generation() }

// Document returns a copy of the whole document.
func (e *Engine) Document() store.Document { return e.store.Document() }

// ViewScale returns the screen pixels per world unit used by picking.
func (e *Engine) ViewScale() float64 { return e.viewScale }

// SetViewScale sets the view scale. Non-positive or non-finite values are
// ignored.
func (e *Engine) SetViewScale(s float64) {
	if s > 0 && !math.IsInf(s, 0) {
		e.viewScale = s
	}
}

// Bounds returns the world bounds of entity id.
func (e *Engine) Bounds(id entity.ID) (geom.Rect, bool) {
	ent, ok := e.store.Peek(id)
	if !ok {
		return geom.Rect{}, false
	}
	return entity.Bounds(ent, resolver{e})
}

// Extent returns the union of the bounds of every visible entity.
func (e *Engine) Extent() (geom.Rect, bool) {
	u := geom.EmptyRect()
	res := resolver{e}
	for _, id := range e.store.Order() {
		ent, ok := e.store.Peek(id)
		if !ok || !e.store.LayerOf(ent).Visible() {
			continue
		}
		if b, ok := entity.Bounds(ent, res); ok {
			u = u.Union(b)
		}
	}
	return u, !u.IsEmpty()
}

// Layout returns the text layout of entity id, or nil if it is not text.
func (e *Engine) Layout(id entity.ID) *text.Layout {
	return resolver{e}.layout(id)
}

// record runs fn inside a store recording and pushes the resulting patch.
// It reports whether anything changed.
func (e *Engine) record(fn func() error) (bool, error) {
	if err := e.store.BeginRecord(); err != nil {
		return false, err
	}
	err := fn()
	p, ok := e.store.EndRecord()
	if err != nil {
		if ok {
			e.store.Apply(p.Reverse)
		}
		return false, err
	}
	e.push(p, ok)
	return ok, nil
}

func (e *Engine) push(p store.Patch, ok bool) {
	if !ok {
		return
	}
	e.history.Push(p)
	e.metrics.Depth(e.history.Meta().Depth)
}

// resolver adapts the engine to entity.Resolver and pick.TextMetrics.
type resolver struct{ e *Engine }

func (r resolver) NodePosition(id entity.ID) (geom.Point, bool) {
	return r.e.store.NodePosition(id)
}

func (r resolver) TextSize(id entity.ID) (w, h float64, ok bool) {
	l := r.layout(id)
	if l == nil {
		return 0, 0, false
	}
	return l.Width, l.Height, true
}

func (r resolver) CaretAt(id entity.ID, x, y float64) (int, bool) {
	l := r.layout(id)
	if l == nil || len(l.Lines) == 0 {
		return 0, false
	}
	return l.CaretAt(x, y), true
}

func (r resolver) layout(id entity.ID) *text.Layout {
	ent, ok := r.e.store.Peek(id)
	if !ok {
		return nil
	}
	t, ok := ent.Shape.(*entity.Text)
	if !ok {
		return nil
	}
	return r.e.text.LayoutOf(id, t)
}
