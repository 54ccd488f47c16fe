package render

import (
	"strings"
	"unicode"

	"github.com/gogpu/draft/entity"
	"github.com/gogpu/draft/geom"
	"github.com/gogpu/draft/store"
	"github.com/gogpu/draft/text"
)

// Layouts lays out text entities. *text.Engine implements it.
type Layouts interface {
	LayoutOf(id entity.ID, t *entity.Text) *text.Layout
}

// Buffer is a built vertex buffer.
type Buffer struct {
	Data       []float32
	Generation uint64 // store generation the buffer was built from
	Vertices   int
}

// GlyphRef identifies the glyph drawn by one text quad.
type GlyphRef struct {
	Entity entity.ID
	Glyph  uint16
	Size   float32
	Style  text.Style
	Solid  bool
}

// TextBuffer is the text vertex buffer plus one GlyphRef per quad (every
// six vertices).
type TextBuffer struct {
	Buffer
	Quads []GlyphRef
}

// Stats counts rebuilds since New.
type Stats struct {
	ShapeRebuilds int
	TextRebuilds  int
}

type options struct {
	tolerance   float64
	minSegments int
	maxSegments int
	nodeSize    float64
}

// Option configures a Builder.
type Option func(*options)

// WithTolerance sets the maximum chord error, in world units, used when
// flattening circles.
func WithTolerance(tol float64) Option {
	return func(o *options) {
		if tol > 0 {
			o.tolerance = tol
		}
	}
}

// WithNodeSize sets the side of the square drawn for routing nodes.
func WithNodeSize(size float64) Option {
	return func(o *options) {
		if size >= 0 {
			o.nodeSize = size
		}
	}
}

// Builder builds render buffers from a store.
type Builder struct {
	st      *store.Store
	res     entity.Resolver
	layouts Layouts
	opts    options

	shapes     Buffer
	shapesOK   bool
	texts      TextBuffer
	textOK     bool
	overlay    Buffer
	overlayKey uint64
	overlayOK  bool
	stats      Stats
}

// New returns a Builder over st. res resolves conduit endpoints and layouts
// lays out text; a nil layouts leaves the text buffer empty.
func New(st *store.Store, res entity.Resolver, layouts Layouts, opts ...Option) *Builder {
	o := options{tolerance: 0.25, minSegments: 12, maxSegments: 256, nodeSize: 4}
	for _, opt := range opts {
		opt(&o)
	}
	return &Builder{st: st, res: res, layouts: layouts, opts: o}
}

// Stats returns rebuild counters.
func (b *Builder) Stats() Stats { return b.stats }

// Invalidate forces the next read of each buffer to rebuild.
func (b *Builder) Invalidate() {
	b.shapesOK, b.textOK, b.overlayOK = false, false, false
}

// Shapes returns the shape buffer, rebuilding it if the store's shape
// generation moved.
func (b *Builder) Shapes() *Buffer {
	gen := b.st.Generation().Shapes
	if b.shapesOK && b.shapes.Generation == gen {
		return &b.shapes
	}
	m := mesh{data: b.shapes.Data[:0]}
	b.eachVisible(func(e entity.Entity) {
		b.emit(&m, e)
	})
	b.shapes = Buffer{Data: m.data, Generation: gen, Vertices: len(m.data) / ShapeStride}
	b.shapesOK = true
	b.stats.ShapeRebuilds++
	return &b.shapes
}

// Text returns the text buffer, rebuilding it if the store's text
// generation moved.
func (b *Builder) Text() *TextBuffer {
	gen := b.st.Generation().Text
	if b.textOK && b.texts.Generation == gen {
		return &b.texts
	}
	tm := textMesh{data: b.texts.Data[:0], quads: b.texts.Quads[:0]}
	if b.layouts != nil {
		b.eachVisible(func(e entity.Entity) {
			if t, ok := e.Shape.(*entity.Text); ok {
				tm.entity(e.ID, t, b.layouts.LayoutOf(e.ID, t))
			}
		})
	}
	b.texts = TextBuffer{
		Buffer: Buffer{Data: tm.data, Generation: gen, Vertices: len(tm.data) / TextStride},
		Quads:  tm.quads,
	}
	b.textOK = true
	b.stats.TextRebuilds++
	return &b.texts
}

// Overlay tessellates transient entities (session or draft previews) into
// the overlay buffer. The buffer is rebuilt only when key differs from the
// previous call.
func (b *Builder) Overlay(key uint64, ents []entity.Entity) *Buffer {
	if b.overlayOK && b.overlayKey == key {
		return &b.overlay
	}
	m := mesh{data: b.overlay.Data[:0]}
	for _, e := range ents {
		b.emit(&m, e)
	}
	b.overlay = Buffer{Data: m.data, Generation: key, Vertices: len(m.data) / ShapeStride}
	b.overlayKey, b.overlayOK = key, true
	return &b.overlay
}

// ClearOverlay empties the overlay buffer.
func (b *Builder) ClearOverlay() {
	b.overlay = Buffer{Data: b.overlay.Data[:0]}
	b.overlayOK = false
}

func (b *Builder) eachVisible(fn func(entity.Entity)) {
	b.st.Each(func(e entity.Entity) bool {
		if b.st.LayerOf(e).Visible() {
			fn(e)
		}
		return true
	})
}

// emit appends the triangles of one entity.
func (b *Builder) emit(m *mesh, e entity.Entity) {
	st, _ := entity.StyleOf(e.Shape)
	width := float64(st.StrokeWidth)
	switch s := e.Shape.(type) {
	case *entity.Rect, *entity.Symbol:
		box, _ := entity.BoxOf(e, b.res)
		c := box.Corners()
		m.fillStroke(c[:], st)
	case *entity.Circle:
		box, _ := entity.BoxOf(e, b.res)
		n := segmentsFor(max(box.HalfW, box.HalfH), b.opts.tolerance, b.opts.minSegments, b.opts.maxSegments)
		m.fillStroke(ellipse(box, n), st)
	case *entity.Polygon:
		m.fillStroke(entity.PolygonVertices(s), st)
	case *entity.Line, *entity.Polyline, *entity.Conduit:
		if pts, ok := entity.Points(e, b.res); ok && st.Stroked() {
			m.stroke(pts, false, width, colorOf(st.Stroke))
		}
	case *entity.Arrow:
		if !st.Stroked() {
			return
		}
		col := colorOf(st.Stroke)
		head := entity.ArrowHead(s)
		tail := geom.Pt32(s.X0, s.Y0)
		// The shaft stops at the head base so the tip stays sharp.
		base := head[1].Lerp(head[2], 0.5)
		m.stroke([]geom.Point{tail, base}, false, width, col)
		m.tri(head[0], head[1], head[2], col)
	case *entity.Node:
		h := b.opts.nodeSize / 2
		if h == 0 {
			return
		}
		p := geom.Pt32(s.X, s.Y)
		m.quad(p.Add(geom.Pt(-h, -h)), p.Add(geom.Pt(h, -h)), p.Add(geom.Pt(h, h)), p.Add(geom.Pt(-h, h)), colorOf(entity.Black))
	case *entity.Text:
		// Drawn into the text buffer.
	}
}

// textMesh accumulates text quads.
type textMesh struct {
	data  []float32
	quads []GlyphRef
}

func (tm *textMesh) vertex(p geom.Point, u, v float32, c rgba) {
	x, y := p.F32()
	tm.data = append(tm.data, x, y, u, v, c[0], c[1], c[2], c[3])
}

// quad appends a text-local rectangle [x0, x1] x [y0, y1] (y down) mapped
// into world space by toWorld.
func (tm *textMesh) quad(toWorld func(x, y float64) geom.Point, x0, y0, x1, y1 float64, uv bool, c rgba, ref GlyphRef) {
	u0, v0, u1, v1 := float32(0), float32(0), float32(1), float32(1)
	if !uv {
		u0, v0, u1, v1 = -1, -1, -1, -1
	}
	a, b := toWorld(x0, y0), toWorld(x1, y0)
	cc, d := toWorld(x1, y1), toWorld(x0, y1)
	tm.vertex(a, u0, v0, c)
	tm.vertex(b, u1, v0, c)
	tm.vertex(cc, u1, v1, c)
	tm.vertex(a, u0, v0, c)
	tm.vertex(cc, u1, v1, c)
	tm.vertex(d, u0, v1, c)
	tm.quads = append(tm.quads, ref)
}

// entity appends the glyph and decoration quads of one text entity.
func (tm *textMesh) entity(id entity.ID, t *entity.Text, l *text.Layout) {
	anchor := geom.Pt32(t.X, t.Y)
	angle := float64(t.Rotation)
	toWorld := func(x, y float64) geom.Point {
		return geom.Pt(x, -y).Rotate(angle).Add(anchor)
	}
	content := l.Content()
	for _, g := range l.Glyphs {
		col := colorOf(g.Color)
		ref := GlyphRef{Entity: id, Glyph: g.ID, Size: float32(g.Size), Style: text.StyleOf(g.Flags)}
		x0 := g.X + g.OffX
		if !blank(content[g.Start:g.End]) {
			tm.quad(toWorld, x0, g.Y+g.OffY-g.Size, x0+g.Advance, g.Y+g.OffY+g.Size/4, true, col, ref)
		}
		thick := max(g.Size/16, 0.5)
		ref.Solid = true
		if g.Flags&entity.RunUnderline != 0 {
			y := g.Y + g.Size/8
			tm.quad(toWorld, g.X, y, g.X+g.Advance, y+thick, false, col, ref)
		}
		if g.Flags&entity.RunStrike != 0 {
			y := g.Y - g.Size/4
			tm.quad(toWorld, g.X, y, g.X+g.Advance, y+thick, false, col, ref)
		}
	}
}

func blank(s string) bool {
	return strings.TrimFunc(s, unicode.IsSpace) == ""
}
