package text

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/draft/cache"
	"github.com/gogpu/draft/entity"
)

// ErrFont is returned by New when a font cannot be parsed.
var ErrFont = errors.New("text: invalid font")

// Style selects one of the four faces of an Engine.
type Style uint8

const (
	Regular Style = iota
	Bold
	Italic
	BoldItalic
)

// StyleOf returns the face style requested by run flags.
func StyleOf(f entity.RunFlags) Style {
	var s Style
	if f&entity.RunBold != 0 {
		s |= Bold
	}
	if f&entity.RunItalic != 0 {
		s |= Italic
	}
	return s
}

// face is a parsed font with its vertical extents per em.
type face struct {
	face    *font.Face
	ascent  float64
	descent float64 // positive, below the baseline
	gap     float64
}

func parseFace(ttf []byte) (*face, error) {
	f, err := font.ParseTTF(bytes.NewReader(ttf))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFont, err)
	}
	upem := float64(f.Upem())
	if upem == 0 {
		return nil, fmt.Errorf("%w: zero units per em", ErrFont)
	}
	fc := &face{face: f, ascent: 0.8, descent: 0.2}
	if ext, ok := f.FontHExtents(); ok {
		fc.ascent = float64(ext.Ascender) / upem
		fc.descent = -float64(ext.Descender) / upem
		fc.gap = float64(ext.LineGap) / upem
	}
	return fc, nil
}

type options struct {
	fonts       [4][]byte
	lineSpacing float64
	shapeCache  int
}

// Option configures an Engine.
type Option func(*options)

// WithFont sets the font used for every style.
func WithFont(ttf []byte) Option {
	return func(o *options) {
		o.fonts = [4][]byte{ttf, ttf, ttf, ttf}
	}
}

// WithFace sets the font used for one style.
func WithFace(s Style, ttf []byte) Option {
	return func(o *options) {
		if s <= BoldItalic {
			o.fonts[s] = ttf
		}
	}
}

// WithLineSpacing scales the distance between baselines. Values <= 0 are
// ignored.
func WithLineSpacing(f float64) Option {
	return func(o *options) {
		if f > 0 {
			o.lineSpacing = f
		}
	}
}

// WithShapeCache sets how many shaped runs are kept for reuse across
// entities and edits. Values <= 0 select cache.DefaultCapacity.
func WithShapeCache(n int) Option {
	return func(o *options) {
		o.shapeCache = n
	}
}

// Engine shapes and lays out text entities. Layouts are cached per entity
// and reused while the entity payload is unchanged. An Engine is not safe
// for concurrent use.
type Engine struct {
	faces       [4]*face
	shaper      shaping.HarfbuzzShaper
	lineSpacing float64
	cache       map[entity.ID]cached
	shapes      *cache.LRU[pieceKey, []shaping.Glyph]
}

type cached struct {
	src    *entity.Text
	layout *Layout
}

// New returns an Engine. Without options it uses the Go font family.
func New(opts ...Option) (*Engine, error) {
	o := options{
		fonts:       [4][]byte{goregular.TTF, gobold.TTF, goitalic.TTF, gobolditalic.TTF},
		lineSpacing: 1,
	}
	for _, opt := range opts {
		opt(&o)
	}
	e := &Engine{
		lineSpacing: o.lineSpacing,
		cache:       make(map[entity.ID]cached),
		shapes:      cache.New[pieceKey, []shaping.Glyph](o.shapeCache, pieceKey.hash),
	}
	for i, ttf := range o.fonts {
		f, err := parseFace(ttf)
		if err != nil {
			return nil, err
		}
		e.faces[i] = f
	}
	return e, nil
}

// LayoutOf returns the layout of text entity id, reusing the cached layout
// when t is unchanged since the last call.
func (e *Engine) LayoutOf(id entity.ID, t *entity.Text) *Layout {
	if c, ok := e.cache[id]; ok && entity.ShapeEqual(c.src, t) {
		return c.layout
	}
	l := e.Layout(t)
	e.cache[id] = cached{src: t.Clone().(*entity.Text), layout: l}
	return l
}

// Forget drops the cached layout of id.
func (e *Engine) Forget(id entity.ID) { delete(e.cache, id) }

// Prune drops cached layouts of every id for which keep returns false.
func (e *Engine) Prune(keep func(entity.ID) bool) {
	for id := range e.cache {
		if !keep(id) {
			delete(e.cache, id)
		}
	}
}

// Cached returns the number of cached layouts.
func (e *Engine) Cached() int { return len(e.cache) }

// ShapeStats returns the counters of the shaped run cache.
func (e *Engine) ShapeStats() cache.Stats { return e.shapes.Stats() }
