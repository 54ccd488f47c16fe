package text

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"unicode"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"github.com/rivo/uniseg"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/bidi"

	"github.com/gogpu/draft/cache"
	"github.com/gogpu/draft/entity"
)

// Direction is the base direction of a paragraph.
type Direction uint8

const (
	LTR Direction = iota
	RTL
)

// Glyph is one shaped glyph.
type Glyph struct {
	ID uint16
	// X, Y is the pen position on the baseline. OffX, OffY is the shaper's
	// placement adjustment on top of it.
	X, Y       float64
	OffX, OffY float64
	Advance    float64
	Size       float64
	// Start, End is the byte range of the cluster the glyph belongs to.
	Start, End int
	// Run indexes Text.Runs; -1 for bytes no run covers.
	Run   int
	Color entity.Color
	Flags entity.RunFlags
}

// Line is one laid-out line.
type Line struct {
	Start, End  int // byte range, without a terminating newline
	X           float64
	Top         float64
	Baseline    float64
	Height      float64
	Width       float64 // without trailing white space
	First, Last int     // glyph range [First, Last)
	Dir         Direction
}

// Layout is the laid-out form of a text entity.
type Layout struct {
	Width, Height float64
	Lines         []Line
	Glyphs        []Glyph

	content string
	bounds  []int
}

// Content returns the text that was laid out.
func (l *Layout) Content() string { return l.content }

// span is a byte range styled by one run.
type span struct {
	start, end int
	run        int
	size       float64
	color      entity.Color
	flags      entity.RunFlags
}

// shaped is a glyph with the vertical metrics of its face.
type shaped struct {
	g                    Glyph
	ascent, descent, gap float64
}

// Layout shapes and lays out t without caching.
func (e *Engine) Layout(t *entity.Text) *Layout {
	content := string(t.Content)
	l := &Layout{content: content, bounds: Boundaries(content)}
	spans := spansOf(t)
	fixedWidth := t.BoxMode == entity.FixedWidth
	boxW := float64(max(t.BoxWidth, 0))

	top := 0.0
	pos := 0
	for {
		end := len(content)
		nl := strings.IndexByte(content[pos:], '\n')
		if nl >= 0 {
			end = pos + nl
		}
		top = e.paragraph(l, t, spans, pos, end, top, fixedWidth, boxW)
		if nl < 0 {
			break
		}
		pos = end + 1
	}
	l.Height = top

	if fixedWidth {
		l.Width = boxW
	} else {
		for _, ln := range l.Lines {
			l.Width = max(l.Width, ln.Width)
		}
	}
	for i := range l.Lines {
		ln := &l.Lines[i]
		ln.X = alignOffset(t.Align, ln.Dir, l.Width-ln.Width)
		for j := ln.First; j < ln.Last; j++ {
			l.Glyphs[j].X += ln.X
		}
	}
	return l
}

func alignOffset(a entity.Align, dir Direction, slack float64) float64 {
	if dir == RTL {
		switch a {
		case entity.AlignLeft:
			a = entity.AlignRight
		case entity.AlignRight:
			a = entity.AlignLeft
		}
	}
	switch a {
	case entity.AlignCenter:
		return slack / 2
	case entity.AlignRight:
		return slack
	default:
		return 0
	}
}

// paragraph lays out content[start:end] starting at top and returns the
// top of the next line.
func (e *Engine) paragraph(l *Layout, t *entity.Text, spans []span, start, end int, top float64, fixedWidth bool, boxW float64) float64 {
	content := l.content
	dir := direction(content[start:end])
	glyphs := e.shapeRange(content, spans, start, end, dir)

	width := func(from, to int) float64 {
		w := 0.0
		for _, s := range glyphs {
			if s.g.Start >= from && s.g.Start < to {
				w += s.g.Advance
			}
		}
		return w
	}

	ls := start
	lineW := 0.0
	segStart := start
	state := -1
	rest := content[start:end]
	for len(rest) > 0 {
		var seg string
		seg, rest, _, state = uniseg.FirstLineSegmentInString(rest, state)
		segEnd := segStart + len(seg)
		if fixedWidth && lineW > 0 {
			trimmed := segStart + len(strings.TrimRightFunc(seg, unicode.IsSpace))
			if lineW+width(segStart, trimmed) > boxW {
				top = e.emitLine(l, t, spans, glyphs, ls, segStart, top, dir)
				ls, lineW = segStart, 0
			}
		}
		lineW += width(segStart, segEnd)
		segStart = segEnd
	}
	return e.emitLine(l, t, spans, glyphs, ls, end, top, dir)
}

// emitLine appends the line content[start:end] with its glyphs at top and
// returns the top of the next line.
func (e *Engine) emitLine(l *Layout, t *entity.Text, spans []span, glyphs []shaped, start, end int, top float64, dir Direction) float64 {
	ln := Line{Start: start, End: end, Top: top, Dir: dir, First: len(l.Glyphs)}
	trimmedEnd := start + len(strings.TrimRightFunc(l.content[start:end], unicode.IsSpace))

	var ascent, descent, gap float64
	x := 0.0
	for _, s := range glyphs {
		if s.g.Start < start || s.g.Start >= end {
			continue
		}
		g := s.g
		g.X = x
		x += g.Advance
		if g.Start < trimmedEnd {
			ln.Width = x
		}
		ascent = max(ascent, s.ascent)
		descent = max(descent, s.descent)
		gap = max(gap, s.gap)
		l.Glyphs = append(l.Glyphs, g)
	}
	ln.Last = len(l.Glyphs)
	if ln.Last == ln.First {
		sp := styleAt(t, spans, start)
		fc := e.faces[StyleOf(sp.flags)]
		ascent, descent, gap = fc.ascent*sp.size, fc.descent*sp.size, fc.gap*sp.size
	}
	if dir == RTL {
		for i := ln.First; i < ln.Last; i++ {
			g := &l.Glyphs[i]
			g.X = x - g.X - g.Advance
		}
	}

	ln.Baseline = top + ascent
	ln.Height = (ascent + descent + gap) * e.lineSpacing
	for i := ln.First; i < ln.Last; i++ {
		l.Glyphs[i].Y = ln.Baseline
	}
	l.Lines = append(l.Lines, ln)
	return top + ln.Height
}

// pieceKey identifies a shaped run. The faces of an Engine never change, so
// the style picks the face.
type pieceKey struct {
	text  string
	style Style
	size  float64
	rtl   bool
}

func (k pieceKey) hash() uint64 {
	h := cache.String(k.text) ^ math.Float64bits(k.size)*0x9e3779b97f4a7c15
	if k.rtl {
		h = ^h
	}
	return h + uint64(k.style)
}

// shapeRange shapes content[start:end] span by span. Glyphs come back in
// logical order.
func (e *Engine) shapeRange(content string, spans []span, start, end int, dir Direction) []shaped {
	var out []shaped
	for _, sp := range spans {
		a, b := max(sp.start, start), min(sp.end, end)
		if a < b {
			out = e.shapePiece(out, content, a, b, sp, dir)
		}
	}
	return out
}

func (e *Engine) shapePiece(out []shaped, content string, a, b int, sp span, dir Direction) []shaped {
	piece := content[a:b]
	runes := make([]rune, 0, len(piece))
	offs := make([]int, 0, len(piece)+1)
	for i, r := range piece {
		runes = append(runes, r)
		offs = append(offs, a+i)
	}
	offs = append(offs, b)

	fc := e.faces[StyleOf(sp.flags)]
	d := di.DirectionLTR
	if dir == RTL {
		d = di.DirectionRTL
	}
	key := pieceKey{text: piece, style: StyleOf(sp.flags), size: sp.size, rtl: dir == RTL}
	glyphs := e.shapes.GetOrCreate(key, func() []shaping.Glyph {
		return e.shaper.Shape(shaping.Input{
			Text:      runes,
			RunStart:  0,
			RunEnd:    len(runes),
			Direction: d,
			Face:      fc.face,
			Size:      fixed.Int26_6(sp.size * 64),
			Script:    detectScript(runes),
			Language:  language.NewLanguage("en"),
		}).Glyphs
	})
	if dir == RTL {
		glyphs = slices.Clone(glyphs)
		slices.SortStableFunc(glyphs, func(x, y shaping.Glyph) int { return cmp.Compare(x.ClusterIndex, y.ClusterIndex) })
	}

	first := len(out)
	for _, g := range glyphs {
		ci := min(max(g.ClusterIndex, 0), len(runes))
		out = append(out, shaped{
			g: Glyph{
				ID:      uint16(g.GlyphID), //nolint:gosec // go-text glyph ids fit in 16 bits
				OffX:    fixedToFloat(g.XOffset),
				OffY:    -fixedToFloat(g.YOffset),
				Advance: fixedToFloat(g.Advance),
				Size:    sp.size,
				Start:   offs[ci],
				Run:     sp.run,
				Color:   sp.color,
				Flags:   sp.flags,
			},
			ascent:  fc.ascent * sp.size,
			descent: fc.descent * sp.size,
			gap:     fc.gap * sp.size,
		})
	}
	next := b
	for i := len(out) - 1; i >= first; i-- {
		if i < len(out)-1 && out[i].g.Start < out[i+1].g.Start {
			next = out[i+1].g.Start
		}
		out[i].g.End = next
	}
	return out
}

// spansOf covers the whole content with styled spans. Where runs overlap the
// earlier-starting run wins; bytes outside every run get the default style.
func spansOf(t *entity.Text) []span {
	n := len(t.Content)
	idx := make([]int, len(t.Runs))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int { return cmp.Compare(t.Runs[a].Start, t.Runs[b].Start) })

	var out []span
	pos := 0
	for _, i := range idx {
		r := t.Runs[i]
		s, e := max(int(r.Start), pos), min(int(r.End()), n)
		if e <= s {
			continue
		}
		if s > pos {
			out = append(out, defaultSpan(pos, s))
		}
		out = append(out, runSpan(s, e, i, r))
		pos = e
	}
	if pos < n {
		out = append(out, defaultSpan(pos, n))
	}
	return out
}

func defaultSpan(start, end int) span {
	return span{start: start, end: end, run: -1, size: entity.DefaultFontSize, color: entity.Black}
}

func runSpan(start, end, i int, r entity.TextRun) span {
	size := float64(r.Size)
	if size <= 0 {
		size = entity.DefaultFontSize
	}
	return span{start: start, end: end, run: i, size: size, color: r.Color, flags: r.Flags}
}

// styleAt returns the style of an empty line at off: the span ending there,
// else the run that would absorb typing at off, else the default.
func styleAt(t *entity.Text, spans []span, off int) span {
	for _, sp := range spans {
		if sp.start <= off && off <= sp.end {
			return sp
		}
	}
	for i, r := range t.Runs {
		if int(r.Start) <= off && off <= int(r.End()) {
			return runSpan(off, off, i, r)
		}
	}
	if n := len(t.Runs); n > 0 {
		return runSpan(off, off, n-1, t.Runs[n-1])
	}
	return defaultSpan(off, off)
}

// direction returns the direction of the first strong character.
func direction(s string) Direction {
	for _, r := range s {
		p, _ := bidi.LookupRune(r)
		switch p.Class() {
		case bidi.L:
			return LTR
		case bidi.R, bidi.AL:
			return RTL
		}
	}
	return LTR
}

// detectScript returns the script of the first non-space rune.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if unicode.IsSpace(r) {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
