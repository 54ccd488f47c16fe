package text

import (
	"math"
	"sort"

	"github.com/rivo/uniseg"

	"github.com/gogpu/draft/geom"
)

// Boundaries returns the extended grapheme cluster boundaries of s in
// ascending order, including 0 and len(s).
func Boundaries(s string) []int {
	b := []int{0}
	off := 0
	state := -1
	for len(s) > 0 {
		var c string
		c, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		off += len(c)
		b = append(b, off)
	}
	return b
}

// Snap returns the largest grapheme boundary of s not after off, with off
// clamped to [0, len(s)].
func Snap(s string, off int) int {
	return snap(Boundaries(s), off)
}

func snap(bounds []int, off int) int {
	i := sort.SearchInts(bounds, off+1) - 1
	return bounds[max(i, 0)]
}

// Next returns the grapheme boundary after off, or len(s).
func Next(s string, off int) int {
	b := Boundaries(s)
	i := sort.SearchInts(b, off+1)
	return b[min(i, len(b)-1)]
}

// Prev returns the grapheme boundary before off, or 0.
func Prev(s string, off int) int {
	b := Boundaries(s)
	i := sort.SearchInts(b, off) - 1
	return b[max(i, 0)]
}

// Snap returns the largest grapheme boundary of the laid-out content not
// after off.
func (l *Layout) Snap(off int) int { return snap(l.bounds, off) }

// lineOf returns the line holding the caret at off. An offset shared by the
// end of a wrapped line and the start of the next belongs to the next.
func (l *Layout) lineOf(off int) int {
	for i := len(l.Lines) - 1; i > 0; i-- {
		if off >= l.Lines[i].Start {
			return i
		}
	}
	return 0
}

// caretX returns the x position of a caret at off on line li.
func (l *Layout) caretX(li, off int) float64 {
	ln := l.Lines[li]
	gs := l.Glyphs[ln.First:ln.Last]
	for i := 0; i < len(gs); {
		g := gs[i]
		x0, adv := g.X, g.Advance
		j := i + 1
		for ; j < len(gs) && gs[j].Start == g.Start; j++ {
			x0 = math.Min(x0, gs[j].X)
			adv += gs[j].Advance
		}
		if off >= g.Start && off < g.End {
			frac := float64(off-g.Start) / float64(g.End-g.Start)
			if ln.Dir == RTL {
				return x0 + adv - frac*adv
			}
			return x0 + frac*adv
		}
		i = j
	}
	if len(gs) == 0 {
		return ln.X
	}
	if ln.Dir == RTL {
		x := math.Inf(1)
		for _, g := range gs {
			x = math.Min(x, g.X)
		}
		return x
	}
	x := math.Inf(-1)
	for _, g := range gs {
		x = math.Max(x, g.X+g.Advance)
	}
	return x
}

// CaretPosition returns the caret at off (snapped to a grapheme boundary)
// as an x position and the top and height of its line.
func (l *Layout) CaretPosition(off int) (x, top, height float64) {
	off = l.Snap(off)
	li := l.lineOf(off)
	ln := l.Lines[li]
	return l.caretX(li, off), ln.Top, ln.Height
}

// CaretAt returns the grapheme boundary nearest to the text-local point
// (x, y). Points above the first line or below the last clamp to it.
func (l *Layout) CaretAt(x, y float64) int {
	li := len(l.Lines) - 1
	for i, ln := range l.Lines {
		if y < ln.Top+ln.Height {
			li = i
			break
		}
	}
	ln := l.Lines[li]
	best, bestD := ln.Start, math.Inf(1)
	for _, b := range l.bounds {
		if b < ln.Start {
			continue
		}
		if b > ln.End {
			break
		}
		if d := math.Abs(l.caretX(li, b) - x); d < bestD {
			best, bestD = b, d
		}
	}
	return best
}

// SelectionRects returns one rectangle per line covering the byte range
// [start, end) in text-local coordinates (MinY is the line top).
func (l *Layout) SelectionRects(start, end int) []geom.Rect {
	start, end = l.Snap(min(start, end)), l.Snap(max(start, end))
	if start == end {
		return nil
	}
	var out []geom.Rect
	for li, ln := range l.Lines {
		a, b := max(start, ln.Start), min(end, ln.End)
		if a > b || (a == b && !(start <= ln.Start && end > ln.End)) {
			continue
		}
		x0, x1 := l.caretX(li, a), l.caretX(li, b)
		out = append(out, geom.Rect{MinX: math.Min(x0, x1), MinY: ln.Top, MaxX: math.Max(x0, x1), MaxY: ln.Top + ln.Height})
	}
	return out
}
