package entity

import "slices"

// BoxMode selects how a text box is sized.
type BoxMode uint8

const (
	// AutoWidth grows the box to fit the longest line.
	AutoWidth BoxMode = iota
	// FixedWidth wraps lines at BoxWidth.
	FixedWidth
)

// Align is the horizontal alignment of lines within the box.
type Align uint8

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// RunFlags are per-run typographic flags.
type RunFlags uint32

const (
	RunBold RunFlags = 1 << iota
	RunItalic
	RunUnderline
	RunStrike
)

// DefaultFontSize is used for runs created implicitly by editing.
const DefaultFontSize = 16

// TextRun styles the byte range [Start, Start+Length) of the content.
type TextRun struct {
	Start, Length uint32
	Font          uint32
	Size          float32
	Color         Color
	Flags         RunFlags
}

// End returns the exclusive end offset of the run.
func (r TextRun) End() uint32 { return r.Start + r.Length }

// Text is a block of styled UTF-8 text anchored at its top-left corner
// (X, Y) and rotated about that anchor.
type Text struct {
	X, Y     float32
	Rotation float32
	BoxMode  BoxMode
	Align    Align
	BoxWidth float32
	Runs     []TextRun
	Content  []byte
}

func (*Text) Kind() Kind { return KindText }

func (*Text) isShape() {}

func (s *Text) Clone() Shape {
	c := *s
	c.Runs = slices.Clone(s.Runs)
	c.Content = slices.Clone(s.Content)
	return &c
}

// String returns the content as a string.
func (s *Text) String() string { return string(s.Content) }

// Insert inserts data at byte offset at. The run that contains or ends at
// the offset grows; later runs shift. A text without runs gets a default run.
func (s *Text) Insert(at int, data []byte) {
	if len(data) == 0 {
		return
	}
	at = clampOffset(at, len(s.Content))
	n := uint32(len(data)) //nolint:gosec // bounded by content length checks upstream
	pos := uint32(at)      //nolint:gosec // clamped above

	out := make([]byte, 0, len(s.Content)+len(data))
	out = append(out, s.Content[:at]...)
	out = append(out, data...)
	out = append(out, s.Content[at:]...)
	s.Content = out

	if len(s.Runs) == 0 {
		s.Runs = []TextRun{{Start: 0, Length: n, Size: DefaultFontSize, Color: Black}}
		return
	}

	extended := false
	for i := range s.Runs {
		r := &s.Runs[i]
		switch {
		case !extended && pos >= r.Start && pos <= r.End():
			r.Length += n
			extended = true
		case r.Start >= pos:
			r.Start += n
		}
	}
	if !extended {
		// The offset falls in a gap between runs; attach to the nearest run before it.
		last := 0
		for i, r := range s.Runs {
			if r.End() <= pos {
				last = i
			}
		}
		s.Runs = append(s.Runs, TextRun{
			Start:  pos,
			Length: n,
			Font:   s.Runs[last].Font,
			Size:   s.Runs[last].Size,
			Color:  s.Runs[last].Color,
			Flags:  s.Runs[last].Flags,
		})
		slices.SortStableFunc(s.Runs, func(a, b TextRun) int { return int(a.Start) - int(b.Start) })
	}
}

// Delete removes the byte range [start, end). Runs are clipped and shifted;
// runs that become empty are dropped except for one, which keeps the styling
// for later typing.
func (s *Text) Delete(start, end int) {
	start = clampOffset(start, len(s.Content))
	end = clampOffset(end, len(s.Content))
	if end <= start {
		return
	}
	s.Content = append(s.Content[:start:start], s.Content[end:]...)

	st, en := uint32(start), uint32(end) //nolint:gosec // clamped above
	adjust := func(x uint32) uint32 {
		switch {
		case x <= st:
			return x
		case x < en:
			return st
		default:
			return x - (en - st)
		}
	}

	kept := s.Runs[:0]
	var keeper *TextRun
	for _, r := range s.Runs {
		ns, ne := adjust(r.Start), adjust(r.End())
		r.Start, r.Length = ns, ne-ns
		if r.Length == 0 {
			if keeper == nil {
				rc := r
				keeper = &rc
			}
			continue
		}
		kept = append(kept, r)
	}
	if len(kept) == 0 && keeper != nil {
		kept = append(kept, *keeper)
	}
	s.Runs = kept
}

func clampOffset(v, n int) int {
	if v < 0 {
		return 0
	}
	if v > n {
		return n
	}
	return v
}
