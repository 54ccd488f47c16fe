package draft

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/gogpu/draft/entity"
	"github.com/gogpu/draft/geom"
	"github.com/gogpu/draft/store"
	"github.com/gogpu/draft/text"
)

// ErrInvalidText is returned when inserted data is not valid UTF-8.
var ErrInvalidText = errors.New("draft: text is not valid UTF-8")

// textFocus is the caret and selection of the text entity being edited.
// Offsets are byte offsets on grapheme cluster boundaries.
type textFocus struct {
	id         entity.ID
	caret      int
	start, end int
}

// Caret describes the text caret and selection.
type Caret struct {
	ID     entity.ID
	Offset int
	// Start, End is the selected byte range; equal when nothing is selected.
	Start, End int
	// Top is the world position of the top of the caret; Height is the
	// line height.
	Top    geom.Point
	Height float64
}

func (e *Engine) textOf(id entity.ID) (*entity.Text, error) {
	ent, ok := e.store.Peek(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", store.ErrNotFound, id)
	}
	t, ok := ent.Shape.(*entity.Text)
	if !ok {
		return nil, fmt.Errorf("%w: %d is %s", ErrNotText, id, ent.Kind())
	}
	return t, nil
}

// SetTextCaret places the caret of text entity id at the grapheme boundary
// at or before off and collapses the selection.
func (e *Engine) SetTextCaret(id entity.ID, off int) error {
	t, err := e.textOf(id)
	if err != nil {
		return err
	}
	off = text.Snap(t.String(), off)
	e.focus = textFocus{id: id, caret: off, start: off, end: off}
	return nil
}

// SetTextSelection selects the byte range between start and end of text
// entity id. The caret goes to end.
func (e *Engine) SetTextSelection(id entity.ID, start, end int) error {
	t, err := e.textOf(id)
	if err != nil {
		return err
	}
	s := t.String()
	start, end = text.Snap(s, start), text.Snap(s, end)
	e.focus = textFocus{id: id, caret: end, start: min(start, end), end: max(start, end)}
	return nil
}

// InsertText inserts UTF-8 data at the grapheme boundary at or before at.
// The change is one undo entry. A focused caret moves past the insertion.
func (e *Engine) InsertText(id entity.ID, at int, data []byte) error {
	_, err := e.record(func() error { return e.insertText(id, at, data) })
	return err
}

func (e *Engine) insertText(id entity.ID, at int, data []byte) error {
	t, err := e.textOf(id)
	if err != nil {
		return err
	}
	if !utf8.Valid(data) {
		return ErrInvalidText
	}
	if len(data) == 0 {
		return nil
	}
	at = text.Snap(t.String(), at)
	if err := e.store.Update(id, func(sh entity.Shape) {
		sh.(*entity.Text).Insert(at, data)
	}); err != nil {
		return err
	}
	if e.focus.id == id {
		off := at + len(data)
		e.focus = textFocus{id: id, caret: off, start: off, end: off}
	}
	return nil
}

// DeleteText removes the grapheme clusters in [start, end) of text entity
// id. Both ends snap to the boundary at or before them. The change is one
// undo entry.
func (e *Engine) DeleteText(id entity.ID, start, end int) error {
	_, err := e.record(func() error { return e.deleteText(id, start, end) })
	return err
}

func (e *Engine) deleteText(id entity.ID, start, end int) error {
	t, err := e.textOf(id)
	if err != nil {
		return err
	}
	s := t.String()
	start, end = text.Snap(s, min(start, end)), text.Snap(s, max(start, end))
	if start == end {
		return nil
	}
	if err := e.store.Update(id, func(sh entity.Shape) {
		sh.(*entity.Text).Delete(start, end)
	}); err != nil {
		return err
	}
	if e.focus.id == id {
		e.focus = textFocus{id: id, caret: start, start: start, end: start}
	}
	return nil
}

// Backspace deletes the selection of the focused text, or the grapheme
// cluster before the caret.
func (e *Engine) Backspace() error {
	f := e.focus
	if f.id == entity.None {
		return fmt.Errorf("%w: no focused text", store.ErrNotFound)
	}
	t, err := e.textOf(f.id)
	if err != nil {
		return err
	}
	start, end := f.start, f.end
	if start == end {
		end = min(f.caret, len(t.Content))
		start = text.Prev(t.String(), end)
	}
	return e.DeleteText(f.id, start, end)
}

// TypeText replaces the selection of the focused text with data, or inserts
// it at the caret. The change is one undo entry.
func (e *Engine) TypeText(data []byte) error {
	f := e.focus
	if f.id == entity.None {
		return fmt.Errorf("%w: no focused text", store.ErrNotFound)
	}
	_, err := e.record(func() error {
		if f.start != f.end {
			if err := e.deleteText(f.id, f.start, f.end); err != nil {
				return err
			}
		}
		return e.insertText(f.id, e.focus.caret, data)
	})
	return err
}

// Caret returns the caret of the focused text entity.
func (e *Engine) Caret() (Caret, bool) {
	f := e.focus
	t, err := e.textOf(f.id)
	if err != nil {
		return Caret{}, false
	}
	l := e.text.LayoutOf(f.id, t)
	c := Caret{ID: f.id, Offset: l.Snap(f.caret), Start: l.Snap(f.start), End: l.Snap(f.end)}
	if len(l.Lines) > 0 {
		x, top, h := l.CaretPosition(c.Offset)
		c.Top = textToWorld(t, x, top)
		c.Height = h
	}
	return c, true
}

// SelectionRects returns the selected ranges of the focused text as
// rectangles in the text's own frame: origin at the anchor, y downward.
func (e *Engine) SelectionRects() []geom.Rect {
	f := e.focus
	t, err := e.textOf(f.id)
	if err != nil || f.start == f.end {
		return nil
	}
	return e.text.LayoutOf(f.id, t).SelectionRects(f.start, f.end)
}

// textToWorld maps a point of the text frame (y downward from the anchor)
// to world coordinates.
func textToWorld(t *entity.Text, x, y float64) geom.Point {
	return geom.Pt32(t.X, t.Y).Add(geom.Pt(x, -y).Rotate(float64(t.Rotation)))
}
