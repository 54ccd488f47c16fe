package draft

import (
	"github.com/gogpu/draft/entity"
	"github.com/gogpu/draft/history"
	"github.com/gogpu/draft/snapshot"
	"github.com/gogpu/draft/store"
	"github.com/gogpu/draft/transform"
)

// BringToFront moves ids to the top of the draw order, keeping their
// relative order. Unknown ids are ignored. It reports whether the order
// changed; a change is one undo entry.
func (e *Engine) BringToFront(ids ...entity.ID) bool {
	return e.reorderCall(func() bool { return e.store.BringToFront(ids) })
}

// SendToBack moves ids to the bottom of the draw order.
func (e *Engine) SendToBack(ids ...entity.ID) bool {
	return e.reorderCall(func() bool { return e.store.SendToBack(ids) })
}

// BringForward moves each of ids one step up, over the next entity not
// being moved.
func (e *Engine) BringForward(ids ...entity.ID) bool {
	return e.reorderCall(func() bool { return e.store.BringForward(ids) })
}

// SendBackward moves each of ids one step down.
func (e *Engine) SendBackward(ids ...entity.ID) bool {
	return e.reorderCall(func() bool { return e.store.SendBackward(ids) })
}

// SetDrawOrder replaces the draw order. Listed ids come first in the given
// order; stored ids not listed keep their relative order after them.
func (e *Engine) SetDrawOrder(ids ...entity.ID) bool {
	return e.reorderCall(func() bool { return e.store.SetOrder(ids) })
}

func (e *Engine) reorderCall(fn func() bool) bool {
	changed, _ := e.record(func() error {
		fn()
		return nil
	})
	return changed
}

// SetSelection updates the selection. Unknown ids are ignored. Selection is
// view state and never recorded for undo.
func (e *Engine) SetSelection(mode store.SelectMode, ids ...entity.ID) bool {
	return e.store.Select(mode, ids)
}

// ClearSelection empties the selection.
func (e *Engine) ClearSelection() bool { return e.store.ClearSelection() }

// Selection returns the selected ids in selection order.
func (e *Engine) Selection() []entity.ID { return e.store.Selection().IDs() }

// Selected reports whether id is selected.
func (e *Engine) Selected(id entity.ID) bool { return e.store.Selected(id) }

// CanUndo reports whether an undo entry is available.
func (e *Engine) CanUndo() bool { return e.history.CanUndo() }

// CanRedo reports whether a redo entry is available.
func (e *Engine) CanRedo() bool { return e.history.CanRedo() }

// HistoryMeta describes the undo history.
func (e *Engine) HistoryMeta() history.Meta { return e.history.Meta() }

// Undo reverts the newest applied entry. It fails while a transform session
// is active and reports false when there is nothing to undo.
func (e *Engine) Undo() (bool, error) {
	if e.session.Active() {
		return false, transform.ErrSessionActive
	}
	if !e.history.Undo(e.store) {
		return false, nil
	}
	e.metrics.Undo()
	e.text.Prune(e.store.Has)
	return true, nil
}

// Redo reapplies the next undone entry.
func (e *Engine) Redo() (bool, error) {
	if e.session.Active() {
		return false, transform.ErrSessionActive
	}
	if !e.history.Redo(e.store) {
		return false, nil
	}
	e.metrics.Redo()
	e.text.Prune(e.store.Has)
	return true, nil
}

// Save serializes the document. The result is owned by the caller.
func (e *Engine) Save() []byte {
	b := snapshot.Save(e.store)
	e.metrics.Saved(len(b))
	return b
}

// Load replaces the document with a snapshot. A snapshot that fails any
// check leaves the document, selection and history untouched. On success
// the history is cleared and any session or draft is cancelled.
func (e *Engine) Load(buf []byte) error {
	if err := snapshot.Load(e.store, buf); err != nil {
		e.log.Warn("rejected snapshot", "bytes", len(buf), "err", err)
		e.metrics.Rejected(StatusOf(err).String())
		return err
	}
	e.history.Clear()
	e.metrics.Depth(0)
	if e.session.Active() {
		_ = e.session.Cancel()
	}
	e.draft = draftState{gen: e.draft.gen + 1}
	e.focus = textFocus{}
	e.text.Prune(e.store.Has)
	e.log.Info("loaded snapshot", "entities", e.store.Len(), "generation", e.store.Generation().Content)
	return nil
}
