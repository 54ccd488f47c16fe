package draft

import (
	"fmt"
	"slices"

	"github.com/gogpu/draft/entity"
	"github.com/gogpu/draft/geom"
	"github.com/gogpu/draft/protocol"
	"github.com/gogpu/draft/store"
)

// Result summarizes an applied command buffer.
type Result struct {
	// Applied counts commands that were carried out.
	Applied int
	// Ignored counts well-formed commands that were no-ops: missing ids,
	// kind mismatches, draft state errors.
	Ignored int
	// Skipped lists records with unknown op codes.
	Skipped []protocol.Skipped
	// Changed reports whether the buffer produced an undo entry.
	Changed bool
}

// ApplyCommands decodes buf and applies its commands in order. A malformed
// buffer is rejected as a whole with a *protocol.Error and the document is
// not touched. Unknown op codes are skipped. All document changes of one
// buffer form a single undo entry.
func (e *Engine) ApplyCommands(buf []byte) (res Result, err error) {
	batch, err := protocol.Decode(buf)
	if err != nil {
		e.log.Warn("rejected command buffer", "bytes", len(buf), "err", err)
		e.metrics.Rejected(StatusOf(err).String())
		return Result{}, err
	}
	for _, s := range batch.Skipped {
		e.log.Debug("skipped unknown op", "index", s.Index, "op", uint32(s.Op), "offset", s.Offset, "length", s.Length)
	}
	res.Skipped = batch.Skipped

	if err := e.store.BeginRecord(); err != nil {
		return Result{}, err
	}
	draft, focus := e.draft, e.focus
	draft.points = slices.Clone(draft.points)
	defer func() {
		if r := recover(); r != nil {
			if p, ok := e.store.EndRecord(); ok {
				e.store.Apply(p.Reverse)
			}
			draft.gen = e.draft.gen + 1
			e.draft, e.focus = draft, focus
			e.log.Warn("recovered panic while applying commands", "panic", r)
			e.metrics.Rejected(StatusInternal.String())
			res, err = Result{}, fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()

	for i, c := range batch.Commands {
		if e.onApply != nil {
			e.onApply(c)
		}
		if err := e.apply(c); err != nil {
			res.Ignored++
			e.log.Debug("command ignored", "index", i, "op", c.Op, "id", c.Target, "err", err)
			continue
		}
		res.Applied++
	}
	p, ok := e.store.EndRecord()
	e.push(p, ok)
	res.Changed = ok
	e.text.Prune(e.store.Has)
	e.metrics.Applied(res.Applied, len(res.Skipped))
	return res, nil
}

// apply carries out one decoded command inside the open recording.
func (e *Engine) apply(c protocol.Command) error {
	id := c.ID()
	switch c.Op {
	case protocol.OpClearAll:
		e.store.Clear()
		e.focus = textFocus{}
		return nil
	case protocol.OpDeleteEntity:
		if !e.store.Delete(id) {
			return fmt.Errorf("%w: %d", store.ErrNotFound, id)
		}
		return nil
	case protocol.OpDeleteText:
		if _, err := e.textOf(id); err != nil {
			return err
		}
		e.store.Delete(id)
		return nil
	case protocol.OpSetDrawOrder:
		e.store.SetOrder(c.Payload.(*protocol.DrawOrder).IDs)
		return nil
	case protocol.OpReorder:
		p := c.Payload.(*protocol.Reorder)
		e.reorder(p.Action, p.IDs)
		return nil
	case protocol.OpSetViewScale:
		e.SetViewScale(float64(c.Payload.(*protocol.ViewScale).Scale))
		return nil
	case protocol.OpUpsertLayer:
		p := c.Payload.(*protocol.Layer)
		e.store.PutLayer(store.Layer{ID: entity.LayerID(c.Target), Name: p.Name, Flags: p.Flags, Style: p.Style})
		return nil
	case protocol.OpDeleteLayer:
		return e.store.DeleteLayer(entity.LayerID(c.Target))
	case protocol.OpSetEntityLayer:
		return e.store.SetLayer(id, c.Payload.(*protocol.LayerRef).Layer)
	case protocol.OpSetTextCaret:
		return e.SetTextCaret(id, int(c.Payload.(*protocol.Caret).Offset))
	case protocol.OpSetTextSelection:
		p := c.Payload.(*protocol.TextRange)
		return e.SetTextSelection(id, int(p.Start), int(p.End))
	case protocol.OpInsertTextContent:
		p := c.Payload.(*protocol.TextInsert)
		return e.insertText(id, int(p.At), p.Data)
	case protocol.OpDeleteTextContent:
		p := c.Payload.(*protocol.TextRange)
		return e.deleteText(id, int(p.Start), int(p.End))
	case protocol.OpBeginDraft:
		return e.BeginDraft(*c.Payload.(*protocol.DraftBegin))
	case protocol.OpUpdateDraft:
		p := c.Payload.(*protocol.DraftPoint)
		return e.UpdateDraft(geom.Pt32(p.X, p.Y))
	case protocol.OpAppendDraftPoint:
		p := c.Payload.(*protocol.DraftPoint)
		return e.AppendDraftPoint(geom.Pt32(p.X, p.Y))
	case protocol.OpCommitDraft:
		return e.commitDraft(id)
	case protocol.OpCancelDraft:
		return e.CancelDraft()
	}
	if u, ok := c.Payload.(*protocol.Upsert); ok {
		_, err := e.store.Upsert(id, u.Shape)
		return err
	}
	return fmt.Errorf("%w: %s has no handler", protocol.ErrUnknownOp, c.Op)
}

// reorder applies a reorder action. It reports whether the order changed.
func (e *Engine) reorder(a protocol.ReorderAction, ids []entity.ID) bool {
	switch a {
	case protocol.BringToFront:
		return e.store.BringToFront(ids)
	case protocol.SendToBack:
		return e.store.SendToBack(ids)
	case protocol.BringForward:
		return e.store.BringForward(ids)
	case protocol.SendBackward:
		return e.store.SendBackward(ids)
	}
	return false
}
