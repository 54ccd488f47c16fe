package protocol

import (
	"fmt"

	"github.com/gogpu/draft/entity"
)

// Encoder builds a command buffer. The zero value is ready to use.
//
//	var enc protocol.Encoder
//	enc.Upsert(1, &entity.Rect{W: 10, H: 10})
//	enc.Reorder(protocol.SendToBack, 1)
//	buf := enc.Bytes()
type Encoder struct {
	body  []byte
	count uint32
}

// Len returns the number of commands added so far.
func (e *Encoder) Len() int { return int(e.count) }

// Reset discards all commands.
func (e *Encoder) Reset() {
	e.body = e.body[:0]
	e.count = 0
}

// Bytes returns the framed buffer.
func (e *Encoder) Bytes() []byte {
	out := make([]byte, 0, BufferHeaderSize+len(e.body))
	out = appendU32(out, Magic)
	out = appendU32(out, Version)
	out = appendU32(out, e.count)
	out = appendU32(out, 0)
	return append(out, e.body...)
}

// Raw appends a command with an already-encoded payload. It is the only way
// to emit ops this package does not know.
func (e *Encoder) Raw(op Op, target uint32, payload []byte) {
	e.body = appendU32(e.body, uint32(op))
	e.body = appendU32(e.body, target)
	e.body = appendU32(e.body, uint32(len(payload))) //nolint:gosec // payloads are far below 4 GiB
	e.body = appendU32(e.body, 0)
	e.body = append(e.body, payload...)
	e.count++
}

// Add appends a decoded command. Encoding the commands of a decoded Batch in
// order reproduces the original buffer minus any skipped ops.
func (e *Encoder) Add(c Command) {
	e.Raw(c.Op, c.Target, appendPayload(nil, c.Op, c.Payload))
}

// Upsert appends the upsert op matching the shape's kind.
func (e *Encoder) Upsert(id entity.ID, s entity.Shape) {
	op, ok := UpsertOp(s.Kind())
	if !ok {
		panic(fmt.Sprintf("protocol: cannot upsert kind %s", s.Kind()))
	}
	e.Add(Command{Op: op, Target: uint32(id), Payload: &Upsert{Shape: s}})
}

// Delete appends a DeleteEntity op.
func (e *Encoder) Delete(id entity.ID) {
	e.Add(Command{Op: OpDeleteEntity, Target: uint32(id)})
}

// Clear appends a ClearAll op.
func (e *Encoder) Clear() {
	e.Add(Command{Op: OpClearAll})
}

// SetDrawOrder appends a SetDrawOrder op.
func (e *Encoder) SetDrawOrder(ids ...entity.ID) {
	e.Add(Command{Op: OpSetDrawOrder, Payload: &DrawOrder{IDs: ids}})
}

// Reorder appends a Reorder op.
func (e *Encoder) Reorder(action ReorderAction, ids ...entity.ID) {
	e.Add(Command{Op: OpReorder, Payload: &Reorder{Action: action, IDs: ids}})
}

// Encode frames a list of commands.
func Encode(cmds []Command) []byte {
	var e Encoder
	for _, c := range cmds {
		e.Add(c)
	}
	return e.Bytes()
}

func appendIDs(dst []byte, ids []entity.ID) []byte {
	dst = appendU32(dst, uint32(len(ids))) //nolint:gosec // bounded by payload size
	for _, id := range ids {
		dst = appendU32(dst, uint32(id))
	}
	return dst
}

func appendPayload(dst []byte, op Op, p Payload) []byte {
	switch v := p.(type) {
	case nil:
		return dst
	case *Upsert:
		return AppendShape(dst, v.Shape)
	case *DrawOrder:
		return appendIDs(dst, v.IDs)
	case *Reorder:
		dst = appendU32(dst, uint32(v.Action))
		return appendIDs(dst, v.IDs)
	case *ViewScale:
		return appendF32(dst, v.Scale)
	case *Layer:
		dst = appendU32(dst, uint32(v.Flags))
		dst = appendStyle(dst, v.Style)
		dst = appendU32(dst, uint32(len(v.Name))) //nolint:gosec // bounded by payload size
		return append(dst, v.Name...)
	case *LayerRef:
		return appendU32(dst, uint32(v.Layer))
	case *Caret:
		return appendU32(dst, v.Offset)
	case *TextRange:
		dst = appendU32(dst, v.Start)
		return appendU32(dst, v.End)
	case *TextInsert:
		dst = appendU32(dst, v.At)
		dst = appendU32(dst, uint32(len(v.Data))) //nolint:gosec // bounded by payload size
		return append(dst, v.Data...)
	case *DraftBegin:
		dst = appendU32(dst, uint32(v.Kind))
		dst = appendFloats(dst, v.X, v.Y)
		dst = appendStyle(dst, v.Style)
		dst = appendU32(dst, v.Sides)
		return appendF32(dst, v.Head)
	case *DraftPoint:
		return appendFloats(dst, v.X, v.Y)
	default:
		panic(fmt.Sprintf("protocol: %s has unknown payload %T", op, p))
	}
}
