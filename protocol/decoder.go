package protocol

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"github.com/gogpu/draft/entity"
)

// MaxLayerNameLen bounds the byte length of a layer name.
const MaxLayerNameLen = 1 << 10

// Decode parses and validates a whole command buffer. On error nothing in
// the returned Batch is meaningful and the caller must not apply any part of
// the buffer.
func Decode(buf []byte) (Batch, error) {
	var batch Batch
	if len(buf) < BufferHeaderSize {
		return batch, &Error{Offset: 0, Index: -1, Reason: "buffer shorter than header", Err: ErrTruncated}
	}
	if m := binary.LittleEndian.Uint32(buf[0:]); m != Magic {
		return batch, &Error{Offset: 0, Index: -1, Reason: fmt.Sprintf("magic %#08x", m), Err: ErrBadMagic}
	}
	if v := binary.LittleEndian.Uint32(buf[4:]); v != Version {
		return batch, &Error{Offset: 4, Index: -1, Reason: fmt.Sprintf("version %d, want %d", v, Version), Err: ErrVersion}
	}
	count := binary.LittleEndian.Uint32(buf[8:])
	if uint64(count)*CommandHeaderSize > uint64(len(buf)-BufferHeaderSize) {
		return batch, &Error{Offset: 8, Index: -1, Reason: fmt.Sprintf("%d commands cannot fit", count), Err: ErrTruncated}
	}

	batch.Commands = make([]Command, 0, count)
	off := BufferHeaderSize
	for i := 0; i < int(count); i++ {
		if len(buf)-off < CommandHeaderSize {
			return Batch{}, &Error{Offset: off, Index: i, Reason: "command header extends past buffer", Err: ErrTruncated}
		}
		op := Op(binary.LittleEndian.Uint32(buf[off:]))
		target := binary.LittleEndian.Uint32(buf[off+4:])
		length := binary.LittleEndian.Uint32(buf[off+8:])
		start := off + CommandHeaderSize
		if uint64(length) > uint64(len(buf)-start) {
			return Batch{}, &Error{Offset: off + 8, Index: i, Op: op, Reason: fmt.Sprintf("payload of %d bytes extends past buffer", length), Err: ErrTruncated}
		}
		end := start + int(length)

		if !op.Known() {
			batch.Skipped = append(batch.Skipped, Skipped{Index: i, Op: op, Offset: off, Length: length})
			off = end
			continue
		}

		r := &reader{buf: buf[start:end], base: start}
		payload := decodePayload(r, op, target)
		r.done()
		if r.err != "" {
			return Batch{}, &Error{Offset: r.base + r.off, Index: i, Op: op, Reason: r.err, Err: ErrMalformed}
		}
		batch.Commands = append(batch.Commands, Command{Op: op, Target: target, Payload: payload})
		off = end
	}
	if off != len(buf) {
		return Batch{}, &Error{Offset: off, Index: -1, Reason: fmt.Sprintf("%d bytes after last command", len(buf)-off), Err: ErrTrailing}
	}
	return batch, nil
}

func decodePayload(r *reader, op Op, target uint32) Payload {
	if k, ok := op.UpsertKind(); ok {
		if target == 0 {
			r.fail("upsert of the null id")
			return nil
		}
		s := readShape(r, k)
		if s == nil {
			return nil
		}
		return &Upsert{Shape: s}
	}

	switch op {
	case OpClearAll, OpDeleteEntity, OpDeleteText, OpDeleteLayer, OpCancelDraft:
		return nil
	case OpCommitDraft:
		if target == 0 {
			r.fail("draft committed to the null id")
		}
		return nil
	case OpSetDrawOrder:
		return &DrawOrder{IDs: readIDs(r)}
	case OpReorder:
		action := ReorderAction(r.u32())
		if r.err == "" && !action.Valid() {
			r.fail(fmt.Sprintf("invalid reorder action %d", uint32(action)))
		}
		return &Reorder{Action: action, IDs: readIDs(r)}
	case OpSetViewScale:
		v := &ViewScale{Scale: r.f32()}
		if r.err == "" && v.Scale <= 0 {
			r.fail("view scale must be positive")
		}
		return v
	case OpUpsertLayer:
		l := &Layer{Flags: entity.LayerFlags(r.u32()), Style: readStyle(r)}
		if l.Flags&^entity.KnownLayerFlags != 0 {
			r.fail("unknown layer flags")
		}
		name := r.bytes(r.count(1))
		switch {
		case r.err != "":
		case len(name) > MaxLayerNameLen:
			r.fail("layer name too long")
		case !utf8.Valid(name):
			r.fail("layer name is not valid UTF-8")
		}
		l.Name = string(name)
		return l
	case OpSetEntityLayer:
		return &LayerRef{Layer: entity.LayerID(r.u32())}
	case OpSetTextCaret:
		return &Caret{Offset: r.u32()}
	case OpSetTextSelection, OpDeleteTextContent:
		return &TextRange{Start: r.u32(), End: r.u32()}
	case OpInsertTextContent:
		ins := &TextInsert{At: r.u32()}
		data := r.bytes(r.count(1))
		if r.err == "" && !utf8.Valid(data) {
			r.fail("inserted text is not valid UTF-8")
		}
		if len(data) > 0 {
			ins.Data = append([]byte(nil), data...)
		}
		return ins
	case OpBeginDraft:
		kind := r.u32()
		d := &DraftBegin{X: r.f32(), Y: r.f32()}
		d.Style = readStyle(r)
		d.Sides = r.u32()
		d.Head = r.f32()
		if kind <= uint32(entity.KindText) {
			d.Kind = entity.Kind(kind)
		}
		if r.err == "" && !Draftable(d.Kind) {
			r.fail(fmt.Sprintf("kind %d cannot be drafted", kind))
		}
		if r.err == "" && d.Kind == entity.KindPolygon && (d.Sides < 3 || d.Sides > MaxPolygonSides) {
			r.fail("polygon sides out of range")
		}
		return d
	case OpUpdateDraft, OpAppendDraftPoint:
		return &DraftPoint{X: r.f32(), Y: r.f32()}
	default:
		r.fail("op has no decoder")
		return nil
	}
}

func readIDs(r *reader) []entity.ID {
	n := r.count(4)
	if n == 0 {
		return nil
	}
	ids := make([]entity.ID, n)
	for i := range ids {
		ids[i] = entity.ID(r.u32())
	}
	return ids
}

// Draftable reports whether shapes of kind k can be drawn with the draft ops.
func Draftable(k entity.Kind) bool {
	switch k {
	case entity.KindRect, entity.KindLine, entity.KindPolyline,
		entity.KindCircle, entity.KindPolygon, entity.KindArrow:
		return true
	}
	return false
}
