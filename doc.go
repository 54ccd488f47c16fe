// Package draft is the document engine of a 2D drawing tool.
//
// An Engine owns one document: the entity store with its draw order, layers
// and selection, the undo history, at most one interactive transform session
// and at most one draft shape. Hosts drive it with binary command buffers
// (see package protocol) and direct method calls, and read it back through
// picking, render buffers and snapshots.
//
// # Quick Start
//
//	e, err := draft.New()
//	if err != nil {
//	    return err
//	}
//
//	var enc protocol.Encoder
//	enc.Upsert(1, &entity.Rect{X: 0, Y: 0, W: 40, H: 20, Style: entity.DefaultStyle()})
//	if _, err := e.ApplyCommands(enc.Bytes()); err != nil {
//	    return err
//	}
//
//	id := e.Pick(geom.Pt(10, 10), 4) // 1
//
// # Consistency
//
// A command buffer is decoded in full before anything is applied; a
// malformed buffer leaves the document untouched. Every accepted buffer,
// reorder call and committed transform produces at most one undo entry.
//
// # Host boundary
//
// Methods return Go errors. Hosts that cannot carry them (wasm, cgo) map
// them with StatusOf. Buffers returned by RenderBuffers and Save are valid
// until the next mutating call.
//
// # Concurrency
//
// An Engine is not safe for concurrent use; hosts serialize calls. Separate
// engines are independent.
package draft
