// Package render builds flat vertex buffers from a document store.
//
// Two buffers are kept: shape triangles and text glyph quads. Each is
// rebuilt only when the matching store generation differs from the one it
// was last built at, so reading buffers every frame is cheap while the
// document is idle. Vertices are in world coordinates (y up); the consumer
// applies the view transform.
//
// Buffer contents and metadata are valid until the next mutating call on
// the store. Re-fetch them after every mutation instead of keeping slices.
//
// Shape vertex (6 x float32):
//
//	x, y, r, g, b, a
//
// Text vertex (8 x float32):
//
//	x, y, u, v, r, g, b, a
//
// Text u, v are quad-local corner coordinates in [0, 1]; the consumer maps
// them into its glyph atlas using the per-quad GlyphRef. Solid quads
// (underline, strike-through) carry u = v = -1.
package render
