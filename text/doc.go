// Package text lays out text entities for measuring, hit-testing and
// caret placement.
//
// An Engine shapes every styled run with HarfBuzz (go-text/typesetting),
// breaks paragraphs at hard newlines and, for fixed-width boxes, at Unicode
// line-break opportunities. The paragraph direction follows the first strong
// character. Caret offsets always fall on extended grapheme cluster
// boundaries.
//
// Coordinates in a Layout are text-local: the origin is the top-left corner
// of the box, x grows right and y grows down. Glyph positions are pen
// positions on the baseline.
//
// Glyph rasterization and atlas packing are outside this package. A Layout
// reports glyph ids and positions only.
package text
