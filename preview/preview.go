// Package preview rasterizes render buffers on the CPU with gg.
//
// Shape and overlay buffers are triangle lists with a color per vertex and
// are drawn as filled triangles. The text buffer carries atlas coordinates
// rather than glyph coverage, so glyph quads are drawn as translucent cells
// and decoration quads as solid bars.
package preview

import (
	"errors"
	"image"
	"io"

	"github.com/gogpu/gg"

	"github.com/gogpu/draft/entity"
	"github.com/gogpu/draft/geom"
	"github.com/gogpu/draft/render"
)

// ErrSize is returned by New for a non-positive image size.
var ErrSize = errors.New("preview: invalid image size")

// GlyphAlpha scales the alpha of glyph cells.
const GlyphAlpha = 0.35

// Canvas maps a world rectangle onto an image. World y grows upward.
type Canvas struct {
	dc     *gg.Context
	view   geom.Rect
	scale  float64
	offX   float64
	offY   float64
	height float64
}

// New returns a width x height canvas showing view, scaled uniformly and
// centered. An empty or degenerate view shows a unit square at its center.
func New(width, height int, view geom.Rect, background entity.Color) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrSize
	}
	if view.IsEmpty() {
		view = geom.Rect{MinX: -0.5, MinY: -0.5, MaxX: 0.5, MaxY: 0.5}
	}
	w, h := max(view.Width(), 1e-9), max(view.Height(), 1e-9)
	scale := min(float64(width)/w, float64(height)/h)
	c := &Canvas{
		dc:     gg.NewContext(width, height),
		view:   view,
		scale:  scale,
		offX:   (float64(width) - w*scale) / 2,
		offY:   (float64(height) - h*scale) / 2,
		height: float64(height),
	}
	r, g, b, a := background.Floats()
	c.dc.ClearWithColor(gg.RGBA2(float64(r), float64(g), float64(b), float64(a)))
	return c, nil
}

// Fit returns extent grown by margin on every side, or an empty rect when
// extent is empty.
func Fit(extent geom.Rect, ok bool, margin float64) geom.Rect {
	if !ok {
		return geom.EmptyRect()
	}
	return extent.Expand(margin)
}

// ToImage maps a world point to image pixels.
func (c *Canvas) ToImage(p geom.Point) (x, y float64) {
	x = (p.X-c.view.MinX)*c.scale + c.offX
	y = c.height - ((p.Y-c.view.MinY)*c.scale + c.offY)
	return x, y
}

// Shapes draws a shape or overlay buffer. A nil buffer draws nothing.
func (c *Canvas) Shapes(b *render.Buffer) error {
	if b == nil {
		return nil
	}
	return c.triangles(b.Data, render.ShapeStride, 2, 1)
}

// Text draws a text buffer. A nil buffer draws nothing.
func (c *Canvas) Text(b *render.TextBuffer) error {
	if b == nil {
		return nil
	}
	const quad = 6 * render.TextStride
	for i, ref := range b.Quads {
		lo := i * quad
		if lo+quad > len(b.Data) {
			break
		}
		alpha := float32(GlyphAlpha)
		if ref.Solid {
			alpha = 1
		}
		if err := c.triangles(b.Data[lo:lo+quad], render.TextStride, 4, alpha); err != nil {
			return err
		}
	}
	return nil
}

// triangles fills every triangle in data. Colors sit at float offset col
// in each vertex; the first vertex colors the whole triangle.
func (c *Canvas) triangles(data []float32, stride, col int, alpha float32) error {
	tri := 3 * stride
	for lo := 0; lo+tri <= len(data); lo += tri {
		v := data[lo : lo+tri]
		r, g, b, a := v[col], v[col+1], v[col+2], v[col+3]*alpha
		if a <= 0 {
			continue
		}
		c.dc.SetRGBA(float64(r), float64(g), float64(b), float64(a))
		for k := range 3 {
			x, y := c.ToImage(geom.Pt(float64(v[k*stride]), float64(v[k*stride+1])))
			if k == 0 {
				c.dc.MoveTo(x, y)
			} else {
				c.dc.LineTo(x, y)
			}
		}
		c.dc.ClosePath()
		if err := c.dc.Fill(); err != nil {
			return err
		}
	}
	return nil
}

// Image returns the rendered image.
func (c *Canvas) Image() image.Image { return c.dc.Image() }

// EncodePNG writes the image as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error { return c.dc.EncodePNG(w) }

// SavePNG writes the image to path as PNG.
func (c *Canvas) SavePNG(path string) error { return c.dc.SavePNG(path) }

// Close releases the drawing context.
func (c *Canvas) Close() error { return c.dc.Close() }
