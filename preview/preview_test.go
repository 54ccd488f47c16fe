package preview

import (
	"bytes"
	"errors"
	"image/png"
	"testing"

	"github.com/gogpu/draft/entity"
	"github.com/gogpu/draft/geom"
	"github.com/gogpu/draft/render"
	"github.com/gogpu/draft/store"
)

const red entity.Color = 0xFF0000FF

func rgb8(c *Canvas, x, y int) (r, g, b uint32) {
	r, g, b, _ = c.Image().At(x, y).RGBA()
	return r >> 8, g >> 8, b >> 8
}

func TestShapes(t *testing.T) {
	st := store.New()
	if _, err := st.Upsert(1, &entity.Rect{X: 0, Y: 0, W: 100, H: 50, Style: entity.Style{Fill: red, Flags: entity.FillEnabled}}); err != nil {
		t.Fatal(err)
	}
	buf := render.New(st, nil, nil).Shapes()

	c, err := New(200, 100, geom.Rect{MaxX: 100, MaxY: 50}, entity.White)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if err := c.Shapes(buf); err != nil {
		t.Fatalf("Shapes() error = %v", err)
	}

	tests := []struct {
		name    string
		world   geom.Point
		r, g, b uint32
	}{
		{"inside", geom.Pt(75, 10), 255, 0, 0},
		{"inside near top", geom.Pt(20, 45), 255, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := c.ToImage(tt.world)
			r, g, b := rgb8(c, int(x), int(y))
			if r < tt.r-20 || g > tt.g+20 || b > tt.b+20 {
				t.Errorf("pixel at %v = (%d, %d, %d), want about (%d, %d, %d)", tt.world, r, g, b, tt.r, tt.g, tt.b)
			}
		})
	}
}

func TestToImageFlipsY(t *testing.T) {
	c, err := New(100, 100, geom.Rect{MaxX: 10, MaxY: 10}, entity.White)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if x, y := c.ToImage(geom.Pt(0, 0)); x != 0 || y != 100 {
		t.Errorf("ToImage(0, 0) = (%g, %g), want (0, 100)", x, y)
	}
	if x, y := c.ToImage(geom.Pt(10, 10)); x != 100 || y != 0 {
		t.Errorf("ToImage(10, 10) = (%g, %g), want (100, 0)", x, y)
	}
}

func TestAspectIsCentered(t *testing.T) {
	c, err := New(200, 100, geom.Rect{MaxX: 10, MaxY: 10}, entity.White)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if x, _ := c.ToImage(geom.Pt(0, 0)); x != 50 {
		t.Errorf("left edge at x = %g, want 50", x)
	}
}

func TestEncodePNG(t *testing.T) {
	c, err := New(16, 8, geom.EmptyRect(), entity.Black)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	var buf bytes.Buffer
	if err := c.EncodePNG(&buf); err != nil {
		t.Fatalf("EncodePNG() error = %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 8 {
		t.Errorf("decoded size = %v, want 16x8", b)
	}
}

func TestInvalidSize(t *testing.T) {
	if _, err := New(0, 10, geom.EmptyRect(), entity.White); !errors.Is(err, ErrSize) {
		t.Errorf("New(0, 10) error = %v, want ErrSize", err)
	}
}

func TestFit(t *testing.T) {
	if r := Fit(geom.Rect{MaxX: 1, MaxY: 1}, true, 2); r != (geom.Rect{MinX: -2, MinY: -2, MaxX: 3, MaxY: 3}) {
		t.Errorf("Fit() = %+v", r)
	}
	if r := Fit(geom.Rect{}, false, 2); !r.IsEmpty() {
		t.Errorf("Fit(not ok) = %+v, want empty", r)
	}
}
