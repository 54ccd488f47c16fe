package entity

// Color is a packed 0xRRGGBBAA color.
type Color uint32

// RGBA packs 8-bit channels into a Color.
func RGBA(r, g, b, a uint8) Color {
	return Color(uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8 | uint32(a))
}

// R returns the red channel.
func (c Color) R() uint8 { return uint8(c >> 24) }

// G returns the green channel.
func (c Color) G() uint8 { return uint8(c >> 16) }

// B returns the blue channel.
func (c Color) B() uint8 { return uint8(c >> 8) }

// A returns the alpha channel.
func (c Color) A() uint8 { return uint8(c) }

// Floats returns the channels normalized to [0, 1].
func (c Color) Floats() (r, g, b, a float32) {
	const inv = 1.0 / 255.0
	return float32(c.R()) * inv, float32(c.G()) * inv, float32(c.B()) * inv, float32(c.A()) * inv
}

// Common colors.
const (
	Black       Color = 0x000000FF
	White       Color = 0xFFFFFFFF
	Transparent Color = 0x00000000
)

// StyleFlags enables the paint components of a Style.
type StyleFlags uint32

const (
	// FillEnabled paints the interior of closed shapes.
	FillEnabled StyleFlags = 1 << iota
	// StrokeEnabled paints the outline.
	StrokeEnabled
)

// Style holds the paint shared by every non-text shape.
type Style struct {
	Fill        Color
	Stroke      Color
	StrokeWidth float32
	Flags       StyleFlags
}

// DefaultStyle returns a black 1-unit stroke with no fill.
func DefaultStyle() Style {
	return Style{
		Fill:        White,
		Stroke:      Black,
		StrokeWidth: 1,
		Flags:       StrokeEnabled,
	}
}

// Filled reports whether the fill is enabled.
func (s Style) Filled() bool { return s.Flags&FillEnabled != 0 }

// Stroked reports whether the stroke is enabled.
func (s Style) Stroked() bool { return s.Flags&StrokeEnabled != 0 }

// HalfStroke returns half of the stroke width when stroking, else zero.
func (s Style) HalfStroke() float64 {
	if !s.Stroked() {
		return 0
	}
	return float64(s.StrokeWidth) / 2
}

// StyleOf returns the style of a shape and whether the kind carries one.
// Nodes and text have no shape style.
func StyleOf(s Shape) (Style, bool) {
	switch v := s.(type) {
	case *Rect:
		return v.Style, true
	case *Line:
		return v.Style, true
	case *Polyline:
		return v.Style, true
	case *Circle:
		return v.Style, true
	case *Polygon:
		return v.Style, true
	case *Arrow:
		return v.Style, true
	case *Symbol:
		return v.Style, true
	case *Conduit:
		return v.Style, true
	case *Node, *Text:
		return Style{}, false
	default:
		return Style{}, false
	}
}
