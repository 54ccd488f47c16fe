package protocol

import (
	"fmt"
	"unicode/utf8"

	"github.com/gogpu/draft/entity"
)

// Fixed payload sizes in bytes.
const (
	styleSize    = 16
	rectSize     = 5*4 + styleSize
	lineSize     = 4*4 + styleSize
	circleSize   = 5*4 + styleSize
	polygonSize  = 6*4 + styleSize
	arrowSize    = 5*4 + styleSize
	symbolSize   = 8*4 + styleSize
	nodeSize     = 4 * 4
	conduitSize  = 2*4 + styleSize
	textHeadSize = 8 * 4
	textRunSize  = 6 * 4
	pointSize    = 2 * 4
)

// MaxPolygonSides bounds the vertex count of a regular polygon.
const MaxPolygonSides = 4096

const knownStyleFlags = entity.FillEnabled | entity.StrokeEnabled

// ParseShape decodes the payload of a shape of kind k. The payload must be
// consumed exactly. The result never aliases payload.
func ParseShape(k entity.Kind, payload []byte) (entity.Shape, error) {
	r := &reader{buf: payload}
	s := readShape(r, k)
	r.done()
	if r.err != "" {
		return nil, fmt.Errorf("%w: %s: %s", ErrMalformed, k, r.err)
	}
	return s, nil
}

// AppendShape appends the payload encoding of s to dst.
func AppendShape(dst []byte, s entity.Shape) []byte {
	switch v := s.(type) {
	case *entity.Rect:
		dst = appendFloats(dst, v.X, v.Y, v.W, v.H, v.Rotation)
		return appendStyle(dst, v.Style)
	case *entity.Line:
		dst = appendFloats(dst, v.X0, v.Y0, v.X1, v.Y1)
		return appendStyle(dst, v.Style)
	case *entity.Polyline:
		dst = appendStyle(dst, v.Style)
		dst = appendU32(dst, uint32(len(v.Points))) //nolint:gosec // bounded by payload size
		for _, p := range v.Points {
			dst = appendFloats(dst, p.X, p.Y)
		}
		return dst
	case *entity.Circle:
		dst = appendFloats(dst, v.CX, v.CY, v.RX, v.RY, v.Rotation)
		return appendStyle(dst, v.Style)
	case *entity.Polygon:
		dst = appendFloats(dst, v.CX, v.CY, v.RX, v.RY, v.Rotation)
		dst = appendU32(dst, v.Sides)
		return appendStyle(dst, v.Style)
	case *entity.Arrow:
		dst = appendFloats(dst, v.X0, v.Y0, v.X1, v.Y1, v.Head)
		return appendStyle(dst, v.Style)
	case *entity.Symbol:
		dst = appendU32(dst, v.Key)
		dst = appendFloats(dst, v.X, v.Y, v.W, v.H, v.Rotation, v.ScaleX, v.ScaleY)
		return appendStyle(dst, v.Style)
	case *entity.Node:
		dst = appendFloats(dst, v.X, v.Y)
		dst = appendU32(dst, uint32(v.Anchor))
		return appendU32(dst, v.Flags)
	case *entity.Conduit:
		dst = appendU32(dst, uint32(v.From))
		dst = appendU32(dst, uint32(v.To))
		return appendStyle(dst, v.Style)
	case *entity.Text:
		dst = appendFloats(dst, v.X, v.Y, v.Rotation)
		dst = appendU32(dst, uint32(v.BoxMode))
		dst = appendU32(dst, uint32(v.Align))
		dst = appendF32(dst, v.BoxWidth)
		dst = appendU32(dst, uint32(len(v.Runs)))    //nolint:gosec // bounded by payload size
		dst = appendU32(dst, uint32(len(v.Content))) //nolint:gosec // bounded by payload size
		for _, run := range v.Runs {
			dst = appendU32(dst, run.Start)
			dst = appendU32(dst, run.Length)
			dst = appendU32(dst, run.Font)
			dst = appendF32(dst, run.Size)
			dst = appendU32(dst, uint32(run.Color))
			dst = appendU32(dst, uint32(run.Flags))
		}
		return append(dst, v.Content...)
	default:
		panic(fmt.Sprintf("protocol: unknown shape %T", s))
	}
}

func appendFloats(dst []byte, vs ...float32) []byte {
	for _, v := range vs {
		dst = appendF32(dst, v)
	}
	return dst
}

func appendStyle(dst []byte, s entity.Style) []byte {
	dst = appendU32(dst, uint32(s.Fill))
	dst = appendU32(dst, uint32(s.Stroke))
	dst = appendF32(dst, s.StrokeWidth)
	return appendU32(dst, uint32(s.Flags))
}

func readStyle(r *reader) entity.Style {
	s := entity.Style{
		Fill:        entity.Color(r.u32()),
		Stroke:      entity.Color(r.u32()),
		StrokeWidth: r.f32(),
		Flags:       entity.StyleFlags(r.u32()),
	}
	if s.StrokeWidth < 0 {
		r.fail("negative stroke width")
	}
	if s.Flags&^knownStyleFlags != 0 {
		r.fail("unknown style flags")
	}
	return s
}

// fixedSize returns the exact payload size of a fixed-size kind, or 0.
func fixedSize(k entity.Kind) int {
	switch k {
	case entity.KindRect:
		return rectSize
	case entity.KindLine:
		return lineSize
	case entity.KindCircle:
		return circleSize
	case entity.KindPolygon:
		return polygonSize
	case entity.KindArrow:
		return arrowSize
	case entity.KindSymbol:
		return symbolSize
	case entity.KindNode:
		return nodeSize
	case entity.KindConduit:
		return conduitSize
	default:
		return 0
	}
}

func readShape(r *reader, k entity.Kind) entity.Shape {
	if n := fixedSize(k); n != 0 && r.remaining() != n {
		r.fail(fmt.Sprintf("payload is %d bytes, want %d", r.remaining(), n))
		return nil
	}
	switch k {
	case entity.KindRect:
		s := &entity.Rect{X: r.f32(), Y: r.f32(), W: r.f32(), H: r.f32(), Rotation: r.f32()}
		s.Style = readStyle(r)
		if s.W < 0 || s.H < 0 {
			r.fail("negative size")
		}
		return s
	case entity.KindLine:
		s := &entity.Line{X0: r.f32(), Y0: r.f32(), X1: r.f32(), Y1: r.f32()}
		s.Style = readStyle(r)
		return s
	case entity.KindPolyline:
		s := &entity.Polyline{Style: readStyle(r)}
		n := r.count(pointSize)
		if r.err == "" && n < 2 {
			r.fail("polyline needs at least 2 points")
			return nil
		}
		if n > 0 {
			s.Points = make([]entity.Vec2, n)
			for i := range s.Points {
				s.Points[i] = entity.Vec2{X: r.f32(), Y: r.f32()}
			}
		}
		return s
	case entity.KindCircle:
		s := &entity.Circle{CX: r.f32(), CY: r.f32(), RX: r.f32(), RY: r.f32(), Rotation: r.f32()}
		s.Style = readStyle(r)
		if s.RX < 0 || s.RY < 0 {
			r.fail("negative radius")
		}
		return s
	case entity.KindPolygon:
		s := &entity.Polygon{CX: r.f32(), CY: r.f32(), RX: r.f32(), RY: r.f32(), Rotation: r.f32(), Sides: r.u32()}
		s.Style = readStyle(r)
		if s.RX < 0 || s.RY < 0 {
			r.fail("negative radius")
		}
		if s.Sides < 3 || s.Sides > MaxPolygonSides {
			r.fail("polygon sides out of range")
		}
		return s
	case entity.KindArrow:
		s := &entity.Arrow{X0: r.f32(), Y0: r.f32(), X1: r.f32(), Y1: r.f32(), Head: r.f32()}
		s.Style = readStyle(r)
		if s.Head < 0 {
			r.fail("negative head size")
		}
		return s
	case entity.KindSymbol:
		s := &entity.Symbol{Key: r.u32()}
		s.X, s.Y, s.W, s.H = r.f32(), r.f32(), r.f32(), r.f32()
		s.Rotation, s.ScaleX, s.ScaleY = r.f32(), r.f32(), r.f32()
		s.Style = readStyle(r)
		if s.W < 0 || s.H < 0 {
			r.fail("negative size")
		}
		return s
	case entity.KindNode:
		return &entity.Node{X: r.f32(), Y: r.f32(), Anchor: entity.ID(r.u32()), Flags: r.u32()}
	case entity.KindConduit:
		s := &entity.Conduit{From: entity.ID(r.u32()), To: entity.ID(r.u32())}
		s.Style = readStyle(r)
		if s.From == entity.None || s.To == entity.None {
			r.fail("conduit endpoint is the null id")
		}
		return s
	case entity.KindText:
		return readText(r)
	default:
		r.fail(fmt.Sprintf("invalid kind %d", uint8(k)))
		return nil
	}
}

func readText(r *reader) *entity.Text {
	if r.remaining() < textHeadSize {
		r.fail("text header extends past payload")
		return nil
	}
	s := &entity.Text{X: r.f32(), Y: r.f32(), Rotation: r.f32()}
	mode, align := r.u32(), r.u32()
	s.BoxWidth = r.f32()
	if mode > uint32(entity.FixedWidth) {
		r.fail("invalid box mode")
	}
	if align > uint32(entity.AlignRight) {
		r.fail("invalid alignment")
	}
	if s.BoxWidth < 0 {
		r.fail("negative box width")
	}
	s.BoxMode, s.Align = entity.BoxMode(mode), entity.Align(align)

	runCount := r.count(textRunSize)
	contentLen := r.u32()
	if r.err != "" {
		return nil
	}
	if uint64(runCount)*textRunSize+uint64(contentLen) != uint64(r.remaining()) {
		r.fail("run and content lengths disagree with payload size")
		return nil
	}
	if runCount > 0 {
		s.Runs = make([]entity.TextRun, runCount)
	}
	for i := range s.Runs {
		run := entity.TextRun{
			Start:  r.u32(),
			Length: r.u32(),
			Font:   r.u32(),
			Size:   r.f32(),
			Color:  entity.Color(r.u32()),
			Flags:  entity.RunFlags(r.u32()),
		}
		if uint64(run.Start)+uint64(run.Length) > uint64(contentLen) {
			r.fail("text run outside content")
		}
		if run.Size <= 0 {
			r.fail("non-positive font size")
		}
		s.Runs[i] = run
	}
	content := r.bytes(contentLen)
	if r.err != "" {
		return nil
	}
	if !utf8.Valid(content) {
		r.fail("text content is not valid UTF-8")
		return nil
	}
	if len(content) > 0 {
		s.Content = append([]byte(nil), content...)
	}
	return s
}
