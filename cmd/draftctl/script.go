package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/draft/entity"
	"github.com/gogpu/draft/hostid"
	"github.com/gogpu/draft/protocol"
)

// A script is a YAML list of steps that names entities by string keys
// instead of numeric ids:
//
//	steps:
//	  - rect: {key: wall, x: 0, y: 0, w: 100, h: 10, fill: cccccc}
//	  - node: {key: n1, x: 50, y: 5, anchor: wall}
//	  - front: [wall]
//
// Keys map to ids through a hostid.Allocator shared by every script of one
// invocation.
type script struct {
	Steps []step `yaml:"steps"`
}

type step struct {
	Rect     *shapeDef `yaml:"rect"`
	Line     *shapeDef `yaml:"line"`
	Polyline *shapeDef `yaml:"polyline"`
	Circle   *shapeDef `yaml:"circle"`
	Polygon  *shapeDef `yaml:"polygon"`
	Arrow    *shapeDef `yaml:"arrow"`
	Node     *shapeDef `yaml:"node"`
	Conduit  *shapeDef `yaml:"conduit"`
	Text     *shapeDef `yaml:"text"`

	Delete string   `yaml:"delete"`
	Front  []string `yaml:"front"`
	Back   []string `yaml:"back"`
	Order  []string `yaml:"order"`
}

type shapeDef struct {
	Key      string       `yaml:"key"`
	X        float32      `yaml:"x"`
	Y        float32      `yaml:"y"`
	W        float32      `yaml:"w"`
	H        float32      `yaml:"h"`
	R        float32      `yaml:"r"`
	Rotation float32      `yaml:"rotation"` // degrees
	Sides    uint32       `yaml:"sides"`
	Head     float32      `yaml:"head"`
	Points   [][2]float32 `yaml:"points"`
	Anchor   string       `yaml:"anchor"`
	From     string       `yaml:"from"`
	To       string       `yaml:"to"`
	Text     string       `yaml:"text"`
	Size     float32      `yaml:"size"`
	Fill     string       `yaml:"fill"`
	Stroke   string       `yaml:"stroke"`
	Width    *float32     `yaml:"width"`
}

var errScript = errors.New("invalid script")

// compileScript encodes a script as a command buffer.
func compileScript(data []byte, ids *hostid.Allocator) ([]byte, error) {
	var s script
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", errScript, err)
	}

	var enc protocol.Encoder
	for i, st := range s.Steps {
		if err := st.encode(&enc, ids); err != nil {
			return nil, fmt.Errorf("%w: step %d: %w", errScript, i+1, err)
		}
	}
	return enc.Bytes(), nil
}

func (st step) encode(enc *protocol.Encoder, ids *hostid.Allocator) error {
	n := 0
	for _, set := range []bool{
		st.Rect != nil, st.Line != nil, st.Polyline != nil, st.Circle != nil, st.Polygon != nil,
		st.Arrow != nil, st.Node != nil, st.Conduit != nil, st.Text != nil,
		st.Delete != "", st.Front != nil, st.Back != nil, st.Order != nil,
	} {
		if set {
			n++
		}
	}
	if n != 1 {
		return fmt.Errorf("want exactly one operation, got %d", n)
	}

	keys := func(ks []string) []entity.ID {
		out := make([]entity.ID, len(ks))
		for i, k := range ks {
			out[i] = ids.ID(k)
		}
		return out
	}
	switch {
	case st.Delete != "":
		enc.Delete(ids.ID(st.Delete))
		return nil
	case st.Front != nil:
		enc.Reorder(protocol.BringToFront, keys(st.Front)...)
		return nil
	case st.Back != nil:
		enc.Reorder(protocol.SendToBack, keys(st.Back)...)
		return nil
	case st.Order != nil:
		enc.SetDrawOrder(keys(st.Order)...)
		return nil
	}

	spec, sh, err := st.shape(ids)
	if err != nil {
		return err
	}
	if spec.Key == "" {
		return errors.New("missing key")
	}
	enc.Upsert(ids.ID(spec.Key), sh)
	return nil
}

func (st step) shape(ids *hostid.Allocator) (*shapeDef, entity.Shape, error) {
	var spec *shapeDef
	for _, s := range []*shapeDef{st.Rect, st.Line, st.Polyline, st.Circle, st.Polygon, st.Arrow, st.Node, st.Conduit, st.Text} {
		if s != nil {
			spec = s
		}
	}
	style, err := spec.style()
	if err != nil {
		return nil, nil, err
	}
	rot := spec.Rotation * math.Pi / 180

	switch {
	case st.Rect != nil:
		return spec, &entity.Rect{X: spec.X, Y: spec.Y, W: spec.W, H: spec.H, Rotation: rot, Style: style}, nil
	case st.Circle != nil:
		return spec, &entity.Circle{CX: spec.X, CY: spec.Y, RX: spec.R, RY: spec.R, Rotation: rot, Style: style}, nil
	case st.Polygon != nil:
		return spec, &entity.Polygon{CX: spec.X, CY: spec.Y, RX: spec.R, RY: spec.R, Rotation: rot, Sides: spec.Sides, Style: style}, nil
	case st.Line != nil, st.Arrow != nil:
		if len(spec.Points) != 2 {
			return nil, nil, fmt.Errorf("%s needs 2 points, got %d", spec.Key, len(spec.Points))
		}
		a, b := spec.Points[0], spec.Points[1]
		if st.Arrow != nil {
			return spec, &entity.Arrow{X0: a[0], Y0: a[1], X1: b[0], Y1: b[1], Head: spec.Head, Style: style}, nil
		}
		return spec, &entity.Line{X0: a[0], Y0: a[1], X1: b[0], Y1: b[1], Style: style}, nil
	case st.Polyline != nil:
		pts := make([]entity.Vec2, len(spec.Points))
		for i, p := range spec.Points {
			pts[i] = entity.Vec2{X: p[0], Y: p[1]}
		}
		return spec, &entity.Polyline{Points: pts, Style: style}, nil
	case st.Node != nil:
		n := &entity.Node{X: spec.X, Y: spec.Y}
		if spec.Anchor != "" {
			n.Anchor = ids.ID(spec.Anchor)
		}
		return spec, n, nil
	case st.Conduit != nil:
		if spec.From == "" || spec.To == "" {
			return nil, nil, fmt.Errorf("conduit %s needs from and to", spec.Key)
		}
		return spec, &entity.Conduit{From: ids.ID(spec.From), To: ids.ID(spec.To), Style: style}, nil
	default:
		size := spec.Size
		if size <= 0 {
			size = entity.DefaultFontSize
		}
		color := entity.Black
		if spec.Fill != "" {
			color = style.Fill
		}
		return spec, &entity.Text{
			X: spec.X, Y: spec.Y, Rotation: rot,
			Runs:    []entity.TextRun{{Length: uint32(len(spec.Text)), Size: size, Color: color}}, //nolint:gosec // script text is small
			Content: []byte(spec.Text),
		}, nil
	}
}

// style starts from the default style. A fill color enables the fill;
// stroke "none" disables the outline.
func (s *shapeDef) style() (entity.Style, error) {
	st := entity.DefaultStyle()
	if s.Fill != "" {
		c, err := parseColor(s.Fill)
		if err != nil {
			return st, err
		}
		st.Fill = c
		st.Flags |= entity.FillEnabled
	}
	switch s.Stroke {
	case "":
	case "none":
		st.Flags &^= entity.StrokeEnabled
	default:
		c, err := parseColor(s.Stroke)
		if err != nil {
			return st, err
		}
		st.Stroke = c
	}
	if s.Width != nil {
		st.StrokeWidth = *s.Width
	}
	return st, nil
}
