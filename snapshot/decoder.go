package snapshot

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/draft/entity"
)

// decoder is a bounds-checked cursor over a snapshot body. The first failure
// sticks; later reads return zero values.
type decoder struct {
	buf []byte
	off int
	err error
}

func (d *decoder) fail(format string, args ...any) {
	if d.err == nil {
		d.err = fmt.Errorf("%w: at %d: %s", ErrCorrupt, d.off, fmt.Sprintf(format, args...))
	}
}

func (d *decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n < 0 || n > len(d.buf)-d.off {
		d.fail("need %d bytes, have %d", n, len(d.buf)-d.off)
		return nil
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b
}

func (d *decoder) skip(n int) { d.take(n) }

func (d *decoder) u32() uint32 {
	if b := d.take(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (d *decoder) u64() uint64 {
	if b := d.take(8); b != nil {
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

func (d *decoder) bytes(n int) []byte {
	return d.take(n)
}

// count reads an element count and checks that n elements of at least
// minSize bytes could fit in the rest of the buffer.
func (d *decoder) count(minSize int) int {
	n := d.u32()
	if d.err != nil {
		return 0
	}
	if rest := len(d.buf) - d.off; uint64(n)*uint64(minSize) > uint64(rest) {
		d.fail("count %d exceeds remaining %d bytes", n, rest)
		return 0
	}
	return int(n)
}

func (d *decoder) style() entity.Style {
	s := entity.Style{
		Fill:        entity.Color(d.u32()),
		Stroke:      entity.Color(d.u32()),
		StrokeWidth: math.Float32frombits(d.u32()),
		Flags:       entity.StyleFlags(d.u32()),
	}
	if w := float64(s.StrokeWidth); math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		d.fail("bad stroke width %v", s.StrokeWidth)
	}
	return s
}

func (d *decoder) ids() []entity.ID {
	n := d.count(4)
	if n == 0 {
		return nil
	}
	ids := make([]entity.ID, n)
	for i := range ids {
		ids[i] = entity.ID(d.u32())
	}
	return ids
}
