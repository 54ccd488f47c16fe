package protocol

import (
	"encoding/binary"
	"math"
)

// reader decodes little-endian fields from a single payload. It never reads
// past the end of buf; the first failure sticks and later reads return zero
// values.
type reader struct {
	buf  []byte
	off  int
	base int // offset of buf within the whole buffer, for errors
	err  string
}

func (r *reader) fail(reason string) {
	if r.err == "" {
		r.err = reason
	}
}

func (r *reader) remaining() int { return len(r.buf) - r.off }

func (r *reader) u32() uint32 {
	if r.err != "" {
		return 0
	}
	if r.remaining() < 4 {
		r.fail("field extends past payload")
		return 0
	}
	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v
}

func (r *reader) f32() float32 {
	v := math.Float32frombits(r.u32())
	if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
		r.fail("non-finite float")
		return 0
	}
	return v
}

// bytes returns the next n bytes without copying.
func (r *reader) bytes(n uint32) []byte {
	if r.err != "" {
		return nil
	}
	if uint64(n) > uint64(r.remaining()) {
		r.fail("length extends past payload")
		return nil
	}
	b := r.buf[r.off : r.off+int(n)]
	r.off += int(n)
	return b
}

// count reads an element count and checks that count elements of elemSize
// bytes fit in what is left of the payload.
func (r *reader) count(elemSize int) uint32 {
	n := r.u32()
	if r.err != "" {
		return 0
	}
	if uint64(n)*uint64(elemSize) > uint64(r.remaining()) {
		r.fail("count exceeds payload")
		return 0
	}
	return n
}

// done fails unless every payload byte was consumed.
func (r *reader) done() {
	if r.err == "" && r.remaining() != 0 {
		r.fail("unexpected payload size")
	}
}

func appendU32(dst []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(dst, v)
}

func appendF32(dst []byte, v float32) []byte {
	return binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
}
