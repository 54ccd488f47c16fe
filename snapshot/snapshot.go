// Package snapshot saves and loads whole documents.
//
// A snapshot is versioned independently of the command protocol. Layout,
// little-endian:
//
//	header     magic "DRSN" u32 | version u32 | flags u32 | reserved u32
//	generation u64
//	layers     count u32, then {id u32, flags u32, style 16B, nameLen u32, name}
//	entities   count u32, then {id u32, kind u32, layer u32, len u32, payload}
//	order      count u32, then ids
//	selection  count u32, then ids
//	checksum   32-byte BLAKE3 of everything before it
//
// Entity payloads use the shape encoding of the command protocol. Load checks
// the header, then the checksum, then parses into a staging document that is
// validated and swapped in only when complete.
package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"lukechampine.com/blake3"

	"github.com/gogpu/draft/entity"
	"github.com/gogpu/draft/protocol"
	"github.com/gogpu/draft/store"
)

const (
	// Magic is "DRSN" read as a little-endian u32.
	Magic uint32 = 'D' | 'R'<<8 | 'S'<<16 | 'N'<<24
	// Version is the snapshot format version written by Encode.
	Version uint32 = 1

	headerSize   = 16
	checksumSize = 32
)

var (
	// ErrIncompatible is returned for a buffer that is not a snapshot this
	// build can read: bad magic, unknown version or flags.
	ErrIncompatible = errors.New("snapshot: incompatible snapshot")

	// ErrCorrupt is returned for a snapshot with a valid header whose body
	// fails the checksum or does not parse into a consistent document.
	ErrCorrupt = errors.New("snapshot: corrupt snapshot")
)

// Header is the fixed prefix of a snapshot plus its table sizes.
type Header struct {
	Version    uint32
	Flags      uint32
	Generation uint64
	Layers     int
	Entities   int
}

// Save encodes the current content of st.
func Save(st *store.Store) []byte {
	return Encode(st.Document())
}

// Load decodes buf and replaces the content of st with it. On any error st
// is unchanged.
func Load(st *store.Store, buf []byte) error {
	doc, err := Decode(buf)
	if err != nil {
		return err
	}
	if err := st.Replace(doc); err != nil {
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return nil
}

// Encode serializes doc.
func Encode(doc store.Document) []byte {
	b := make([]byte, 0, 64+len(doc.Entities)*48)
	b = binary.LittleEndian.AppendUint32(b, Magic)
	b = binary.LittleEndian.AppendUint32(b, Version)
	b = binary.LittleEndian.AppendUint32(b, 0)
	b = binary.LittleEndian.AppendUint32(b, 0)
	b = binary.LittleEndian.AppendUint64(b, doc.Generation)

	b = appendLen(b, len(doc.Layers))
	for _, l := range doc.Layers {
		b = binary.LittleEndian.AppendUint32(b, uint32(l.ID))
		b = binary.LittleEndian.AppendUint32(b, uint32(l.Flags))
		b = appendStyle(b, l.Style)
		b = appendLen(b, len(l.Name))
		b = append(b, l.Name...)
	}

	b = appendLen(b, len(doc.Entities))
	for _, e := range doc.Entities {
		b = binary.LittleEndian.AppendUint32(b, uint32(e.ID))
		b = binary.LittleEndian.AppendUint32(b, uint32(e.Kind()))
		b = binary.LittleEndian.AppendUint32(b, uint32(e.Layer))
		at := len(b)
		b = binary.LittleEndian.AppendUint32(b, 0)
		b = protocol.AppendShape(b, e.Shape)
		binary.LittleEndian.PutUint32(b[at:], uint32(len(b)-at-4)) //nolint:gosec // payloads are far below 4 GiB
	}

	b = appendIDs(b, doc.Order)
	b = appendIDs(b, doc.Selection)
	sum := blake3.Sum256(b)
	return append(b, sum[:]...)
}

// Peek reads the header and table sizes without verifying the checksum.
func Peek(buf []byte) (Header, error) {
	if err := checkHeader(buf); err != nil {
		return Header{}, err
	}
	d := &decoder{buf: buf[:len(buf)-checksumSize], off: headerSize}
	h := Header{
		Version:    binary.LittleEndian.Uint32(buf[4:]),
		Flags:      binary.LittleEndian.Uint32(buf[8:]),
		Generation: d.u64(),
	}
	h.Layers = d.count(28)
	for i := 0; i < h.Layers && d.err == nil; i++ {
		d.skip(24)
		d.skip(d.count(1))
	}
	h.Entities = d.count(16)
	if d.err != nil {
		return Header{}, d.err
	}
	return h, nil
}

// Decode parses buf into a validated document.
func Decode(buf []byte) (store.Document, error) {
	if err := checkHeader(buf); err != nil {
		return store.Document{}, err
	}
	body := buf[:len(buf)-checksumSize]
	if sum := blake3.Sum256(body); string(sum[:]) != string(buf[len(body):]) {
		return store.Document{}, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}

	d := &decoder{buf: body, off: headerSize}
	var doc store.Document
	doc.Generation = d.u64()

	n := d.count(28)
	for i := 0; i < n && d.err == nil; i++ {
		l := store.Layer{ID: entity.LayerID(d.u32()), Flags: entity.LayerFlags(d.u32())}
		l.Style = d.style()
		name := d.bytes(d.count(1))
		if len(name) > protocol.MaxLayerNameLen || !utf8.Valid(name) {
			d.fail("layer %d: bad name", l.ID)
		}
		if l.Flags&^entity.KnownLayerFlags != 0 {
			d.fail("layer %d: unknown flags %#x", l.ID, uint32(l.Flags))
		}
		l.Name = string(name)
		doc.Layers = append(doc.Layers, l)
	}

	n = d.count(16)
	for i := 0; i < n && d.err == nil; i++ {
		id := entity.ID(d.u32())
		kind := d.u32()
		layer := entity.LayerID(d.u32())
		payload := d.bytes(d.count(1))
		if d.err != nil {
			break
		}
		if kind > math.MaxUint8 || !entity.Kind(kind).Valid() {
			d.fail("entity %d: unknown kind %d", id, kind)
			break
		}
		shape, err := protocol.ParseShape(entity.Kind(kind), payload)
		if err != nil {
			d.fail("entity %d: %v", id, err)
			break
		}
		doc.Entities = append(doc.Entities, entity.Entity{ID: id, Layer: layer, Shape: shape})
	}

	doc.Order = d.ids()
	doc.Selection = d.ids()
	if d.err == nil && d.off != len(d.buf) {
		d.fail("%d trailing bytes", len(d.buf)-d.off)
	}
	if d.err != nil {
		return store.Document{}, d.err
	}
	if err := doc.Validate(); err != nil {
		return store.Document{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return doc, nil
}

func checkHeader(buf []byte) error {
	if len(buf) < headerSize {
		return fmt.Errorf("%w: %d bytes", ErrIncompatible, len(buf))
	}
	if m := binary.LittleEndian.Uint32(buf); m != Magic {
		return fmt.Errorf("%w: magic %#08x", ErrIncompatible, m)
	}
	if v := binary.LittleEndian.Uint32(buf[4:]); v != Version {
		return fmt.Errorf("%w: version %d", ErrIncompatible, v)
	}
	if f := binary.LittleEndian.Uint32(buf[8:]); f != 0 {
		return fmt.Errorf("%w: flags %#x", ErrIncompatible, f)
	}
	if len(buf) < headerSize+8+checksumSize {
		return fmt.Errorf("%w: truncated", ErrCorrupt)
	}
	return nil
}

func appendLen(b []byte, n int) []byte {
	return binary.LittleEndian.AppendUint32(b, uint32(n)) //nolint:gosec // table sizes fit u32
}

func appendIDs(b []byte, ids []entity.ID) []byte {
	b = appendLen(b, len(ids))
	for _, id := range ids {
		b = binary.LittleEndian.AppendUint32(b, uint32(id))
	}
	return b
}

func appendStyle(b []byte, s entity.Style) []byte {
	b = binary.LittleEndian.AppendUint32(b, uint32(s.Fill))
	b = binary.LittleEndian.AppendUint32(b, uint32(s.Stroke))
	b = binary.LittleEndian.AppendUint32(b, math.Float32bits(s.StrokeWidth))
	return binary.LittleEndian.AppendUint32(b, uint32(s.Flags))
}
