// Package entity defines the closed set of scene entity kinds.
//
// An Entity pairs a stable, non-zero ID with a Shape payload. Shape is a
// sealed interface: the only implementations are the ten pointer types in
// this package, and every operation over shapes (geometry, picking, codecs,
// tessellation) switches exhaustively over them.
package entity

import "fmt"

// ID identifies an entity. IDs are allocated by the host and never reused
// for a different kind while the entity is alive.
type ID uint32

// None is the universal "no entity" sentinel.
const None ID = 0

// LayerID identifies a layer in the document's layer table.
type LayerID uint32

// DefaultLayer always exists and cannot be deleted.
const DefaultLayer LayerID = 0

// LayerFlags control how entities on a layer behave.
type LayerFlags uint32

const (
	// LayerVisible layers are rendered and picked.
	LayerVisible LayerFlags = 1 << iota
	// LayerLocked layers are rendered but not picked.
	LayerLocked
)

// KnownLayerFlags is the set of defined layer flags.
const KnownLayerFlags = LayerVisible | LayerLocked

// Kind is the tag of the entity union.
type Kind uint8

// Kind constants. The numeric values are part of the wire and snapshot formats.
const (
	KindInvalid Kind = iota
	KindRect
	KindLine
	KindPolyline
	KindCircle
	KindPolygon
	KindArrow
	KindSymbol
	KindNode
	KindConduit
	KindText
)

// kindCount is one past the last valid kind.
const kindCount = KindText + 1

var kindNames = [...]string{
	KindInvalid:  "Invalid",
	KindRect:     "Rect",
	KindLine:     "Line",
	KindPolyline: "Polyline",
	KindCircle:   "Circle",
	KindPolygon:  "Polygon",
	KindArrow:    "Arrow",
	KindSymbol:   "Symbol",
	KindNode:     "Node",
	KindConduit:  "Conduit",
	KindText:     "Text",
}

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	if k.Valid() || k == KindInvalid {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Valid reports whether k names a concrete shape kind.
func (k Kind) Valid() bool {
	return k > KindInvalid && k < kindCount
}

// Kinds returns every valid kind in tag order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount-1)
	for k := KindRect; k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// Shape is the payload of an entity. It is implemented only by the shape
// types of this package.
type Shape interface {
	// Kind returns the union tag of the payload.
	Kind() Kind
	// Clone returns a deep copy.
	Clone() Shape

	isShape()
}

// Entity is a stored scene element.
type Entity struct {
	ID    ID
	Layer LayerID
	Shape Shape
}

// Kind returns the kind of the entity's payload, or KindInvalid if it has none.
func (e Entity) Kind() Kind {
	if e.Shape == nil {
		return KindInvalid
	}
	return e.Shape.Kind()
}

// Clone returns a deep copy of the entity.
func (e Entity) Clone() Entity {
	out := e
	if e.Shape != nil {
		out.Shape = e.Shape.Clone()
	}
	return out
}

// Equal reports whether two entities carry identical identity and payload.
// Nil and empty slices compare equal.
func Equal(a, b Entity) bool {
	if a.ID != b.ID || a.Layer != b.Layer {
		return false
	}
	return ShapeEqual(a.Shape, b.Shape)
}
