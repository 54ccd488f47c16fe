package protocol

import "github.com/gogpu/draft/entity"

// Command is one decoded command. Target holds the entity, layer or draft id
// the op addresses; Payload is nil for ops without one.
type Command struct {
	Op      Op
	Target  uint32
	Payload Payload
}

// ID returns Target as an entity id.
func (c Command) ID() entity.ID { return entity.ID(c.Target) }

// Payload is the decoded body of a command. It is implemented only by the
// payload types of this package.
type Payload interface {
	isPayload()
}

// Upsert carries the shape of an upsert op. The shape's kind matches the op.
type Upsert struct {
	Shape entity.Shape
}

// DrawOrder is the full order requested by SetDrawOrder.
type DrawOrder struct {
	IDs []entity.ID
}

// Reorder moves IDs within the draw order.
type Reorder struct {
	Action ReorderAction
	IDs    []entity.ID
}

// ViewScale sets the screen pixels per world unit used by picking.
type ViewScale struct {
	Scale float32
}

// Layer creates or replaces the layer named by the command target.
type Layer struct {
	Flags entity.LayerFlags
	Style entity.Style
	Name  string
}

// LayerRef moves the target entity to Layer.
type LayerRef struct {
	Layer entity.LayerID
}

// Caret places the text caret at a byte offset.
type Caret struct {
	Offset uint32
}

// TextRange is a byte range of text content, used for selection and deletion.
type TextRange struct {
	Start, End uint32
}

// TextInsert inserts UTF-8 data at byte offset At.
type TextInsert struct {
	At   uint32
	Data []byte
}

// DraftBegin starts an ephemeral shape of Kind at (X, Y).
type DraftBegin struct {
	Kind  entity.Kind
	X, Y  float32
	Style entity.Style
	Sides uint32
	Head  float32
}

// DraftPoint is the pointer position for UpdateDraft and AppendDraftPoint.
type DraftPoint struct {
	X, Y float32
}

func (*Upsert) isPayload()     {}
func (*DrawOrder) isPayload()  {}
func (*Reorder) isPayload()    {}
func (*ViewScale) isPayload()  {}
func (*Layer) isPayload()      {}
func (*LayerRef) isPayload()   {}
func (*Caret) isPayload()      {}
func (*TextRange) isPayload()  {}
func (*TextInsert) isPayload() {}
func (*DraftBegin) isPayload() {}
func (*DraftPoint) isPayload() {}

// Batch is the result of decoding one buffer.
type Batch struct {
	Commands []Command
	Skipped  []Skipped
}

// Skipped records an unknown op that was stepped over.
type Skipped struct {
	Index  int
	Op     Op
	Offset int
	Length uint32
}
