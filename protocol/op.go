package protocol

import (
	"fmt"

	"github.com/gogpu/draft/entity"
)

// Magic identifies a command buffer ("DRFT" in byte order).
const Magic uint32 = 'D' | 'R'<<8 | 'F'<<16 | 'T'<<24

// Version is the command protocol version understood by this build.
const Version uint32 = 1

// Header sizes in bytes.
const (
	BufferHeaderSize  = 16
	CommandHeaderSize = 16
)

// Op is a command op code.
type Op uint32

// Op codes. Values are part of the wire format.
const (
	OpClearAll Op = 1

	OpUpsertRect     Op = 10
	OpUpsertLine     Op = 11
	OpUpsertPolyline Op = 12
	OpUpsertCircle   Op = 13
	OpUpsertPolygon  Op = 14
	OpUpsertArrow    Op = 15
	OpUpsertSymbol   Op = 16
	OpUpsertNode     Op = 17
	OpUpsertConduit  Op = 18
	OpUpsertText     Op = 19

	OpDeleteEntity Op = 20
	OpDeleteText   Op = 21

	OpSetDrawOrder Op = 30
	OpReorder      Op = 31

	OpSetViewScale   Op = 40
	OpUpsertLayer    Op = 41
	OpDeleteLayer    Op = 42
	OpSetEntityLayer Op = 43

	OpSetTextCaret      Op = 50
	OpSetTextSelection  Op = 51
	OpInsertTextContent Op = 52
	OpDeleteTextContent Op = 53

	OpBeginDraft       Op = 60
	OpUpdateDraft      Op = 61
	OpAppendDraftPoint Op = 62
	OpCommitDraft      Op = 63
	OpCancelDraft      Op = 64
)

var opNames = map[Op]string{
	OpClearAll:          "ClearAll",
	OpUpsertRect:        "UpsertRect",
	OpUpsertLine:        "UpsertLine",
	OpUpsertPolyline:    "UpsertPolyline",
	OpUpsertCircle:      "UpsertCircle",
	OpUpsertPolygon:     "UpsertPolygon",
	OpUpsertArrow:       "UpsertArrow",
	OpUpsertSymbol:      "UpsertSymbol",
	OpUpsertNode:        "UpsertNode",
	OpUpsertConduit:     "UpsertConduit",
	OpUpsertText:        "UpsertText",
	OpDeleteEntity:      "DeleteEntity",
	OpDeleteText:        "DeleteText",
	OpSetDrawOrder:      "SetDrawOrder",
	OpReorder:           "Reorder",
	OpSetViewScale:      "SetViewScale",
	OpUpsertLayer:       "UpsertLayer",
	OpDeleteLayer:       "DeleteLayer",
	OpSetEntityLayer:    "SetEntityLayer",
	OpSetTextCaret:      "SetTextCaret",
	OpSetTextSelection:  "SetTextSelection",
	OpInsertTextContent: "InsertTextContent",
	OpDeleteTextContent: "DeleteTextContent",
	OpBeginDraft:        "BeginDraft",
	OpUpdateDraft:       "UpdateDraft",
	OpAppendDraftPoint:  "AppendDraftPoint",
	OpCommitDraft:       "CommitDraft",
	OpCancelDraft:       "CancelDraft",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("Op(%d)", uint32(o))
}

// Known reports whether this build implements the op.
func (o Op) Known() bool {
	_, ok := opNames[o]
	return ok
}

// UpsertOp returns the upsert op for a kind.
func UpsertOp(k entity.Kind) (Op, bool) {
	if !k.Valid() {
		return 0, false
	}
	return OpUpsertRect + Op(k-entity.KindRect), true
}

// UpsertKind returns the kind an upsert op creates.
func (o Op) UpsertKind() (entity.Kind, bool) {
	if o < OpUpsertRect || o > OpUpsertText {
		return entity.KindInvalid, false
	}
	return entity.KindRect + entity.Kind(o-OpUpsertRect), true
}

// Mutating reports whether the op can change document content (and so
// belongs in history). View-state and draft preview ops do not.
func (o Op) Mutating() bool {
	switch o {
	case OpSetViewScale, OpSetTextCaret, OpSetTextSelection,
		OpBeginDraft, OpUpdateDraft, OpAppendDraftPoint, OpCancelDraft:
		return false
	}
	return o.Known()
}

// ReorderAction selects a draw-order permutation.
type ReorderAction uint32

const (
	BringToFront ReorderAction = iota + 1
	SendToBack
	BringForward
	SendBackward
)

func (a ReorderAction) String() string {
	switch a {
	case BringToFront:
		return "BringToFront"
	case SendToBack:
		return "SendToBack"
	case BringForward:
		return "BringForward"
	case SendBackward:
		return "SendBackward"
	default:
		return fmt.Sprintf("ReorderAction(%d)", uint32(a))
	}
}

// Valid reports whether a is a defined action.
func (a ReorderAction) Valid() bool {
	return a >= BringToFront && a <= SendBackward
}
