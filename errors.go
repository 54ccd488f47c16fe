package draft

import (
	"errors"
	"fmt"

	"github.com/gogpu/draft/protocol"
	"github.com/gogpu/draft/snapshot"
	"github.com/gogpu/draft/store"
	"github.com/gogpu/draft/transform"
)

// Engine errors.
var (
	// ErrInternal is returned when applying a buffer panicked. The buffer's
	// changes were rolled back.
	ErrInternal = errors.New("draft: internal error")

	// ErrNotText is returned by text editing calls on a non-text entity.
	ErrNotText = errors.New("draft: entity is not text")

	// ErrDraftActive is returned by BeginDraft while a draft is open.
	ErrDraftActive = errors.New("draft: draft already active")

	// ErrNoDraft is returned by draft calls without an open draft.
	ErrNoDraft = errors.New("draft: no active draft")

	// ErrNonFinite is returned by draft calls given a NaN or infinite
	// coordinate, or one that overflows float32. The draft is unchanged.
	ErrNonFinite = errors.New("draft: non-finite coordinate")

	// ErrDegenerate is returned when committing a draft that has too few
	// points to form its shape.
	ErrDegenerate = errors.New("draft: draft has too few points")
)

// Status is the numeric result code handed to hosts.
type Status int32

const (
	StatusOK Status = iota
	StatusProtocolError
	StatusSnapshotIncompatible
	StatusSessionState
	StatusReference
	StatusInvalidArgument
	StatusInternal
)

var statusNames = [...]string{
	"ok", "protocol_error", "snapshot_incompatible", "session_state",
	"reference", "invalid_argument", "internal",
}

func (s Status) String() string {
	if s >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", int32(s))
}

// StatusOf maps an error returned by the engine to a status code.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, protocol.ErrProtocol):
		return StatusProtocolError
	case errors.Is(err, snapshot.ErrIncompatible), errors.Is(err, snapshot.ErrCorrupt):
		return StatusSnapshotIncompatible
	case errors.Is(err, transform.ErrIdle), errors.Is(err, transform.ErrNoTargets),
		errors.Is(err, transform.ErrSessionActive), errors.Is(err, transform.ErrStale),
		errors.Is(err, ErrDraftActive), errors.Is(err, ErrNoDraft):
		return StatusSessionState
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrKindMismatch),
		errors.Is(err, store.ErrNoLayer), errors.Is(err, ErrNotText):
		return StatusReference
	case errors.Is(err, ErrInternal):
		return StatusInternal
	default:
		return StatusInvalidArgument
	}
}
