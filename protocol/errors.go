package protocol

import (
	"errors"
	"fmt"
)

// ErrProtocol is matched by every decoding failure.
var ErrProtocol = errors.New("protocol: malformed command buffer")

// Specific decoding failures. Each wraps ErrProtocol.
var (
	ErrBadMagic  = fmt.Errorf("%w: bad magic", ErrProtocol)
	ErrVersion   = fmt.Errorf("%w: unsupported version", ErrProtocol)
	ErrTruncated = fmt.Errorf("%w: truncated", ErrProtocol)
	ErrMalformed = fmt.Errorf("%w: invalid payload", ErrProtocol)
	ErrTrailing  = fmt.Errorf("%w: trailing bytes", ErrProtocol)
)

// ErrUnknownOp describes an op this build does not implement. It is reported
// through Batch.Skipped rather than returned.
var ErrUnknownOp = errors.New("protocol: unknown op")

// Error is a decoding failure with its location in the buffer.
type Error struct {
	// Offset is the byte offset at which the problem was detected.
	Offset int
	// Index is the command index, or -1 for the buffer header.
	Index int
	// Op is the op being decoded, if any.
	Op Op
	// Reason is a short human-readable description.
	Reason string
	// Err is one of the sentinel errors above.
	Err error
}

func (e *Error) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%v at offset %d: %s", e.Err, e.Offset, e.Reason)
	}
	return fmt.Sprintf("%v in command %d (%s) at offset %d: %s", e.Err, e.Index, e.Op, e.Offset, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }
