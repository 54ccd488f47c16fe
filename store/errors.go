package store

import "errors"

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when an operation names an id that is not stored.
	ErrNotFound = errors.New("store: no such entity")

	// ErrKindMismatch is returned when an upsert would change an entity's kind.
	ErrKindMismatch = errors.New("store: upsert cannot change entity kind")

	// ErrInvalidID is returned for the null id.
	ErrInvalidID = errors.New("store: invalid id")

	// ErrNilShape is returned when an upsert carries no payload.
	ErrNilShape = errors.New("store: nil shape")

	// ErrNonFinite is returned when a payload holds a NaN or infinite value.
	ErrNonFinite = errors.New("store: non-finite coordinate")

	// ErrNoLayer is returned when an entity is assigned to an unknown layer.
	ErrNoLayer = errors.New("store: no such layer")

	// ErrDefaultLayer is returned when deleting the default layer.
	ErrDefaultLayer = errors.New("store: the default layer cannot be deleted")

	// ErrRecording is returned by BeginRecord when a recording is already open.
	ErrRecording = errors.New("store: recording already in progress")

	// ErrInvalidDocument is returned by Replace for an inconsistent document.
	ErrInvalidDocument = errors.New("store: invalid document")
)
