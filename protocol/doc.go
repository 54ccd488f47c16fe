// Package protocol implements the framed binary command stream that hosts
// use to edit a document.
//
// # Wire format
//
// All integers and floats are little-endian. A buffer starts with a 16-byte
// header:
//
//	magic    u32  "DRFT"
//	version  u32  Version
//	count    u32  number of commands
//	reserved u32
//
// followed by count commands, each a 16-byte header
//
//	op       u32
//	target   u32  entity, layer or draft id (0 when unused)
//	length   u32  payload byte count
//	reserved u32
//
// and exactly length payload bytes. Fixed-size payloads must match their
// size exactly. Variable payloads carry inner counts that are checked against
// the declared length before any element is read.
//
// Decode validates the whole buffer before returning anything, so a caller
// that applies only decoded batches never applies half of a malformed one.
// Ops this build does not recognize are skipped by their declared length and
// reported in Batch.Skipped.
//
// Shape payloads are shared with the snapshot format through AppendShape and
// ParseShape.
package protocol
