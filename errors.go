package bitrank

import "errors"

var (
	// ErrPositionOrder is returned by Builder.Push when a position is
	// negative or targets a block that has already been finalized.
	// Positions must be pushed in strictly increasing order.
	ErrPositionOrder = errors.New("bitrank: positions must be pushed in increasing order")

	// ErrDuplicatePosition is returned by Builder.Push when the target bit
	// is already set, which indicates duplicate or unsorted input.
	ErrDuplicatePosition = errors.New("bitrank: position already set")

	// ErrBuilderFinished is returned by Builder.Push after Finish has been
	// called. A finished builder cannot be reused; start a new one.
	ErrBuilderFinished = errors.New("bitrank: builder already finished")

	// ErrNotMappable is returned by OpenFile for a compressed snapshot.
	// Zero-copy access needs the raw block layout; use LoadFromFile
	// instead, or save with CompressionNone.
	ErrNotMappable = errors.New("bitrank: compressed snapshots cannot be memory-mapped")
)

// There is deliberately no recovery from a failed Push: the underlying bit
// cannot distinguish "already present" from "corrupted state", so a build
// that observed any of the errors above must be discarded and restarted.
