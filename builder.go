package bitrank

import (
	"fmt"
)

// Builder constructs a BitRank from a strictly increasing stream of
// positions. It is write-only and single-threaded; Finish consumes it and
// hands exclusive ownership of the block storage to the returned BitRank.
//
// Example:
//
//	b := bitrank.NewBuilder()
//	_ = b.Push(17)
//	_ = b.Push(23)
//	_ = b.Push(102)
//	set := b.Finish()
//	// set.Rank(100) == 2
type Builder struct {
	blocks   []block
	logger   *Logger
	finished bool
}

// NewBuilder returns a new Builder. Use WithCapacity when the largest
// position is known up front to avoid reallocation during the build.
func NewBuilder(optFns ...func(*Options)) *Builder {
	o := applyOptions(optFns)

	var blocks []block
	if o.Capacity > 0 {
		blocks = make([]block, 0, (o.Capacity+bitsPerBlock-1)/bitsPerBlock)
	}

	return &Builder{
		blocks: blocks,
		logger: o.Logger,
	}
}

// finishLastBlock computes the sub-block counts of the most recent block
// and returns the running rank that seeds any block appended after it.
func (b *Builder) finishLastBlock() uint64 {
	if len(b.blocks) == 0 {
		return 0
	}
	return b.blocks[len(b.blocks)-1].finalizeSubCounts()
}

// Push adds a position to the set. Positions must be pushed in strictly
// increasing order; a violation returns ErrPositionOrder or
// ErrDuplicatePosition and leaves the build unusable.
//
// Blocks between the previous and the new position are materialized as
// all-zero blocks carrying the running rank, so block lookup by division
// stays valid across arbitrarily large unset ranges.
func (b *Builder) Push(position int) error {
	if b.finished {
		return ErrBuilderFinished
	}
	if position < 0 {
		return fmt.Errorf("%w: negative position %d", ErrPositionOrder, position)
	}

	blockID := position / bitsPerBlock
	if blockID+1 < len(b.blocks) {
		// The target block was finalized when a later block was created,
		// so this position is out of order.
		return fmt.Errorf("%w: position %d", ErrPositionOrder, position)
	}

	if blockID >= len(b.blocks) {
		currRank := b.finishLastBlock()
		for blockID >= len(b.blocks) {
			b.blocks = append(b.blocks, block{rank: currRank})
		}
	}

	if err := b.blocks[len(b.blocks)-1].set(position % bitsPerBlock); err != nil {
		return fmt.Errorf("%w: position %d", err, position)
	}

	return nil
}

// Finish finalizes the last block and returns the immutable BitRank.
// The builder is consumed: any later Push returns ErrBuilderFinished.
func (b *Builder) Finish() *BitRank {
	b.finishLastBlock()

	br := &BitRank{
		blocks: b.blocks,
		logger: b.logger,
	}

	b.blocks = nil
	b.finished = true

	b.logger.LogFinish(len(br.blocks), br.MaxRank())

	return br
}
