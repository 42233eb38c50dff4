package bitrank

import (
	"unsafe"

	"github.com/RoaringBitmap/roaring/v2"
)

// BitRank is an immutable set of non-negative integers with an efficient
// Rank method. It holds no mutable state after Finish, so any number of
// goroutines may query it concurrently without synchronization.
type BitRank struct {
	blocks []block
	logger *Logger
}

// Rank returns the number of elements strictly less than idx.
//
// An idx beyond the built span is not an error: every element precedes it,
// so the result saturates to MaxRank.
func (br *BitRank) Rank(idx int) int {
	rank, _, _ := br.RankSelect(idx)
	return rank
}

// MaxRank returns the number of elements in the set.
func (br *BitRank) MaxRank() int {
	if len(br.blocks) == 0 {
		return 0
	}
	return br.blocks[len(br.blocks)-1].totalRank()
}

// RankSelect returns the rank at idx (exclusive) and the position of the
// one bit that establishes that rank, if it occurs within the same
// sub-block. ok is false when the establishing bit lies further back; the
// caller should then resolve the position from the ordered data the set was
// built from, which is cheaper than the indices a general constant-time
// select would need.
func (br *BitRank) RankSelect(idx int) (rank, pos int, ok bool) {
	if idx < 0 {
		return 0, 0, false
	}

	blockNum := idx / bitsPerBlock
	if blockNum >= len(br.blocks) {
		return br.MaxRank(), 0, false
	}

	rank, local, ok := br.blocks[blockNum].rankSelect(idx % bitsPerBlock)
	if !ok {
		return rank, 0, false
	}
	return rank, blockNum*bitsPerBlock + local, true
}

// FromBitmap builds a BitRank from the set bits of a roaring bitmap.
// Roaring iterates in increasing order, which is exactly the input
// contract of the Builder.
func FromBitmap(rb *roaring.Bitmap, optFns ...func(*Options)) (*BitRank, error) {
	if rb == nil || rb.IsEmpty() {
		return NewBuilder(optFns...).Finish(), nil
	}

	optFns = append([]func(*Options){WithCapacity(int(rb.Maximum()) + 1)}, optFns...)
	b := NewBuilder(optFns...)

	it := rb.Iterator()
	for it.HasNext() {
		if err := b.Push(int(it.Next())); err != nil {
			return nil, err
		}
	}

	return b.Finish(), nil
}

// Stats describes the finished structure.
type Stats struct {
	// Blocks is the number of materialized blocks, including all-zero
	// gap blocks.
	Blocks int
	// MaxRank is the number of elements in the set.
	MaxRank int
	// SizeBytes is the in-memory size of the block storage.
	SizeBytes int
}

// Stats returns size and occupancy information.
func (br *BitRank) Stats() Stats {
	return Stats{
		Blocks:    len(br.blocks),
		MaxRank:   br.MaxRank(),
		SizeBytes: len(br.blocks) * int(unsafe.Sizeof(block{})),
	}
}
