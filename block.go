package bitrank

import (
	"math/bits"
)

// Static sizing of the data structure. A block is the unit of rank-index
// granularity; a sub-block is one machine word, counted with a single
// hardware popcount.
const (
	bitsPerBlock      = 16384
	bitsPerSubBlock   = 64
	subBlocksPerBlock = bitsPerBlock / bitsPerSubBlock
)

// block holds a fixed-width window of the bit vector together with its
// local rank index. The bits within each word are stored from most
// significant bit (msb) to least significant bit (lsb), so index 0 of a
// block is 1<<63 of words[0].
//
// The index is stored alongside the raw bits because the common case is
// reading blocks back from disk (see the persistence layer): keeping
// everything a query needs in one contiguous record means one page fetch
// per query.
//
//	index:           [ 0, 1, 2, 3, 4, 5, 6, 7 ]
//	bits:            [ 0, 1, 0, 1, 1, 0, 1, 0 ]
//	rank(exclusive): [ 0, 0, 1, 1, 2, 3, 3, 4 ]
//	block rank:      [           0            ]
//	sub-block rank:  [     0     ][     2     ]
type block struct {
	// rank is the number of bits set in all previous blocks.
	rank uint64
	// subCounts[i] is the number of bits set in words[0..i].
	// subCounts[0] is always zero.
	subCounts [subBlocksPerBlock]uint16
	// words is the raw bit storage, one word per sub-block.
	words [subBlocksPerBlock]uint64
}

// set marks the bit at idx without updating subCounts; sub-block counts are
// computed once per block at finalization instead of on every insertion.
//
// A bit that is already set indicates that the input stream was invalid,
// most likely containing duplicate or unsorted positions.
func (b *block) set(idx int) error {
	word := idx / bitsPerSubBlock
	mask := uint64(1) << (bitsPerSubBlock - 1 - idx%bitsPerSubBlock)
	if b.words[word]&mask != 0 {
		return ErrDuplicatePosition
	}
	b.words[word] |= mask
	return nil
}

// finalizeSubCounts computes the running sub-block counts and returns the
// total rank of the block, which is the starting rank of the next block.
func (b *block) finalizeSubCounts() uint64 {
	var local uint16
	for i, w := range b.words {
		b.subCounts[i] = local
		local += uint16(bits.OnesCount64(w))
	}
	return b.rank + uint64(local)
}

// rankSelect returns the rank at localIdx (exclusive) and the index of the
// one bit that establishes that rank, if it occurs within the same
// sub-block. When the establishing bit lies in an earlier sub-block, ok is
// false: at that distance a binary search over the original sorted data is
// cheaper than the extra indices constant-time select would require.
func (b *block) rankSelect(localIdx int) (rank, sel int, ok bool) {
	sub := localIdx / bitsPerSubBlock
	rank = int(b.rank) + int(b.subCounts[sub])

	rem := localIdx % bitsPerSubBlock

	var masked uint64
	if rem != 0 {
		// Bits strictly before localIdx: msb-first order turns "before"
		// into a right shift.
		masked = b.words[sub] >> (bitsPerSubBlock - rem)
	}
	rank += bits.OnesCount64(masked)
	if masked == 0 {
		return rank, 0, false
	}
	return rank, localIdx - bits.TrailingZeros64(masked) - 1, true
}

// totalRank is the rank just past the end of the block. The last sub-count
// covers every word but the final one, whose population is added directly.
func (b *block) totalRank() int {
	return int(b.rank) +
		int(b.subCounts[subBlocksPerBlock-1]) +
		bits.OnesCount64(b.words[subBlocksPerBlock-1])
}

// popCount recounts the whole block from the raw words, ignoring subCounts.
// Snapshot loading uses it to cross-check the persisted index.
func (b *block) popCount() int {
	var n int
	for _, w := range b.words {
		n += bits.OnesCount64(w)
	}
	return n
}
