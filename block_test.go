package bitrank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockSet(t *testing.T) {
	t.Run("MSBFirst", func(t *testing.T) {
		var b block

		require.NoError(t, b.set(0))
		assert.Equal(t, uint64(1)<<63, b.words[0])

		require.NoError(t, b.set(63))
		assert.Equal(t, uint64(1)<<63|1, b.words[0])

		require.NoError(t, b.set(64))
		assert.Equal(t, uint64(1)<<63, b.words[1])
	})

	t.Run("Duplicate", func(t *testing.T) {
		var b block

		require.NoError(t, b.set(100))
		err := b.set(100)
		require.ErrorIs(t, err, ErrDuplicatePosition)
	})
}

func TestBlockFinalizeSubCounts(t *testing.T) {
	var b block
	b.rank = 7

	for _, idx := range []int{0, 1, 63, 64, 200, 16383} {
		require.NoError(t, b.set(idx))
	}

	total := b.finalizeSubCounts()
	assert.Equal(t, uint64(7+6), total)

	// subCounts[i] must equal the population of words[0..i].
	assert.Equal(t, uint16(0), b.subCounts[0])
	assert.Equal(t, uint16(3), b.subCounts[1]) // 0, 1, 63
	assert.Equal(t, uint16(4), b.subCounts[2]) // + 64
	assert.Equal(t, uint16(5), b.subCounts[4]) // + 200
	assert.Equal(t, uint16(5), b.subCounts[subBlocksPerBlock-1])
}

func TestBlockTotalRankConsistency(t *testing.T) {
	// totalRank (via subCounts) and popCount (via raw words) are two
	// computation paths for the same quantity; they must agree.
	var b block
	b.rank = 42

	positions := []int{0, 5, 64, 127, 128, 8191, 8192, 16383}
	for _, idx := range positions {
		require.NoError(t, b.set(idx))
	}
	b.finalizeSubCounts()

	assert.Equal(t, 42+len(positions), b.totalRank())
	assert.Equal(t, len(positions), b.popCount())
}

func TestBlockRankSelect(t *testing.T) {
	var b block
	b.rank = 10

	for _, idx := range []int{3, 60, 70, 130} {
		require.NoError(t, b.set(idx))
	}
	b.finalizeSubCounts()

	t.Run("WithinSubBlock", func(t *testing.T) {
		rank, sel, ok := b.rankSelect(61)
		assert.Equal(t, 12, rank)
		require.True(t, ok)
		assert.Equal(t, 60, sel)
	})

	t.Run("SubBlockBoundary", func(t *testing.T) {
		// Local index 64 starts a new sub-block: no bits of that
		// sub-block precede it, so there is no local witness even though
		// bit 60 is set just before.
		rank, _, ok := b.rankSelect(64)
		assert.Equal(t, 12, rank)
		assert.False(t, ok)
	})

	t.Run("ZeroRun", func(t *testing.T) {
		// Bits before 200 in sub-block 3 are all zero; the witness (130)
		// is in an earlier sub-block and must not be reported.
		rank, _, ok := b.rankSelect(200)
		assert.Equal(t, 14, rank)
		assert.False(t, ok)
	})

	t.Run("IndexZero", func(t *testing.T) {
		rank, _, ok := b.rankSelect(0)
		assert.Equal(t, 10, rank)
		assert.False(t, ok)
	})
}
