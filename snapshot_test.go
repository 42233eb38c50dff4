package bitrank

import (
	"bytes"
	"math/rand"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/bitrank/persistence"
)

func testPositions(t *testing.T, n, span int) []int {
	t.Helper()

	rng := rand.New(rand.NewSource(42))
	positions := make([]int, 0, n)
	for i := 0; i < n; i++ {
		positions = append(positions, rng.Intn(span))
	}
	sort.Ints(positions)
	return dedup(positions)
}

func requireSameRanks(t *testing.T, want, got *BitRank, span int) {
	t.Helper()

	require.Equal(t, want.MaxRank(), got.MaxRank())
	for i := 0; i < span; i += 131 {
		wantRank, wantSel, wantOK := want.RankSelect(i)
		gotRank, gotSel, gotOK := got.RankSelect(i)
		require.Equal(t, wantRank, gotRank, "rank at %d", i)
		require.Equal(t, wantOK, gotOK, "select ok at %d", i)
		require.Equal(t, wantSel, gotSel, "select at %d", i)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	const span = 500_000
	positions := testPositions(t, 10_000, span)
	br := buildFrom(t, positions...)

	compressions := map[string]persistence.Compression{
		"None": persistence.CompressionNone,
		"LZ4":  persistence.CompressionLZ4,
		"ZSTD": persistence.CompressionZSTD,
	}

	for name, comp := range compressions {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, br.SaveToWriter(&buf, WithCompression(comp)))

			loaded, err := LoadFromReader(bytes.NewReader(buf.Bytes()))
			require.NoError(t, err)

			requireSameRanks(t, br, loaded, span+bitsPerBlock)
		})
	}
}

func TestSnapshotRoundTripEmpty(t *testing.T) {
	br := NewBuilder().Finish()

	var buf bytes.Buffer
	require.NoError(t, br.SaveToWriter(&buf))
	assert.Equal(t, persistence.HeaderSize, buf.Len())

	loaded, err := LoadFromReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.MaxRank())
	assert.Equal(t, 0, loaded.Rank(999))
}

func TestSnapshotFileRoundTrip(t *testing.T) {
	const span = 200_000
	positions := testPositions(t, 5_000, span)
	br := buildFrom(t, positions...)

	path := filepath.Join(t.TempDir(), "set.brk")
	require.NoError(t, br.SaveToFile(path, WithCompression(persistence.CompressionZSTD)))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)

	requireSameRanks(t, br, loaded, span+bitsPerBlock)
}

func TestSnapshotMmap(t *testing.T) {
	const span = 200_000
	positions := testPositions(t, 5_000, span)
	br := buildFrom(t, positions...)

	path := filepath.Join(t.TempDir(), "set.brk")
	require.NoError(t, br.SaveToFile(path))

	snap, err := OpenFile(path)
	require.NoError(t, err)

	requireSameRanks(t, br, snap.BitRank(), span+bitsPerBlock)

	require.NoError(t, snap.Close())
}

func TestSnapshotMmapEmpty(t *testing.T) {
	br := NewBuilder().Finish()

	path := filepath.Join(t.TempDir(), "empty.brk")
	require.NoError(t, br.SaveToFile(path))

	snap, err := OpenFile(path)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.BitRank().MaxRank())
	require.NoError(t, snap.Close())
}

func TestSnapshotMmapRejectsCompressed(t *testing.T) {
	br := buildFrom(t, testPositions(t, 1_000, 100_000)...)

	path := filepath.Join(t.TempDir(), "set.brk")
	require.NoError(t, br.SaveToFile(path, WithCompression(persistence.CompressionZSTD)))

	_, err := OpenFile(path)
	require.ErrorIs(t, err, ErrNotMappable)
}

func TestSnapshotCorruption(t *testing.T) {
	br := buildFrom(t, testPositions(t, 1_000, 100_000)...)

	var buf bytes.Buffer
	require.NoError(t, br.SaveToWriter(&buf))
	data := buf.Bytes()

	t.Run("BadMagic", func(t *testing.T) {
		corrupted := bytes.Clone(data)
		corrupted[0] ^= 0xFF

		_, err := LoadFromReader(bytes.NewReader(corrupted))
		require.ErrorIs(t, err, persistence.ErrInvalidMagic)
	})

	t.Run("FlippedPayloadBit", func(t *testing.T) {
		corrupted := bytes.Clone(data)
		corrupted[persistence.HeaderSize+100] ^= 0x01

		_, err := LoadFromReader(bytes.NewReader(corrupted))
		require.True(t, persistence.IsChecksumMismatch(err), "got %v", err)
	})

	t.Run("Truncated", func(t *testing.T) {
		_, err := LoadFromReader(bytes.NewReader(data[:len(data)-10]))
		require.ErrorIs(t, err, persistence.ErrTruncated)
	})
}
