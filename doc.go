// Package bitrank provides an immutable succinct set of non-negative
// integers optimized for rank queries: Rank(i) returns the count of stored
// elements strictly less than i.
//
// The bit vector is split into fixed-size blocks, each storing its raw bits
// next to a small cumulative index, so a rank query touches a single
// cache-line-friendly record. Construction is sequential and write-only: a
// Builder accepts strictly increasing positions, materializes blocks lazily
// across gaps, and Finish freezes everything into a BitRank that is safe
// for unlimited concurrent readers.
//
//	b := bitrank.NewBuilder(bitrank.WithCapacity(1_000_000))
//	for _, p := range positions { // strictly increasing
//	    if err := b.Push(p); err != nil {
//	        // duplicate or unsorted input; restart with a fresh builder
//	    }
//	}
//	set := b.Finish()
//	n := set.Rank(42)
//
// Select is supported only within a bounded local window: RankSelect
// reports the position establishing a rank when it falls in the same
// sub-block as the query, and ok=false otherwise. The caller is expected
// to fall back to a binary search over the original sorted data — at that
// distance the fallback is cheaper than the dense indices a general
// constant-time select would require.
//
// Snapshots persist the block sequence verbatim (see SaveToFile /
// LoadFromFile / OpenFile and the persistence package). Uncompressed
// snapshots can be opened zero-copy via mmap.
package bitrank
