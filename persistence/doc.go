// Package persistence provides the binary snapshot format for bitrank
// structures.
//
// A snapshot is a 64-byte header followed by the block payload. Each block
// is persisted as one contiguous record (cumulative rank, sub-block counts,
// raw words) so that paged or memory-mapped readers fetch everything a
// query needs in one block-sized read. The payload may be stored raw or
// compressed with LZ4 or ZSTD; raw payloads are laid out for zero-copy
// access directly from an mmap'd file.
//
// Integrity is covered by a CRC32 (IEEE) checksum of the stored payload.
// CRC32 detects accidental corruption only; it is not tamper-proof.
package persistence
