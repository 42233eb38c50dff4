package bitrank

import (
	"errors"
	"fmt"
	"io"
	"unsafe"

	"github.com/hupe1980/bitrank/internal/mmap"
	"github.com/hupe1980/bitrank/persistence"
)

// blockRecordSize is the on-disk size of one block record: the cumulative
// rank, the sub-block counts, and the raw words, stored contiguously so a
// paged reader fetches everything a query needs in one read.
const blockRecordSize = int(unsafe.Sizeof(block{}))

// blocksBytes returns the raw memory of the block sequence.
//
// Snapshots store native little-endian memory (x86/ARM); this mirrors the
// in-memory layout byte for byte, which is what makes zero-copy OpenFile
// possible.
func blocksBytes(blocks []block) []byte {
	if len(blocks) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&blocks[0])), len(blocks)*blockRecordSize)
}

// SaveToWriter writes a snapshot of the structure to w.
//
// By default the payload is stored raw, which keeps the file compatible
// with zero-copy OpenFile; pass WithCompression to trade that for size.
func (br *BitRank) SaveToWriter(w io.Writer, optFns ...func(*SnapshotOptions)) error {
	o := applySnapshotOptions(optFns)

	raw := blocksBytes(br.blocks)

	comp := o.Compression
	stored, err := persistence.Compress(raw, comp)
	if errors.Is(err, persistence.ErrIncompressible) {
		stored, comp = raw, persistence.CompressionNone
	} else if err != nil {
		return err
	}

	header := &persistence.FileHeader{
		Compression: uint8(comp),
		BlockCount:  uint64(len(br.blocks)),
		MaxRank:     uint64(br.MaxRank()),
		PayloadSize: uint64(len(stored)),
		Checksum:    persistence.Checksum(stored),
	}
	if err := persistence.WriteHeader(w, header); err != nil {
		return err
	}
	if len(stored) > 0 {
		if _, err := w.Write(stored); err != nil {
			return err
		}
	}
	return nil
}

// SaveToFile writes a snapshot to path atomically.
func (br *BitRank) SaveToFile(path string, optFns ...func(*SnapshotOptions)) error {
	err := persistence.SaveToFile(path, func(w io.Writer) error {
		return br.SaveToWriter(w, optFns...)
	})
	br.logger.LogSnapshotSave(path, err)
	return err
}

// LoadFromReader reads a snapshot written by SaveToWriter.
//
// The payload checksum is verified and the persisted index is cross-checked
// against a recount of the raw bits, so a corrupted snapshot is rejected
// rather than silently answering queries wrong.
func LoadFromReader(r io.Reader, optFns ...func(*Options)) (*BitRank, error) {
	o := applyOptions(optFns)

	header, err := persistence.ReadHeader(r)
	if err != nil {
		return nil, err
	}

	stored := make([]byte, header.PayloadSize)
	if _, err := io.ReadFull(r, stored); err != nil {
		return nil, fmt.Errorf("%w: %w", persistence.ErrTruncated, err)
	}
	if err := persistence.VerifyChecksum(stored, header.Checksum); err != nil {
		return nil, err
	}

	rawSize := int(header.BlockCount) * blockRecordSize
	raw, err := persistence.Decompress(stored, persistence.Compression(header.Compression), rawSize)
	if err != nil {
		return nil, err
	}
	if len(raw) != rawSize {
		return nil, fmt.Errorf("%w: payload is %d bytes, want %d", persistence.ErrTruncated, len(raw), rawSize)
	}

	blocks := make([]block, header.BlockCount)
	copy(blocksBytes(blocks), raw)

	br := &BitRank{blocks: blocks, logger: o.Logger}
	if err := verifySnapshot(br, header); err != nil {
		return nil, err
	}
	return br, nil
}

// LoadFromFile reads a snapshot from path into memory.
func LoadFromFile(path string, optFns ...func(*Options)) (*BitRank, error) {
	var br *BitRank
	err := persistence.LoadFromFile(path, func(r io.Reader) error {
		var loadErr error
		br, loadErr = LoadFromReader(r, optFns...)
		return loadErr
	})
	if br != nil {
		br.logger.LogSnapshotLoad(path, len(br.blocks), err)
	}
	if err != nil {
		return nil, err
	}
	return br, nil
}

// MappedSnapshot is a BitRank whose blocks live in a memory-mapped
// snapshot file instead of the heap. Queries read directly from the
// mapping; nothing is copied.
type MappedSnapshot struct {
	br *BitRank
	m  *mmap.File
}

// OpenFile memory-maps an uncompressed snapshot at path for zero-copy
// queries. The returned BitRank is valid until Close.
func OpenFile(path string, optFns ...func(*Options)) (*MappedSnapshot, error) {
	o := applyOptions(optFns)

	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	br, err := openMapped(m.Data, o)
	if err != nil {
		_ = m.Close()
		return nil, err
	}

	return &MappedSnapshot{br: br, m: m}, nil
}

func openMapped(data []byte, o Options) (*BitRank, error) {
	header, err := persistence.ParseHeader(data)
	if err != nil {
		return nil, err
	}
	if persistence.Compression(header.Compression) != persistence.CompressionNone {
		return nil, ErrNotMappable
	}

	payloadEnd := persistence.HeaderSize + int(header.PayloadSize)
	if payloadEnd > len(data) {
		return nil, persistence.ErrTruncated
	}
	payload := data[persistence.HeaderSize:payloadEnd]
	if err := persistence.VerifyChecksum(payload, header.Checksum); err != nil {
		return nil, err
	}
	if int(header.BlockCount)*blockRecordSize != len(payload) {
		return nil, fmt.Errorf("%w: payload is %d bytes, want %d blocks",
			persistence.ErrTruncated, len(payload), header.BlockCount)
	}

	var blocks []block
	if header.BlockCount > 0 {
		// The mapping is page-aligned and the header keeps the payload
		// 8-byte aligned, so the block records can be viewed in place.
		blocks = unsafe.Slice((*block)(unsafe.Pointer(&payload[0])), header.BlockCount)
	}

	br := &BitRank{blocks: blocks, logger: o.Logger}
	if err := verifySnapshot(br, header); err != nil {
		return nil, err
	}
	return br, nil
}

// BitRank returns the mapped structure.
func (s *MappedSnapshot) BitRank() *BitRank {
	return s.br
}

// Close unmaps the snapshot. The BitRank must not be queried afterwards.
func (s *MappedSnapshot) Close() error {
	s.br = nil
	return s.m.Close()
}

// verifySnapshot cross-checks the persisted rank index two ways: the
// header's element count against the sub-count-based MaxRank, and both
// against a full recount of the raw words.
func verifySnapshot(br *BitRank, header *persistence.FileHeader) error {
	maxRank := br.MaxRank()
	if maxRank != int(header.MaxRank) {
		return fmt.Errorf("%w: index says %d elements, header says %d",
			persistence.ErrInconsistent, maxRank, header.MaxRank)
	}

	var total int
	for i := range br.blocks {
		total += br.blocks[i].popCount()
	}
	if total != maxRank {
		return fmt.Errorf("%w: raw bits count %d elements, index says %d",
			persistence.ErrInconsistent, total, maxRank)
	}
	return nil
}
