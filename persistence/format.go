package persistence

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// MagicNumber identifies bitrank snapshot files (ASCII: "BRK1").
	MagicNumber = 0x42524B31
	// Version is the current file format version (v1.0.0).
	Version = 0x00010000

	// HeaderSize is the fixed size of the file header in bytes.
	HeaderSize = 64
)

var (
	ErrInvalidMagic       = errors.New("persistence: invalid magic number")
	ErrInvalidVersion     = errors.New("persistence: unsupported version")
	ErrInvalidCompression = errors.New("persistence: unknown compression type")
	ErrTruncated          = errors.New("persistence: snapshot truncated")
	ErrInconsistent       = errors.New("persistence: snapshot index inconsistent")
)

// FileHeader is the 64-byte header at the start of every snapshot.
// Layout is fixed and little-endian for mmap compatibility.
type FileHeader struct {
	Magic       uint32 // 0x42524B31 ("BRK1")
	Version     uint32 // File format version
	Compression uint8  // 0=None, 1=LZ4, 2=ZSTD
	Padding1    [3]byte
	BlockCount  uint64 // Number of block records in the payload
	MaxRank     uint64 // Element count, cross-checked on load
	PayloadSize uint64 // Stored (possibly compressed) payload size in bytes
	Checksum    uint32 // CRC32 of the stored payload
	Padding2    [4]byte
	Reserved    [20]byte // Future use
}

// WriteHeader writes the file header. Magic and Version are filled in.
func WriteHeader(w io.Writer, header *FileHeader) error {
	header.Magic = MagicNumber
	header.Version = Version
	return binary.Write(w, binary.LittleEndian, header)
}

// ReadHeader reads and validates the file header.
func ReadHeader(r io.Reader) (*FileHeader, error) {
	var header FileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, err
	}
	if header.Magic != MagicNumber {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, header.Magic)
	}
	if header.Version != Version {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidVersion, header.Version)
	}
	return &header, nil
}

// ParseHeader reads the header from an in-memory snapshot, typically the
// start of a memory mapping.
func ParseHeader(data []byte) (*FileHeader, error) {
	if len(data) < HeaderSize {
		return nil, ErrTruncated
	}
	return ReadHeader(bytes.NewReader(data[:HeaderSize]))
}
