package persistence

import (
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression defines the snapshot payload codec.
type Compression uint8

const (
	// CompressionNone stores the payload raw. Required for zero-copy
	// (mmap) snapshot access.
	CompressionNone Compression = 0
	// CompressionLZ4 stores the payload LZ4 block-compressed (fast,
	// moderate ratio).
	CompressionLZ4 Compression = 1
	// CompressionZSTD stores the payload ZSTD-compressed (better ratio,
	// good for cold snapshots).
	CompressionZSTD Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ErrIncompressible is returned by Compress when the codec cannot shrink
// the payload at all. Callers should store the payload uncompressed.
var ErrIncompressible = errors.New("persistence: payload is incompressible")

// ZSTD encoder/decoder pools; the encoder in particular is expensive to
// construct.
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Compress encodes data with the given codec. For CompressionNone the
// input slice is returned unchanged.
func Compress(data []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		var compressor lz4.Compressor
		n, err := compressor.CompressBlock(data, buf)
		if err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		if n == 0 {
			// The lz4 block API signals incompressible input with n == 0
			// rather than an error. Callers fall back to CompressionNone.
			return nil, ErrIncompressible
		}
		return buf[:n], nil
	case CompressionZSTD:
		enc := getZstdEncoder()
		defer zstdEncoderPool.Put(enc)
		return enc.EncodeAll(data, nil), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidCompression, uint8(c))
	}
}

// Decompress decodes data with the given codec. uncompressedSize must be
// the exact size of the original payload; it is known from the file header
// (block count times record size).
func Decompress(data []byte, c Compression, uncompressedSize int) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionLZ4:
		buf := make([]byte, uncompressedSize)
		n, err := lz4.UncompressBlock(data, buf)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		if n != uncompressedSize {
			return nil, fmt.Errorf("lz4 decompress: got %d bytes, want %d", n, uncompressedSize)
		}
		return buf, nil
	case CompressionZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)
		buf, err := dec.DecodeAll(data, make([]byte, 0, uncompressedSize))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		if len(buf) != uncompressedSize {
			return nil, fmt.Errorf("zstd decompress: got %d bytes, want %d", len(buf), uncompressedSize)
		}
		return buf, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidCompression, uint8(c))
	}
}
