package bitrank

import (
	"log/slog"

	"github.com/hupe1980/bitrank/persistence"
)

// Options configures a Builder and the snapshot load functions.
type Options struct {
	// Capacity is a hint for the largest position that will be pushed.
	// Block storage is pre-reserved so a predictable-length build never
	// reallocates. Zero means no pre-reservation.
	Capacity int

	// Logger receives structured build and snapshot events.
	// Queries never log. Defaults to a no-op logger.
	Logger *Logger
}

// WithCapacity sets the largest-position hint.
func WithCapacity(maxPosition int) func(*Options) {
	return func(o *Options) {
		o.Capacity = maxPosition
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *Logger) func(*Options) {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) func(*Options) {
	return func(o *Options) {
		o.Logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []func(*Options)) Options {
	o := Options{
		Logger: NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// SnapshotOptions configures snapshot writing.
type SnapshotOptions struct {
	// Compression selects the payload codec. CompressionNone keeps the
	// snapshot compatible with zero-copy OpenFile.
	Compression persistence.Compression
}

// WithCompression selects the snapshot payload codec.
func WithCompression(c persistence.Compression) func(*SnapshotOptions) {
	return func(o *SnapshotOptions) {
		o.Compression = c
	}
}

func applySnapshotOptions(optFns []func(*SnapshotOptions)) SnapshotOptions {
	o := SnapshotOptions{
		Compression: persistence.CompressionNone,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
