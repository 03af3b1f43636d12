package rett

import (
	"log/slog"

	"github.com/lereldarion/rett/codec"
	"github.com/lereldarion/rett/engine"
)

// CompressionType selects the snapshot payload compression algorithm.
type CompressionType = engine.CompressionType

// Compression algorithms for snapshot payloads.
const (
	CompressionNone = engine.CompressionNone
	CompressionLZ4  = engine.CompressionLZ4
	CompressionZSTD = engine.CompressionZSTD
)

type options struct {
	codec            codec.Codec
	compression      CompressionType
	capacity         int
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures Graph constructor/load behavior.
//
// Today options primarily exist to avoid exploding the API surface
// (e.g. codec-specific constructor variants).
type Option func(*options)

// WithCodec configures the codec used for snapshot payloads.
//
// If nil is passed, codec.Default is used. On load, a nil codec selects
// the codec recorded in the snapshot header.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression configures the snapshot payload compression.
// Defaults to CompressionZSTD. Loading always honors the algorithm
// recorded in the snapshot header, whatever this option says.
func WithCompression(c CompressionType) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithCapacity pre-sizes the store for the expected number of elements,
// avoiding reallocation during bulk construction.
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &rett.BasicMetricsCollector{}
//	g := rett.New(rett.WithMetricsCollector(metrics))
//	// ... use g ...
//	stats := metrics.GetStats()
//	fmt.Printf("Atoms: %d, dedup hits: %d\n", stats.UseAtomCount, stats.UseAtomHits)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := rett.NewJSONLogger(slog.LevelInfo)
//	g := rett.New(rett.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:            nil,
		compression:      CompressionZSTD,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
