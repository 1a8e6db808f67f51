package pipe

import (
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/convpipe/logger"
)

// DefaultCacheSize is the number of parsed expressions an Engine keeps.
const DefaultCacheSize = 256

type engineOptions struct {
	cacheSize int
	log       *logger.Logger
	tracer    trace.Tracer
	meter     metric.Meter
}

// Option configures an Engine.
type Option func(*engineOptions)

// WithCacheSize sets the parsed expression cache size. Zero or a negative
// size disables caching.
func WithCacheSize(n int) Option {
	return func(o *engineOptions) { o.cacheSize = n }
}

// WithLogger sets the engine logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *engineOptions) { o.log = l }
}

// WithTracer sets the tracer used for run spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *engineOptions) { o.tracer = t }
}

// WithMeter sets the meter used for run counters.
func WithMeter(m metric.Meter) Option {
	return func(o *engineOptions) { o.meter = m }
}
