package weave

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/nexusgraph/weave/persist"
)

// engineConfig holds configuration collected from Options before the
// Engine is constructed.
type engineConfig struct {
	logger     *slog.Logger
	tracer     trace.Tracer
	meter      metric.Meter
	backend    persist.Store
	config     *Config
	configPath string
}

// Option configures the Engine.
type Option func(*engineConfig)

// WithLogger sets the structured logger. Defaults to a JSON handler on
// stdout at Info level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *engineConfig) { c.logger = logger }
}

// WithTracer enables a span per engine operation on the given tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *engineConfig) { c.tracer = tracer }
}

// WithMeter enables operation counters on the given meter.
func WithMeter(meter metric.Meter) Option {
	return func(c *engineConfig) { c.meter = meter }
}

// WithPersistence wires an explicit snapshot backend, overriding whatever
// the configuration names.
func WithPersistence(backend persist.Store) Option {
	return func(c *engineConfig) { c.backend = backend }
}

// WithConfig supplies the configuration directly.
func WithConfig(cfg Config) Option {
	return func(c *engineConfig) { c.config = &cfg }
}

// WithConfigFile loads the configuration from a YAML file at construction.
func WithConfigFile(path string) Option {
	return func(c *engineConfig) { c.configPath = path }
}
