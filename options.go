package meshgo

import (
	"log/slog"
)

type options struct {
	cfg              Config
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures DB construction.
type Option func(*options)

// WithConfig replaces the whole configuration. Options applied after it
// still override individual fields.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithSequenceSize sets the initial and maximum sequence capacity.
// Sequences of a type start at initial slots and double up to maxSize.
func WithSequenceSize(initial, maxSize int) Option {
	return func(o *options) {
		o.cfg.InitialSequenceSize = initial
		o.cfg.MaxSequenceSize = maxSize
	}
}

// WithRecycleHandles makes the DB reuse the handles of deleted entities.
// Recycled slots read tag defaults, never the previous owner's values.
func WithRecycleHandles(enabled bool) Option {
	return func(o *options) {
		o.cfg.RecycleHandles = enabled
	}
}

// WithReclaimEmptySequences controls whether empty sequences are released.
func WithReclaimEmptySequences(enabled bool) Option {
	return func(o *options) {
		o.cfg.ReclaimEmptySequences = enabled
	}
}

// WithMaintainAdjacencies controls eager adjacency maintenance.
//
// When disabled, element creation is cheaper and the vertex-to-element index
// is built from scratch the first time a topology query needs it.
func WithMaintainAdjacencies(enabled bool) Option {
	return func(o *options) {
		o.cfg.MaintainAdjacencies = enabled
	}
}

// WithMemoryLimit bounds the bytes held by sequences and dense tags.
// Allocations beyond the limit fail with ErrAllocationFailure.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.cfg.MemoryLimitBytes = bytes
	}
}

// WithLogger sets the logger. nil restores the silent default.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithLogLevel installs a text logger at the given level, unless a logger
// is set explicitly.
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.cfg.LogLevel = level.String()
	}
}

// WithMetricsCollector sets the metrics collector.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

func applyOptions(opts ...Option) (options, error) {
	o := options{
		cfg: DefaultConfig(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.cfg.Validate(); err != nil {
		return o, err
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		if o.cfg.LogLevel != "" {
			lvl, _ := o.cfg.level()
			o.logger = NewTextLogger(lvl)
		} else {
			o.logger = NoopLogger()
		}
	}
	return o, nil
}
