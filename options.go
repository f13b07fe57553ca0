package hsp

import (
	"go.uber.org/zap"

	"github.com/LoganEvans/HyperSharedPointer/internal/cpuid"
)

// cpuIDFunc reports the calling goroutine's best-guess CPU id, in
// [0, numCPU). Swappable per-Arena so tests can force contention onto a
// small, deterministic set of slabs instead of depending on host topology.
type cpuIDFunc func(numCPU int) int

type config struct {
	logger  *zap.Logger
	metrics metricsSink
	cpuID   cpuIDFunc
	name    string
}

// Option configures an Arena at construction time. The pattern, and the
// functional-options machinery below, follows the config[K,V]/Option[K,V]
// pair this module's ancestor cache used for its own constructor.
type Option func(*config)

func defaultConfig() *config {
	return &config{
		logger:  zap.NewNop(),
		metrics: noopMetrics{},
		cpuID:   cpuid.Current,
		name:    "arena",
	}
}

func applyOptions(opts []Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// WithLogger attaches a structured logger used for warnings about
// unexpected states (failed allocations, arena exhaustion). The zero value
// logs nothing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics attaches a metrics sink. See WithPrometheusMetrics for the
// production implementation.
func WithMetrics(sink metricsSink) Option {
	return func(c *config) {
		if sink != nil {
			c.metrics = sink
		}
	}
}

// WithName attaches a human-readable label used in diagnostics snapshots and
// log lines when an application constructs more than one Arena.
func WithName(name string) Option {
	return func(c *config) {
		if name != "" {
			c.name = name
		}
	}
}

// WithCPUIDFunc overrides how the Arena maps a goroutine to a CPU slab.
// Intended for tests that need deterministic slab contention; production
// callers should leave this unset.
func WithCPUIDFunc(fn func(numCPU int) int) Option {
	return func(c *config) {
		if fn != nil {
			c.cpuID = fn
		}
	}
}
