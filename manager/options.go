package manager

import (
	"go.uber.org/zap"

	"github.com/LoganEvans/HyperSharedPointer/internal/cpuid"
)

// config mirrors the root package's unexported config/Option pair; manager
// needs its own copy since hsp.config is not exported and this package's
// slots are addressed differently (slotHeader.registryID, not
// arenaHeader.cfgSlot) but still want the same ambient logging and CPU-id
// source knobs NewArena exposes.
type config struct {
	logger *zap.Logger
	cpuID  func(numCPU int) int
}

// Option configures a Manager at construction time.
type Option func(*config)

func defaultConfig() *config {
	return &config{
		logger: zap.NewNop(),
		cpuID:  cpuid.Current,
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

// WithLogger attaches a structured logger used for warnings about pool
// growth and allocation failures. The zero value logs nothing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCPUIDFunc overrides how leased slots pick a CPU slab. Intended for
// tests that need deterministic contention.
func WithCPUIDFunc(fn func(numCPU int) int) Option {
	return func(c *config) {
		if fn != nil {
			c.cpuID = fn
		}
	}
}

// lookupManagerConfig recovers the *config a slot's registered slotArena was
// built with. Unlike the root package's cfgSlot (one slot per Arena),
// manager attaches config to the Manager, shared across every slotArena and
// slot it owns, since all of a Manager's leases are configured identically.
func lookupManagerConfig(registryID int32) *config {
	sa := lookupSlotArena(registryID)
	if sa == nil || sa.manager == nil {
		return defaultConfig()
	}
	return sa.manager.cfg
}
