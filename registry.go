package hsp

import (
	"sync"
	"sync/atomic"
)

// registry maps the small cfgSlot index stored in a pointer-free arenaHeader
// back to the *config (logger, metrics, cpuID source) that NewArena was
// called with. The header itself cannot hold a real pointer: it is
// placement-constructed inside a plain []byte buffer, which the Go runtime
// treats as containing no pointers and therefore never scans, so any
// unsafe.Pointer smuggled into that memory would be invisible to the
// garbage collector. Routing config lookups through this package-level,
// copy-on-write slice keeps the header pointer-free while still letting the
// free-standing Clone/Drop functions - which only ever see a tagged
// unsafe.Pointer, never an *Arena - recover logging and metrics.
//
// Writes (arena creation/close) are rare and serialized by registryMuForWriters. Reads
// (every Clone/Destroy) are lock-free: registrySlice is an atomic.Pointer so
// a reader always sees a complete, never-mutated-in-place slice.
var (
	registryMuForWriters sync.Mutex
	registrySlice        atomic.Pointer[[]*config]
)

func init() {
	empty := make([]*config, 0)
	registrySlice.Store(&empty)
}

func registerConfig(cfg *config) int32 {
	registryMuForWriters.Lock()
	defer registryMuForWriters.Unlock()
	cur := *registrySlice.Load()
	next := make([]*config, len(cur)+1)
	copy(next, cur)
	next[len(cur)] = cfg
	registrySlice.Store(&next)
	return int32(len(cur))
}

func unregisterConfig(slot int32) {
	registryMuForWriters.Lock()
	defer registryMuForWriters.Unlock()
	cur := *registrySlice.Load()
	if int(slot) < 0 || int(slot) >= len(cur) {
		return
	}
	next := make([]*config, len(cur))
	copy(next, cur)
	next[slot] = nil
	registrySlice.Store(&next)
}

func lookupConfig(slot int32) *config {
	cur := *registrySlice.Load()
	if int(slot) < 0 || int(slot) >= len(cur) {
		return defaultConfig()
	}
	if cfg := cur[slot]; cfg != nil {
		return cfg
	}
	return defaultConfig()
}
