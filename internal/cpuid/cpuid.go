// Package cpuid implements the CPU-id oracle the design calls for: a cheap,
// cached "which CPU am I on right now" query used to pick which per-CPU slab
// a CounterHandle should touch.
//
// Go gives no portable thread-local storage and no stable way to pin a
// goroutine to an OS thread without also opting it out of the scheduler
// (runtime.LockOSThread), so this package leans on two things the original
// getcpu()-based design doesn't need to care about:
//
//   - On Linux, the real getcpu(2) syscall via golang.org/x/sys/unix, which
//     is the direct analogue of the source's getcpu() call.
//   - Everywhere, a goroutine-local cache (github.com/timandy/routine)
//     refreshed only every refreshInterval calls, exactly mirroring the
//     "thread_local int remainingUses" pattern in the design notes. Because a
//     goroutine can migrate between OS threads (and hence CPUs) between
//     refreshes, the cached value is an attribution hint, never a promise —
//     which is precisely the staleness the design says is acceptable.
package cpuid

import (
	"github.com/timandy/routine"
)

// refreshInterval mirrors the N ~= 31 figure the design notes observed in
// the reference implementation.
const refreshInterval = 31

type cacheEntry struct {
	remaining int
	cpu       int
}

var local = routine.NewThreadLocalWithInitial[*cacheEntry](func() *cacheEntry {
	return &cacheEntry{}
})

// sampler is swappable so tests can force a deterministic CPU id without
// depending on the host topology. (The root package's WithCPUIDFunc bypasses
// Current entirely rather than swapping sampler.)
var sampler = sampleOS

// Current returns a small integer in [0, numCPU). It is safe to call from
// any goroutine and is cheap enough for the hot Clone/Destroy path: on a
// cache hit it costs one goroutine-local lookup and a decrement.
func Current(numCPU int) int {
	if numCPU <= 0 {
		return 0
	}
	entry := local.Get()
	if entry.remaining > 0 {
		entry.remaining--
		if entry.cpu < numCPU {
			return entry.cpu
		}
	}
	entry.remaining = refreshInterval - 1
	entry.cpu = sampler() % numCPU
	return entry.cpu
}

// Reset clears the calling goroutine's cached CPU id, forcing the next
// Current call to resample. Exposed for tests.
func Reset() {
	local.Remove()
}
