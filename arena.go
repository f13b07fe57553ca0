package hsp

import (
	"runtime"
	"unsafe"

	"github.com/LoganEvans/HyperSharedPointer/internal/align"
	"github.com/LoganEvans/HyperSharedPointer/internal/invariant"
	"github.com/LoganEvans/HyperSharedPointer/internal/slab"
	"github.com/LoganEvans/HyperSharedPointer/internal/tagword"
)

// Arena owns the backing storage for one shared object's reference count:
// numCPU independent slabs plus the bitmask tracking which ones currently
// hold live references. Applications keep an *Arena alive for as long as any
// CounterHandle derived from it may exist; CounterHandle itself only carries
// a tagged pointer into the arena's raw buffer; it does not keep *Arena
// reachable and the garbage collector does not know it should.
type Arena struct {
	hdr *arenaHeader
	raw []byte
	cfg *config
}

// NewArena allocates an Arena with numCPU slabs and returns it along with
// the first live CounterHandle, attributed to the calling goroutine's
// current CPU. numCPU values above align.MaxTaggedCPUs are wrapped modulo
// that range, since CounterHandle's tag can only address that many distinct
// CPU ids; use NewArenaStrict to reject oversized requests instead.
func NewArena(numCPU int, opts ...Option) (*Arena, CounterHandle, error) {
	return newArena(numCPU, false, opts...)
}

// NewArenaStrict behaves like NewArena but returns ErrTooManyCPUs instead of
// wrapping when numCPU exceeds align.MaxTaggedCPUs.
func NewArenaStrict(numCPU int, opts ...Option) (*Arena, CounterHandle, error) {
	return newArena(numCPU, true, opts...)
}

func newArena(numCPU int, strict bool, opts ...Option) (*Arena, CounterHandle, error) {
	if numCPU <= 0 {
		numCPU = 1
	}
	if numCPU > align.MaxTaggedCPUs {
		if strict {
			return nil, CounterHandle{}, ErrTooManyCPUs
		}
		wrapped := numCPU % align.MaxTaggedCPUs
		if wrapped == 0 {
			wrapped = align.MaxTaggedCPUs
		}
		numCPU = wrapped
	}

	size := arenaLayoutSize(numCPU)
	raw := make([]byte, int(size)+align.ArenaAlign)
	rawStart := uintptr(unsafe.Pointer(&raw[0]))
	base := align.Up(rawStart, align.ArenaAlign)
	if base+size > rawStart+uintptr(len(raw)) {
		return nil, CounterHandle{}, ErrAllocFailed
	}
	hdr := (*arenaHeader)(unsafe.Pointer(base))
	hdr.numCPU = int32(numCPU)
	hdr.numWords = int32((numCPU + 63) / 64)
	for i := 0; i < int(hdr.numWords); i++ {
		hdr.bitmaskWord(i).Store(0)
	}
	for i := 0; i < numCPU; i++ {
		hdr.counter(i).Reset()
	}

	cfg := applyOptions(opts)
	hdr.cfgSlot = registerConfig(cfg)

	a := &Arena{hdr: hdr, raw: raw, cfg: cfg}
	return a, a.NewHandle(), nil
}

// NewHandle mints an additional independent reference to a, attributed to
// the calling goroutine's current CPU. Unlike CounterHandle.Clone, which
// only needs a tagged pointer and recovers config through the registry,
// NewHandle is a method on the live *Arena and so never touches the
// registry at all.
func (a *Arena) NewHandle() CounterHandle {
	return newHandleOnCurrentCPU(a.hdr, a.cfg)
}

// NumCPU returns the number of CPU slabs this arena was constructed with.
func (a *Arena) NumCPU() int {
	return int(a.hdr.numCPU)
}

// DebugCounters returns the raw value of every per-CPU slab counter, in CPU
// order. It exists for tests and debug tooling only: reading all numCPU
// values is not a synchronization point and the result is stale before the
// call returns.
func (a *Arena) DebugCounters() []int64 {
	counters := a.hdr.counters()
	out := make([]int64, len(counters))
	for i := range counters {
		out[i] = counters[i].Load()
	}
	return out
}

// UseCount returns a best-effort snapshot of the total live reference count
// across every slab. It is exact only when the caller can prove no
// concurrent Clone/Destroy is in flight; otherwise it is a point-in-time
// estimate, same caveat the design places on the reference cache's
// SizeBytes.
func (a *Arena) UseCount() int64 {
	return a.hdr.liveReferences()
}

// Close releases the arena's config registration. It returns
// ErrArenaNotEmpty if any slab still attributes a live reference, since
// closing early would let a future CounterHandle on this arena read a
// recycled or zeroed cfgSlot.
func (a *Arena) Close() error {
	if a.UseCount() != 0 {
		return ErrArenaNotEmpty
	}
	unregisterConfig(a.hdr.cfgSlot)
	return nil
}

// newHandleOnCurrentCPU is the single path every "new independent reference"
// operation funnels through: NewArena's first handle, and Clone of any
// existing handle (which samples the current CPU afresh rather than reusing
// the cloned handle's CPU, spreading clone traffic the same way the
// original handle's creation did).
func newHandleOnCurrentCPU(hdr *arenaHeader, cfg *config) CounterHandle {
	cpu := cfg.cpuID(int(hdr.numCPU))
	counter := hdr.counter(cpu)
	if counter.TryActivatingIncrement() == slab.StillDisabled {
		res := counter.ActivateWithMark(func() bool { return hdr.markCPU(cpu) }, runtime.Gosched)
		if res.Rebased {
			cfg.metrics.incRebase(cpu)
		}
		if res.Contended {
			cfg.metrics.incSlabContention(cpu)
		}
	}
	cfg.metrics.incClone(cpu)
	word := tagword.Pack(unsafe.Pointer(hdr), cpu)
	invariant.MarkCreated(uintptr(word))
	return CounterHandle{word: word}
}
