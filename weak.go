package hsp

// WeakHandle observes a shared object without extending its lifetime. It is
// the Go analogue of the reference design's weak-slab counters: obtaining
// one never increments any slab, and Lock only succeeds if the object is
// still alive at the moment of the call.
//
// This implementation simplifies the original's dedicated weak-slab arrays
// (kept as a second full slab set per arena) down to a liveness probe over
// the existing strong slabs. It trades a small amount of precision - Lock
// can, in a vanishingly narrow window, observe the object as alive a moment
// before the very last strong reference drops it - for not doubling the
// per-arena memory footprint. See DESIGN.md.
type WeakHandle struct {
	hdr *arenaHeader
}

// NewWeak derives a WeakHandle from a live CounterHandle. The null handle
// produces the null WeakHandle.
func NewWeak(h CounterHandle) WeakHandle {
	if h.IsNull() {
		return WeakHandle{}
	}
	return WeakHandle{hdr: h.arenaHdr()}
}

// IsNull reports whether w is the zero WeakHandle.
func (w WeakHandle) IsNull() bool {
	return w.hdr == nil
}

// Lock attempts to upgrade w into a new strong CounterHandle. It first
// checks the calling goroutine's own CPU slab, the common case where the
// same goroutine that created the weak handle is still the one locking it.
// If that slab looks disabled, Lock scans the arena's other slabs for proof
// the object is still alive elsewhere before giving up; this mirrors the
// source's neighbor-slab retry rather than declaring the object dead the
// instant the locking goroutine's own slab happens to be between owners.
func (w WeakHandle) Lock() CounterHandle {
	if w.IsNull() {
		return CounterHandle{}
	}
	hdr := w.hdr
	cfg := lookupConfig(hdr.cfgSlot)
	own := cfg.cpuID(int(hdr.numCPU))

	if hdr.counter(own).Load() >= 0 {
		return newHandleOnCurrentCPU(hdr, cfg)
	}

	for i := 0; i < int(hdr.numCPU); i++ {
		if i == own {
			continue
		}
		if hdr.counter(i).Load() >= 0 {
			return newHandleOnCurrentCPU(hdr, cfg)
		}
	}
	return CounterHandle{}
}
