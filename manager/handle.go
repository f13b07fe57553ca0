package manager

import (
	"runtime"
	"unsafe"

	hsp "github.com/LoganEvans/HyperSharedPointer"
	"github.com/LoganEvans/HyperSharedPointer/internal/slab"
	"github.com/LoganEvans/HyperSharedPointer/internal/tagword"
)

// SlotHandle is a single owning strong reference into one slot of a
// slotArena, the slot-multiplexed analogue of the root package's
// CounterHandle. It reuses the same tagged-pointer trick (internal/tagword)
// to pack an origin CPU into the low bits of a pointer to the slot's
// slotHeader, and the same internal/slab.Counter mark/rebase protocol on the
// strong side.
type SlotHandle struct {
	word unsafe.Pointer
}

// IsNull reports whether h is the zero SlotHandle.
func (h SlotHandle) IsNull() bool {
	return tagword.IsNull(h.word)
}

// CPU returns the CPU slab this handle is attributed to.
func (h SlotHandle) CPU() int {
	return tagword.UnpackCPU(h.word)
}

// UseCount returns a best-effort snapshot of the total live strong
// reference count across the handle's slot, the slot-scoped analogue of
// hsp.Arena.UseCount.
func (h SlotHandle) UseCount() int64 {
	if h.IsNull() {
		return 0
	}
	return h.header().liveReferences()
}

// DebugCounters returns the raw value of every per-CPU strong slab counter
// in this handle's slot, in CPU order. Debug/diagnostics only.
func (h SlotHandle) DebugCounters() []int64 {
	if h.IsNull() {
		return nil
	}
	counters := h.header().strongCounters()
	out := make([]int64, len(counters))
	for i := range counters {
		out[i] = counters[i].Load()
	}
	return out
}

func (h SlotHandle) header() *slotHeader {
	return (*slotHeader)(tagword.UnpackArena(h.word))
}

func newSlotHandleOnCurrentCPU(hdr *slotHeader, cfg *config) SlotHandle {
	cpu := cfg.cpuID(int(hdr.numCPU))
	counter := hdr.strongCounter(cpu)
	if counter.TryActivatingIncrement() == slab.StillDisabled {
		counter.ActivateWithMark(func() bool { return hdr.markStrongCPU(cpu) }, runtime.Gosched)
	}
	return SlotHandle{word: tagword.Pack(unsafe.Pointer(hdr), cpu)}
}

// Clone produces a new, independent SlotHandle sharing the same slot as h,
// sampling the calling goroutine's current CPU afresh. Cloning the null
// handle returns the null handle.
func (h SlotHandle) Clone() SlotHandle {
	if h.IsNull() {
		return SlotHandle{}
	}
	hdr := h.header()
	cfg := lookupManagerConfig(hdr.registryID)
	return newSlotHandleOnCurrentCPU(hdr, cfg)
}

// Destroy releases h's reference and reports whether this was the slot's
// last strong reference, exactly like hsp.CounterHandle.Destroy. Once both
// the strong and weak bitmasks read empty, the owning slotArena reclaims the
// slot for a future Acquire.
func (h SlotHandle) Destroy() hsp.DropResult {
	if h.IsNull() {
		return hsp.NotOwned
	}
	hdr := h.header()
	cpu := tagword.UnpackCPU(h.word)
	counter := hdr.strongCounter(cpu)

	result := hsp.StillAlive
	switch counter.Decrement() {
	case slab.JustWentToZero:
		if hdr.unmarkStrongCPU(cpu) {
			result = hsp.LastReference
		}
	case slab.RaceLostStillAlive:
	}

	if result == hsp.LastReference {
		if sa := lookupSlotArena(hdr.registryID); sa != nil {
			sa.releaseSlotIfBothEmpty(hdr)
		}
	}
	return result
}

// WeakSlotHandle observes a slot's object without extending its lifetime,
// backed by the slot's dedicated weak shadow slab rather than the
// neighbor-CPU liveness scan hsp.WeakHandle needs in the absence of one.
type WeakSlotHandle struct {
	word unsafe.Pointer
}

// NewWeak derives a WeakSlotHandle from a live SlotHandle, incrementing the
// weak shadow slab for strong.CPU(). The null handle produces the null
// WeakSlotHandle.
func NewWeak(strong SlotHandle) WeakSlotHandle {
	if strong.IsNull() {
		return WeakSlotHandle{}
	}
	hdr := strong.header()
	cpu := tagword.UnpackCPU(strong.word)
	weak := hdr.weakCounter(cpu)
	if weak.TryActivatingIncrement() == slab.StillDisabled {
		weak.ActivateWithMark(func() bool { return hdr.markWeakCPU(cpu) }, runtime.Gosched)
	}
	return WeakSlotHandle{word: tagword.Pack(unsafe.Pointer(hdr), cpu)}
}

// IsNull reports whether w is the zero WeakSlotHandle.
func (w WeakSlotHandle) IsNull() bool {
	return tagword.IsNull(w.word)
}

// Lock attempts to upgrade w into a new strong SlotHandle. It is a direct
// CAS against the one strong slab this weak handle shadows - succeeds iff
// that slab's count is currently >= 1 - with no neighbor-slab fallback,
// since the dedicated weak shadow slab already makes liveness exact for
// this CPU rather than approximate across the whole slot.
func (w WeakSlotHandle) Lock() SlotHandle {
	if w.IsNull() {
		return SlotHandle{}
	}
	hdr := (*slotHeader)(tagword.UnpackArena(w.word))
	cpu := tagword.UnpackCPU(w.word)
	if !hdr.strongCounter(cpu).TryIncrementIfActive() {
		return SlotHandle{}
	}
	return SlotHandle{word: tagword.Pack(unsafe.Pointer(hdr), cpu)}
}

// Release drops w's weak reference. It must be called exactly once per
// WeakSlotHandle obtained from NewWeak; the null handle is a no-op.
func (w WeakSlotHandle) Release() {
	if w.IsNull() {
		return
	}
	hdr := (*slotHeader)(tagword.UnpackArena(w.word))
	cpu := tagword.UnpackCPU(w.word)
	weak := hdr.weakCounter(cpu)

	lastWeak := false
	if weak.Decrement() == slab.JustWentToZero {
		lastWeak = hdr.unmarkWeakCPU(cpu)
	}
	if lastWeak {
		if sa := lookupSlotArena(hdr.registryID); sa != nil {
			sa.releaseSlotIfBothEmpty(hdr)
		}
	}
}
