package manager

import (
	"sync/atomic"
	"unsafe"

	"github.com/LoganEvans/HyperSharedPointer/internal/align"
	"github.com/LoganEvans/HyperSharedPointer/internal/slab"
	"github.com/LoganEvans/HyperSharedPointer/internal/unsafehelpers"
)

// slotHeader is the per-slot analogue of the root package's arenaHeader: one
// of slotsPerArena regions placement-constructed inside a single slotArena
// allocation, at 128-byte aligned offsets addressable by a tagged SlotHandle
// pointer. Like arenaHeader, it must stay entirely pointer-free - the
// backing []byte is a no-scan allocation and the garbage collector will
// never trace anything hidden inside it.
//
// Immediately following the header in the same slot, at 8-byte aligned
// offsets computed by the accessors below, are:
//   - numWords atomic.Uint64 words forming the strong used-CPU bitmask
//   - numWords atomic.Uint64 words forming the weak used-CPU bitmask
//   - numCPU slab.Counter values for the strong slabs
//   - numCPU slab.Counter values for the weak shadow slabs
//
// The weak shadow slabs are the feature a bare Arena's WeakHandle has to
// approximate with a neighbor-CPU scan: here, every slot carries its own
// per-CPU weak counters, so a weak handle's lock() is a direct CAS against
// the one strong slab it shadows. See DESIGN.md.
type slotHeader struct {
	registryID int32
	slotIdx    int32
	numCPU     int32
	numWords   int32
}

const slotHeaderSize = unsafe.Sizeof(slotHeader{})

func strongBitmaskOffset() uintptr {
	return align.Up(slotHeaderSize, 8)
}

func weakBitmaskOffset(numWords int) uintptr {
	return strongBitmaskOffset() + uintptr(numWords)*8
}

func strongCountersOffset(numWords int) uintptr {
	return weakBitmaskOffset(numWords) + uintptr(numWords)*8
}

func weakCountersOffset(numCPU, numWords int) uintptr {
	return strongCountersOffset(numWords) + uintptr(numCPU)*unsafe.Sizeof(slab.Counter{})
}

// slotSize returns the number of bytes one slot occupies given numCPU,
// excluding any alignment padding between slots.
func slotSize(numCPU int) uintptr {
	numWords := (numCPU + 63) / 64
	return weakCountersOffset(numCPU, numWords) + uintptr(numCPU)*unsafe.Sizeof(slab.Counter{})
}

func (h *slotHeader) strongBitmaskWord(i int) *atomic.Uint64 {
	p := unsafe.Add(unsafe.Pointer(h), strongBitmaskOffset()+uintptr(i)*8)
	return (*atomic.Uint64)(p)
}

func (h *slotHeader) weakBitmaskWord(i int) *atomic.Uint64 {
	p := unsafe.Add(unsafe.Pointer(h), weakBitmaskOffset(int(h.numWords))+uintptr(i)*8)
	return (*atomic.Uint64)(p)
}

func (h *slotHeader) strongCounter(cpu int) *slab.Counter {
	p := unsafe.Add(unsafe.Pointer(h), strongCountersOffset(int(h.numWords))+uintptr(cpu)*unsafe.Sizeof(slab.Counter{}))
	return (*slab.Counter)(p)
}

func (h *slotHeader) weakCounter(cpu int) *slab.Counter {
	p := unsafe.Add(unsafe.Pointer(h), weakCountersOffset(int(h.numCPU), int(h.numWords))+uintptr(cpu)*unsafe.Sizeof(slab.Counter{}))
	return (*slab.Counter)(p)
}

func (h *slotHeader) strongCounters() []slab.Counter {
	return unsafehelpers.PtrSlice(h.strongCounter(0), int(h.numCPU))
}

func (h *slotHeader) reset() {
	for i := 0; i < int(h.numWords); i++ {
		h.strongBitmaskWord(i).Store(0)
		h.weakBitmaskWord(i).Store(0)
	}
	for i := 0; i < int(h.numCPU); i++ {
		h.strongCounter(i).Reset()
		h.weakCounter(i).Reset()
	}
}

func markBit(word *atomic.Uint64, bit uint64) bool {
	for {
		old := word.Load()
		if old&bit != 0 {
			return false
		}
		if word.CompareAndSwap(old, old|bit) {
			return true
		}
	}
}

// unmarkBit clears bit in word and reports whether the containing bitmask
// (all numWords words of it) reads entirely zero immediately afterward.
func unmarkBit(h *slotHeader, word *atomic.Uint64, bit uint64, words func(int) *atomic.Uint64) bool {
	for {
		old := word.Load()
		next := old &^ bit
		if word.CompareAndSwap(old, next) {
			break
		}
	}
	for i := 0; i < int(h.numWords); i++ {
		if words(i).Load() != 0 {
			return false
		}
	}
	return true
}

func (h *slotHeader) markStrongCPU(cpu int) bool {
	return markBit(h.strongBitmaskWord(cpu/64), uint64(1)<<uint(cpu%64))
}

func (h *slotHeader) unmarkStrongCPU(cpu int) bool {
	return unmarkBit(h, h.strongBitmaskWord(cpu/64), uint64(1)<<uint(cpu%64), h.strongBitmaskWord)
}

func (h *slotHeader) markWeakCPU(cpu int) bool {
	return markBit(h.weakBitmaskWord(cpu/64), uint64(1)<<uint(cpu%64))
}

func (h *slotHeader) unmarkWeakCPU(cpu int) bool {
	return unmarkBit(h, h.weakBitmaskWord(cpu/64), uint64(1)<<uint(cpu%64), h.weakBitmaskWord)
}

// bothEmpty reports whether both the strong and the weak used-CPU bitmasks
// currently read zero, the freeing precondition the design places on a
// slot: a slot may only be handed back to claimSlot once nothing - strong or
// weak - still references it.
func (h *slotHeader) bothEmpty() bool {
	for i := 0; i < int(h.numWords); i++ {
		if h.strongBitmaskWord(i).Load() != 0 || h.weakBitmaskWord(i).Load() != 0 {
			return false
		}
	}
	return true
}

func (h *slotHeader) liveReferences() int64 {
	var total int64
	for i := 0; i < int(h.numCPU); i++ {
		if v := h.strongCounter(i).Load(); v > 0 {
			total += v
		}
	}
	return total
}
