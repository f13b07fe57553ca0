package hsp

import (
	"sync/atomic"
	"unsafe"

	"github.com/LoganEvans/HyperSharedPointer/internal/align"
	"github.com/LoganEvans/HyperSharedPointer/internal/slab"
	"github.com/LoganEvans/HyperSharedPointer/internal/unsafehelpers"
)

// arenaHeader is the part of an Arena that gets placement-constructed inside
// a manually over-allocated []byte and addressed directly by tagged
// CounterHandle words. It must stay entirely pointer-free: the []byte it
// lives in is allocated with an element type (byte) that has no pointers, so
// the garbage collector classifies the whole allocation as "no scan" and
// will never trace any pointer value stored inside it, tagged or otherwise.
// Every field here is therefore a plain integer; anything that needs to be a
// real Go pointer (the logger, the metrics sink) lives in *config and is
// reached indirectly through cfgSlot and the package-level registry.
//
// Immediately following the header in the same allocation, at 8-byte aligned
// offsets computed by the accessors below, are:
//   - numWords atomic.Uint64 words forming the used-CPU bitmask
//   - numCPU slab.Counter values, one per CPU slot
//
// This mirrors the "one allocation, flexible trailing array" shape the
// original design used a true C flexible array member for; Go has no
// equivalent language feature, so the layout is carved out by hand with
// unsafe.Pointer arithmetic instead, the same technique this module's
// allocator ancestor used for its own slab/monotonic arenas.
type arenaHeader struct {
	cfgSlot  int32
	numCPU   int32
	numWords int32
	_        [4]byte // pad to a multiple of 8 for the trailing atomic.Uint64s
}

const arenaHeaderSize = unsafe.Sizeof(arenaHeader{})

func bitmaskOffset() uintptr {
	return align.Up(arenaHeaderSize, 8)
}

func countersOffset(numWords int) uintptr {
	return bitmaskOffset() + uintptr(numWords)*8
}

// arenaLayoutSize returns the number of bytes the header, bitmask, and
// counter array occupy once numCPU is known, not counting the extra
// align.ArenaAlign bytes NewArena over-allocates to guarantee an aligned
// start address.
func arenaLayoutSize(numCPU int) uintptr {
	numWords := (numCPU + 63) / 64
	return countersOffset(numWords) + uintptr(numCPU)*unsafe.Sizeof(slab.Counter{})
}

func (h *arenaHeader) bitmaskWord(i int) *atomic.Uint64 {
	p := unsafe.Add(unsafe.Pointer(h), bitmaskOffset()+uintptr(i)*8)
	return (*atomic.Uint64)(p)
}

func (h *arenaHeader) counter(cpu int) *slab.Counter {
	p := unsafe.Add(unsafe.Pointer(h), countersOffset(int(h.numWords))+uintptr(cpu)*unsafe.Sizeof(slab.Counter{}))
	return (*slab.Counter)(p)
}

// markCPU sets cpu's bit in the used-CPU bitmask. It returns false if the
// bit was already set by a racing goroutine, in which case the caller must
// not rebase the slab a second time.
func (h *arenaHeader) markCPU(cpu int) bool {
	word := h.bitmaskWord(cpu / 64)
	bit := uint64(1) << uint(cpu%64)
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

// unmarkCPU clears cpu's bit in the used-CPU bitmask and reports whether
// every word of the bitmask reads as zero immediately afterward - the
// used_cpus == 0 condition the design uses to detect that a decrement was
// the arena's last live reference. Called after a slab's counter has been
// CASed back to slab.Disabled.
//
// Like the rest of this protocol, the report is a snapshot, not a
// synchronisation point: it is accurate at the instant every word is read,
// but a concurrent mark on another CPU can land immediately after.
func (h *arenaHeader) unmarkCPU(cpu int) bool {
	word := h.bitmaskWord(cpu / 64)
	bit := uint64(1) << uint(cpu%64)
	for {
		old := word.Load()
		next := old &^ bit
		if word.CompareAndSwap(old, next) {
			break
		}
	}
	for i := 0; i < int(h.numWords); i++ {
		if h.bitmaskWord(i).Load() != 0 {
			return false
		}
	}
	return true
}

// counters returns a read-only view of every per-CPU slab in this header as
// a []slab.Counter, for debug introspection that wants to walk them without
// one accessor call per index. The slice aliases the header's own backing
// buffer; it must not outlive the header.
func (h *arenaHeader) counters() []slab.Counter {
	return unsafehelpers.PtrSlice(h.counter(0), int(h.numCPU))
}

// liveReferences sums every slab's attributed reference count. It is a
// snapshot, never a synchronization point: by the time it returns, any slab
// may have changed. Used only for UseCount, diagnostics, and Close's
// check that the arena has no live references.
func (h *arenaHeader) liveReferences() int64 {
	var total int64
	for i := 0; i < int(h.numCPU); i++ {
		if v := h.counter(i).Load(); v > 0 {
			total += v
		}
	}
	return total
}
