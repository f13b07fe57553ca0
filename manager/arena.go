package manager

import (
	"math/bits"
	"sync/atomic"
	"unsafe"

	"github.com/LoganEvans/HyperSharedPointer/internal/align"

	hsp "github.com/LoganEvans/HyperSharedPointer"
)

// slotsPerArena mirrors the original design's fixed 64-entry
// availableSlotsMask: one slotArena packs this many independently-lived
// slots into a single backing allocation, amortizing one allocation across
// slotsPerArena leases instead of paying for one per lease.
const slotsPerArena = 64

// slotArena is the in-Arena two-axis slabs[cpu].slot[i] layout the design's
// full/sparse-slot ArenaManager variant calls for: one large []byte holding
// slotsPerArena independent slotHeader regions, each with its own strong and
// weak per-CPU slab arrays. It is the ordinary heap-allocated counterpart to
// the pointer-free slotHeader values living inside raw - real pointers
// (manager, the slice header itself) are safe to keep here because this
// struct is never placement-constructed inside the no-scan buffer.
type slotArena struct {
	raw     []byte
	base    uintptr
	stride  uintptr
	numCPU  int
	manager *Manager

	registryID int32

	// availableSlotsMask has one bit per slot; a set bit means the slot is
	// free. It starts with every bit set and is claimed/released the same
	// way the original's ArenaManager CASes its availableSlotsMask_.
	availableSlotsMask atomic.Uint64
}

func newSlotArena(numCPU int, m *Manager) (*slotArena, error) {
	stride := align.Up(slotSize(numCPU), align.ArenaAlign)
	total := stride*slotsPerArena + align.ArenaAlign

	raw := make([]byte, total)
	rawStart := uintptr(unsafe.Pointer(&raw[0]))
	base := align.Up(rawStart, align.ArenaAlign)
	if base+stride*slotsPerArena > rawStart+uintptr(len(raw)) {
		return nil, hsp.ErrAllocFailed
	}

	sa := &slotArena{
		raw:     raw,
		base:    base,
		stride:  stride,
		numCPU:  numCPU,
		manager: m,
	}
	sa.registryID = registerSlotArena(sa)

	for i := 0; i < slotsPerArena; i++ {
		hdr := sa.header(i)
		hdr.registryID = sa.registryID
		hdr.slotIdx = int32(i)
		hdr.numCPU = int32(numCPU)
		hdr.numWords = int32((numCPU + 63) / 64)
		hdr.reset()
	}
	sa.availableSlotsMask.Store(^uint64(0))

	return sa, nil
}

func (sa *slotArena) header(i int) *slotHeader {
	return (*slotHeader)(unsafe.Pointer(sa.base + uintptr(i)*sa.stride))
}

// claimSlot finds a free slot via the same trailing-zero-count scan the
// original ArenaManager uses against its availableSlotsMask_, and CASes it
// to claimed.
func (sa *slotArena) claimSlot() (*slotHeader, bool) {
	for {
		old := sa.availableSlotsMask.Load()
		if old == 0 {
			return nil, false
		}
		idx := bits.TrailingZeros64(old)
		next := old &^ (uint64(1) << uint(idx))
		if sa.availableSlotsMask.CompareAndSwap(old, next) {
			return sa.header(idx), true
		}
	}
}

// releaseSlotIfBothEmpty returns hdr's slot to the free set once neither its
// strong nor its weak used-CPU bitmask attributes any reference to it. A
// full -> non-full transition triggers the Manager's notify_new_availability
// equivalent so the next Acquire call is biased back toward this arena
// instead of growing the pool further.
func (sa *slotArena) releaseSlotIfBothEmpty(hdr *slotHeader) {
	if !hdr.bothEmpty() {
		return
	}
	bit := uint64(1) << uint(hdr.slotIdx)
	for {
		old := sa.availableSlotsMask.Load()
		if old&bit != 0 {
			return // already free; a racing release got here first
		}
		next := old | bit
		if sa.availableSlotsMask.CompareAndSwap(old, next) {
			if old == 0 {
				sa.manager.notifyAvailability(sa)
			}
			return
		}
	}
}

// inUse reports how many of this arena's slotsPerArena slots are currently
// claimed.
func (sa *slotArena) inUse() int {
	return slotsPerArena - bits.OnesCount64(sa.availableSlotsMask.Load())
}
