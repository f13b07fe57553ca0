package hsp

import (
	"unsafe"

	"github.com/LoganEvans/HyperSharedPointer/internal/invariant"
	"github.com/LoganEvans/HyperSharedPointer/internal/slab"
	"github.com/LoganEvans/HyperSharedPointer/internal/tagword"
)

// DropResult reports what a Destroy/Drop call observed about the handle it
// released: whether other references remain, whether this was the arena's
// last live reference (so the caller is responsible for destroying the
// payload and the arena itself), or whether the handle never owned a
// reference in the first place.
type DropResult uint8

const (
	// StillAlive means other references remain on the arena after this one
	// was released.
	StillAlive DropResult = iota
	// LastReference means this Destroy/Drop cleared the arena's last live
	// reference. The caller now owns the arena's teardown.
	LastReference
	// NotOwned means the handle was already null; nothing was released.
	NotOwned
)

// CounterHandle is a single owning reference to a shared object, backed by
// one CPU's slab in some Arena. Its zero value is the null handle: IsNull
// reports true, and Clone/Destroy on it are no-ops. CounterHandle is a small
// value type meant to be passed by value, copied into structs, and sent over
// channels; the only way to legitimately obtain an additional reference is
// Clone, never a raw struct copy kept alongside the original (see
// invariant's double-destroy detector in debug builds).
type CounterHandle struct {
	word unsafe.Pointer
}

// IsNull reports whether h is the zero handle.
func (h CounterHandle) IsNull() bool {
	return tagword.IsNull(h.word)
}

// CPU returns the CPU slab this handle is attributed to. Debug/diagnostics
// only; never meaningful on the null handle.
func (h CounterHandle) CPU() int {
	return tagword.UnpackCPU(h.word)
}

func (h CounterHandle) arenaHdr() *arenaHeader {
	return (*arenaHeader)(tagword.UnpackArena(h.word))
}

// Clone produces a new, independent CounterHandle sharing ownership of the
// same object as h. The new handle samples the calling goroutine's current
// CPU afresh rather than reusing h's CPU, so a burst of clones from
// different CPUs spreads across slabs the same way the object's original
// construction did. Cloning the null handle returns the null handle.
func (h CounterHandle) Clone() CounterHandle {
	if h.IsNull() {
		return CounterHandle{}
	}
	hdr := h.arenaHdr()
	cfg := lookupConfig(hdr.cfgSlot)
	return newHandleOnCurrentCPU(hdr, cfg)
}

// Destroy releases h's reference and reports whether this was the arena's
// last live reference. It must be called exactly once per handle obtained
// from NewArena/NewArenaStrict or Clone; destroying a word more times than
// handles carrying it were created is a double-destroy bug that debug builds
// (-tags hspdebug) panic on. Destroying the null handle is a no-op that
// reports NotOwned.
func (h CounterHandle) Destroy() DropResult {
	if h.IsNull() {
		return NotOwned
	}
	invariant.MarkDestroyed(uintptr(h.word))

	hdr := h.arenaHdr()
	cfg := lookupConfig(hdr.cfgSlot)
	cpu := tagword.UnpackCPU(h.word)
	counter := hdr.counter(cpu)

	result := StillAlive
	switch counter.Decrement() {
	case slab.JustWentToZero:
		if hdr.unmarkCPU(cpu) {
			result = LastReference
		}
	case slab.RaceLostStillAlive:
		cfg.metrics.incSlabContention(cpu)
	}
	cfg.metrics.incDestroy(cpu)
	return result
}

// Clone is the free-function form of h.Clone, provided because the design
// this module implements describes handle operations as free functions
// taking the handle by value rather than methods.
func Clone(h CounterHandle) CounterHandle {
	return h.Clone()
}

// Drop is the free-function form of h.Destroy.
func Drop(h CounterHandle) DropResult {
	return h.Destroy()
}
