// Package tagword centralises the one piece of pointer-tagging trickery this
// module needs: packing a small integer CPU tag into the low bits of a
// pointer to an Arena. It exists for the same reason
// internal/unsafehelpers exists in the cache this module is descended from —
// to keep every unavoidable unsafe.Pointer manipulation in one small,
// heavily-commented file instead of scattered through the handle logic.
//
// # Why this is safe
//
// The tagged word is stored as unsafe.Pointer, not uintptr, everywhere it is
// held across a call boundary. That matters: a uintptr is invisible to the
// garbage collector, so a bare integer disguised as an arena address could be
// collected out from under a live handle. An unsafe.Pointer whose value lands
// anywhere inside an allocated object's memory range is, per the unsafe
// package's documented rules, treated by the collector as keeping that whole
// allocation alive — including when the low align.CPUTagBits bits are
// nonzero, as long as the Arena's allocation is at least align.ArenaAlign
// bytes (it always is; see Arena's layout). Unpacking masks the tag off
// before the pointer is ever dereferenced, so no code ever treats a
// mid-object address as the object's start.
package tagword

import (
	"unsafe"

	"github.com/LoganEvans/HyperSharedPointer/internal/align"
)

const tagMask = uintptr(align.MaxTaggedCPUs - 1)

// Pack combines an arena pointer, whose address must already be aligned to
// align.ArenaAlign bytes, with a CPU tag in [0, align.MaxTaggedCPUs), into a
// single tagged word. The zero value of the result type is reserved to mean
// "null handle"; Pack never returns nil for a non-nil arena.
func Pack(arena unsafe.Pointer, cpu int) unsafe.Pointer {
	if arena == nil {
		return nil
	}
	base := uintptr(arena)
	if base&tagMask != 0 {
		panic("tagword: arena pointer is not aligned for tagging")
	}
	if cpu < 0 || uintptr(cpu) > tagMask {
		panic("tagword: cpu tag out of range")
	}
	return unsafe.Pointer(base | uintptr(cpu))
}

// UnpackArena returns the (untagged) arena pointer encoded in word, or nil if
// word is the null handle.
func UnpackArena(word unsafe.Pointer) unsafe.Pointer {
	if word == nil {
		return nil
	}
	return unsafe.Pointer(uintptr(word) &^ tagMask)
}

// UnpackCPU returns the CPU tag encoded in word. Calling it on the null
// handle returns 0, which callers must not mistake for a meaningful CPU id.
func UnpackCPU(word unsafe.Pointer) int {
	return int(uintptr(word) & tagMask)
}

// IsNull reports whether word is the reserved null-handle sentinel.
func IsNull(word unsafe.Pointer) bool {
	return word == nil
}
