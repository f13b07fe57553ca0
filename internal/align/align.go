// Package align centralises the alignment and cache-line-padding helpers
// used by the slab/arena layer. Keeping them in one small package mirrors how
// the rest of this module isolates every unavoidable pointer/size computation
// away from the concurrency logic that depends on it, so the unsafe parts
// stay easy to audit.
package align

// CacheLine is the assumed destructive-interference size for the target
// architectures this module ships on (x86-64, arm64). There is no portable
// way to query it at compile time in Go, so, like most of the ecosystem, we
// hard-code the common value rather than add a cgo dependency to read it.
const CacheLine = 64

// ArenaAlign is the minimum byte alignment an Arena header must be placed at.
// CounterHandle steals CPUTagBits low bits of the arena pointer to encode the
// origin CPU, so the header's address must have that many zero low bits.
const ArenaAlign = 128

// CPUTagBits is the number of low bits of a tagged word reserved for the
// origin-CPU tag. 7 bits addresses up to 128 CPUs (0..127).
const CPUTagBits = 7

// MaxTaggedCPUs is the number of distinct CPU ids representable in the tag.
const MaxTaggedCPUs = 1 << CPUTagBits

// Up rounds x up to the nearest multiple of align, which must be a power of
// two. Used to carve an aligned sub-slice out of a plain []byte allocation.
func Up(x, align uintptr) uintptr {
	return (x + align - 1) &^ (align - 1)
}

// IsPowerOfTwo reports whether x has exactly one bit set.
func IsPowerOfTwo(x uintptr) bool {
	return x != 0 && (x&(x-1)) == 0
}

// Pad is an empty, cache-line-sized field used to separate hot atomic
// counters from their neighbours in a struct so that two counters never share
// a cache line. It contributes no logical state; its only job is layout.
type Pad [CacheLine]byte
