package hsp

import "errors"

// Sentinel errors returned by the public API. Callers should compare with
// errors.Is, following the pattern the rest of this module's ancestor used
// for its own config validation errors.
var (
	// ErrAllocFailed is returned by NewArena when the underlying byte
	// allocation for the arena header and its trailing slab array could not
	// be carved out aligned, which in practice only happens if numCPU is
	// absurd enough to overflow the size computation.
	ErrAllocFailed = errors.New("hsp: arena allocation failed")

	// ErrTooManyCPUs is returned by NewArenaStrict when numCPU exceeds
	// align.MaxTaggedCPUs, the number of CPU ids the tagged pointer format
	// can address. NewArena, the lenient constructor, instead wraps CPU ids
	// modulo align.MaxTaggedCPUs and never returns this error.
	ErrTooManyCPUs = errors.New("hsp: numCPU exceeds the taggable CPU range")

	// ErrArenaNotEmpty is returned by Arena.Close when the arena still has
	// live references.
	ErrArenaNotEmpty = errors.New("hsp: arena still has live references")

	// ErrDoubleDestroy names the double-destroy condition. No function in
	// this module currently returns it: Destroy on the null handle reports
	// NotOwned, and a double destroy is otherwise only caught by the
	// hspdebug build's panic.
	ErrDoubleDestroy = errors.New("hsp: handle already destroyed")
)
