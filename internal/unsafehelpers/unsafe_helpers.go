// Package unsafehelpers centralises unavoidable unsafe.Pointer usage that
// doesn't belong to a more specific package, so the rest of this module
// stays easy to audit. The only helper left here is PtrSlice: everything
// else this package's ancestor provided (zero-copy string<->[]byte
// conversions) had no counterpart in this module's domain and was dropped
// rather than kept unused; see DESIGN.md.
package unsafehelpers

import "unsafe"

// PtrSlice converts a *T pointer and element count into a []T without
// copying, for read-only debug introspection of a manually laid-out array
// (such as an Arena's trailing per-CPU counters) that isn't a real Go slice
// in the first place. The returned slice aliases the same memory as ptr for
// exactly n elements; callers must not let it outlive whatever guarantees
// ptr stays valid.
func PtrSlice[T any](ptr *T, n int) []T {
	if n == 0 {
		return nil
	}
	return unsafe.Slice(ptr, n)
}
