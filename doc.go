// Package hsp implements HyperSharedPointer, a CPU-sharded reference-counted
// pointer.
//
// Each live object is backed by an Arena holding one slab.Counter per CPU. A
// CounterHandle is a tagged pointer naming the arena and the single CPU slab
// it is attributed to, so cloning and dropping a handle on a busy CPU never
// contends with another CPU doing the same thing to a different handle over
// the same object. The design trades memory (one counter per CPU per live
// object, instead of one counter total) for eliminating cross-CPU cache-line
// ping-pong on the hottest possible operation: incrementing and decrementing
// a shared reference count.
//
//	arena, h, err := hsp.NewArena(runtime.NumCPU())
//	if err != nil {
//		// handle err
//	}
//	defer func() {
//		h.Destroy()
//		_ = arena.Close()
//	}()
//
//	h2 := h.Clone()
//	go func() {
//		defer h2.Destroy()
//		// h2 is now independently owned by this goroutine
//	}()
//
// See package manager for a higher-level allocator that multiplexes many
// independent reference counts as slots of a growable pool of slot arenas, and
// package diag for an HTTP introspection endpoint.
package hsp
