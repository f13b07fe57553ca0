// Package bench provides reproducible micro-benchmarks for HyperSharedPointer.
// Run via: go test ./bench -bench=. -benchmem -cpu 1,4,16,64
//
// We measure:
//  1. Clone         - mint a new reference from a single shared root
//  2. Destroy       - drop a reference
//  3. CloneDestroy  - paired clone/destroy, the realistic steady-state shape
//  4. CloneDestroyParallel - the same workload under b.RunParallel, where the
//     per-CPU sharding this module exists for should show up as near-linear
//     scaling instead of the single-hot-cache-line collapse a naive atomic
//     counter would show.
package bench

import (
	"runtime"
	"testing"

	hsp "github.com/LoganEvans/HyperSharedPointer"
)

func newRoot(b *testing.B) (*hsp.Arena, hsp.CounterHandle) {
	b.Helper()
	arena, root, err := hsp.NewArena(runtime.GOMAXPROCS(0))
	if err != nil {
		b.Fatal(err)
	}
	return arena, root
}

func BenchmarkClone(b *testing.B) {
	_, root := newRoot(b)
	defer root.Destroy()

	handles := make([]hsp.CounterHandle, 0, b.N)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handles = append(handles, root.Clone())
	}
	b.StopTimer()
	for _, h := range handles {
		h.Destroy()
	}
}

func BenchmarkDestroy(b *testing.B) {
	_, root := newRoot(b)
	defer root.Destroy()

	handles := make([]hsp.CounterHandle, b.N)
	for i := range handles {
		handles[i] = root.Clone()
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handles[i].Destroy()
	}
}

func BenchmarkCloneDestroy(b *testing.B) {
	_, root := newRoot(b)
	defer root.Destroy()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h := root.Clone()
		h.Destroy()
	}
}

func BenchmarkCloneDestroyParallel(b *testing.B) {
	_, root := newRoot(b)
	defer root.Destroy()

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			h := root.Clone()
			h.Destroy()
		}
	})
}
