package hsp

import (
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// TestConcurrentClonesAndDropsConverge exercises the same property the
// reference design calls out explicitly: N concurrent clones followed by N
// concurrent drops must leave the arena's use count exactly where it
// started, no matter how the clones landed across CPU slabs. None of those
// drops may report LastReference; only the final root drop does.
func TestConcurrentClonesAndDropsConverge(t *testing.T) {
	arena, root, err := NewArena(runtime.GOMAXPROCS(0))
	require.NoError(t, err)

	const n = 4000
	handles := make(chan CounterHandle, n)

	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			handles <- root.Clone()
			return nil
		})
	}
	require.NoError(t, g.Wait())
	close(handles)
	require.EqualValues(t, n+1, arena.UseCount())

	var lastRefs atomic.Int32
	var g2 errgroup.Group
	for h := range handles {
		h := h
		g2.Go(func() error {
			if h.Destroy() == LastReference {
				lastRefs.Add(1)
			}
			return nil
		})
	}
	require.NoError(t, g2.Wait())

	require.EqualValues(t, 0, lastRefs.Load(), "none of the clone drops should have observed the last reference")
	require.EqualValues(t, 1, arena.UseCount())
	require.Equal(t, LastReference, root.Destroy())
	require.EqualValues(t, 0, arena.UseCount())
	require.NoError(t, arena.Close())
}

// TestHandleSurvivesArenaWrapperGoingOutOfScope checks the documented
// lifetime contract from the other direction: as long as a handle is
// outstanding, the arena's backing buffer must stay alive even if the
// application drops every other reference to the *Arena value, because the
// only thing keeping the buffer reachable is the tagged pointer itself.
func TestHandleSurvivesArenaWrapperGoingOutOfScope(t *testing.T) {
	var h CounterHandle
	func() {
		arena, first, err := NewArena(4)
		require.NoError(t, err)
		h = first
		runtime.KeepAlive(arena)
	}()

	runtime.GC()
	runtime.GC()

	clone := h.Clone()
	require.False(t, clone.IsNull())
	require.Equal(t, StillAlive, clone.Destroy())
	require.Equal(t, LastReference, h.Destroy())
}
