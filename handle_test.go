package hsp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNullHandleIsInert(t *testing.T) {
	var h CounterHandle
	require.True(t, h.IsNull())
	require.True(t, h.Clone().IsNull())
	require.Equal(t, NotOwned, h.Destroy()) // must not panic
	require.Equal(t, NotOwned, Drop(h))     // must not panic
}

func TestCloneIncrementsAndDropDecrements(t *testing.T) {
	arena, h, err := NewArena(4)
	require.NoError(t, err)

	h2 := Clone(h)
	require.False(t, h2.IsNull())
	require.EqualValues(t, 2, arena.UseCount())

	require.Equal(t, StillAlive, Drop(h2))
	require.EqualValues(t, 1, arena.UseCount())

	require.Equal(t, LastReference, Drop(h))
	require.EqualValues(t, 0, arena.UseCount())
	require.NoError(t, arena.Close())
}

func TestCloneDistributesAcrossCPUsByDefault(t *testing.T) {
	numCPU := 16
	arena, h, err := NewArena(numCPU)
	require.NoError(t, err)
	defer h.Destroy()

	seen := map[int]bool{h.CPU(): true}
	var clones []CounterHandle
	for i := 0; i < numCPU*4; i++ {
		c := h.Clone()
		seen[c.CPU()] = true
		clones = append(clones, c)
	}
	require.Greater(t, len(seen), 1, "expected clones to land on more than one CPU slab")

	for _, c := range clones {
		c.Destroy()
	}
}
