package hsp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWeakHandleLocksWhileStrongRefOutstanding(t *testing.T) {
	arena, h, err := NewArena(4)
	require.NoError(t, err)

	w := NewWeak(h)
	require.False(t, w.IsNull())

	locked := w.Lock()
	require.False(t, locked.IsNull())
	require.EqualValues(t, 2, arena.UseCount())

	require.Equal(t, StillAlive, locked.Destroy())
	require.Equal(t, LastReference, h.Destroy())
	require.EqualValues(t, 0, arena.UseCount())
}

func TestWeakHandleFailsToLockAfterLastStrongRefDrops(t *testing.T) {
	arena, h, err := NewArena(4, WithCPUIDFunc(func(int) int { return 0 }))
	require.NoError(t, err)

	w := NewWeak(h)
	require.Equal(t, LastReference, h.Destroy())
	require.EqualValues(t, 0, arena.UseCount())

	locked := w.Lock()
	require.True(t, locked.IsNull())
}

func TestNullWeakHandleLockIsNull(t *testing.T) {
	var w WeakHandle
	require.True(t, w.IsNull())
	require.True(t, w.Lock().IsNull())
}
