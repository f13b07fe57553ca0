package hsp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewArenaFirstHandleHasCountOne(t *testing.T) {
	arena, h, err := NewArena(4)
	require.NoError(t, err)
	require.False(t, h.IsNull())
	require.EqualValues(t, 1, arena.UseCount())

	require.Equal(t, LastReference, h.Destroy())
	require.EqualValues(t, 0, arena.UseCount())
	require.NoError(t, arena.Close())
}

func TestNewArenaWrapsOversizedCPUCount(t *testing.T) {
	arena, h, err := NewArena(500)
	require.NoError(t, err)
	require.LessOrEqual(t, arena.NumCPU(), 128)
	require.Equal(t, LastReference, h.Destroy())
}

func TestNewArenaStrictRejectsOversizedCPUCount(t *testing.T) {
	_, _, err := NewArenaStrict(500)
	require.ErrorIs(t, err, ErrTooManyCPUs)
}

func TestArenaCloseRejectsNonEmptyArena(t *testing.T) {
	arena, h, err := NewArena(2)
	require.NoError(t, err)
	require.ErrorIs(t, arena.Close(), ErrArenaNotEmpty)
	require.Equal(t, LastReference, h.Destroy())
	require.NoError(t, arena.Close())
}

func TestArenaZeroOrNegativeCPUCountDefaultsToOne(t *testing.T) {
	arena, h, err := NewArena(0)
	require.NoError(t, err)
	require.Equal(t, 1, arena.NumCPU())
	require.Equal(t, LastReference, h.Destroy())

	arena, h, err = NewArena(-3)
	require.NoError(t, err)
	require.Equal(t, 1, arena.NumCPU())
	require.Equal(t, LastReference, h.Destroy())
}

func TestDebugCountersReflectsAttributedCPU(t *testing.T) {
	arena, h, err := NewArena(4, WithCPUIDFunc(func(int) int { return 2 }))
	require.NoError(t, err)

	counters := arena.DebugCounters()
	require.Len(t, counters, 4)
	require.EqualValues(t, 1, counters[2])
	for i, v := range counters {
		if i != 2 {
			require.Negative(t, v)
		}
	}

	require.Equal(t, LastReference, h.Destroy())
}

func TestWithCPUIDFuncPinsAllTrafficToOneSlab(t *testing.T) {
	arena, h, err := NewArena(8, WithCPUIDFunc(func(int) int { return 3 }))
	require.NoError(t, err)
	require.Equal(t, 3, h.CPU())

	clones := make([]CounterHandle, 10)
	for i := range clones {
		clones[i] = h.Clone()
		require.Equal(t, 3, clones[i].CPU())
	}
	require.EqualValues(t, 11, arena.UseCount())

	require.Equal(t, StillAlive, h.Destroy())
	for i, c := range clones {
		want := StillAlive
		if i == len(clones)-1 {
			want = LastReference
		}
		require.Equal(t, want, c.Destroy())
	}
	require.EqualValues(t, 0, arena.UseCount())
}
