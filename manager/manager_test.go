package manager

import (
	"testing"

	hsp "github.com/LoganEvans/HyperSharedPointer"
	"github.com/stretchr/testify/require"
)

func TestAcquireReleaseRoundTrip(t *testing.T) {
	m := New(4)

	lease, err := m.Acquire()
	require.NoError(t, err)
	require.False(t, lease.Handle.IsNull())
	require.Equal(t, 1, m.InUse())

	require.Equal(t, hsp.LastReference, lease.Release())
	require.Equal(t, 0, m.InUse())
}

func TestAcquireReusesReleasedSlot(t *testing.T) {
	m := New(4)

	lease1, err := m.Acquire()
	require.NoError(t, err)
	hdr1 := lease1.Handle.header()
	require.Equal(t, hsp.LastReference, lease1.Release())

	lease2, err := m.Acquire()
	require.NoError(t, err)
	require.Same(t, hdr1, lease2.Handle.header())
	require.Equal(t, hsp.LastReference, lease2.Release())
	require.Equal(t, 1, m.NumArenas())
}

// TestAcquireGrowsPastFullArena exercises the manager extension's literal
// scaling scenario: acquiring past a full arena's slotsPerArena slots grows
// the pool instead of blocking, and releasing every slot in the first arena
// makes it available again without shrinking the pool back down.
func TestAcquireGrowsPastFullArena(t *testing.T) {
	m := New(2)

	leases := make([]*Lease, 0, slotsPerArena)
	for i := 0; i < slotsPerArena; i++ {
		l, err := m.Acquire()
		require.NoError(t, err)
		leases = append(leases, l)
	}
	require.Equal(t, slotsPerArena, m.InUse())
	require.Equal(t, 1, m.NumArenas())

	overflow, err := m.Acquire()
	require.NoError(t, err)
	require.Equal(t, 2, m.NumArenas())
	require.Equal(t, slotsPerArena+1, m.InUse())

	for _, l := range leases {
		l.Release()
	}
	require.Equal(t, 1, m.InUse())
	require.Equal(t, 2, m.NumArenas())

	require.Equal(t, hsp.LastReference, overflow.Release())
	require.Equal(t, 0, m.InUse())

	again, err := m.Acquire()
	require.NoError(t, err)
	require.Equal(t, 2, m.NumArenas(), "acquiring again must not grow past the freed first arena")
	again.Release()
}

func TestSlotHandleCloneSharesSlot(t *testing.T) {
	m := New(4)

	lease, err := m.Acquire()
	require.NoError(t, err)

	clone := lease.Handle.Clone()
	require.False(t, clone.IsNull())
	require.EqualValues(t, 2, lease.Handle.UseCount())
	require.Len(t, lease.Handle.DebugCounters(), 4)

	require.Equal(t, hsp.StillAlive, clone.Destroy())
	require.Equal(t, hsp.LastReference, lease.Release())
}

func TestWeakSlotHandleLockAndRelease(t *testing.T) {
	m := New(4)

	lease, err := m.Acquire()
	require.NoError(t, err)

	w := NewWeak(lease.Handle)
	require.False(t, w.IsNull())

	locked := w.Lock()
	require.False(t, locked.IsNull())
	require.Equal(t, hsp.StillAlive, locked.Destroy())

	require.Equal(t, hsp.LastReference, lease.Release())

	require.True(t, w.Lock().IsNull(), "lock must fail once the strong side has dropped to zero")
	w.Release()
	require.Equal(t, 0, m.InUse())
}
