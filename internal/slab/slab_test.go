package slab

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func activate(t *testing.T, c *Counter) {
	t.Helper()
	c.Reset()
	require.Equal(t, StillDisabled, c.TryActivatingIncrement())
	c.RebaseFromDisabled()
	require.Equal(t, int64(1), c.Load())
}

func TestCounterSingleReferenceRebasesToOne(t *testing.T) {
	var c Counter
	activate(t, &c)
	require.Equal(t, StateActive, c.State())
}

func TestCounterAlreadyActiveFastPath(t *testing.T) {
	var c Counter
	activate(t, &c)

	require.Equal(t, AlreadyActive, c.TryActivatingIncrement())
	require.Equal(t, int64(2), c.Load())
}

func TestCounterDecrementToZeroReturnsToDisabled(t *testing.T) {
	var c Counter
	activate(t, &c)

	require.Equal(t, JustWentToZero, c.Decrement())
	require.Equal(t, StateDisabled, c.State())
	require.Equal(t, Disabled, c.Load())
}

func TestCounterDecrementWhileSharedStaysAlive(t *testing.T) {
	var c Counter
	activate(t, &c)
	c.TryActivatingIncrement() // second ref, now 2

	require.Equal(t, StillAlive, c.Decrement())
	require.Equal(t, int64(1), c.Load())
	require.Equal(t, JustWentToZero, c.Decrement())
}

func TestCounterRebasePreservesRacingIncrements(t *testing.T) {
	var c Counter
	c.Reset()

	const racers = 7
	for i := 0; i < racers; i++ {
		require.Equal(t, StillDisabled, c.TryActivatingIncrement())
	}
	c.RebaseFromDisabled()
	require.Equal(t, int64(racers), c.Load())
}

func TestActivateWithMarkRebasesWhenMarkSucceeds(t *testing.T) {
	var c Counter
	c.Reset()
	require.Equal(t, StillDisabled, c.TryActivatingIncrement())

	res := c.ActivateWithMark(func() bool { return true }, func() { t.Fatal("should not yield") })
	require.True(t, res.Rebased)
	require.False(t, res.Contended)
	require.Equal(t, int64(1), c.Load())
}

func TestActivateWithMarkStopsOnceAnotherGoroutineRebased(t *testing.T) {
	var c Counter
	c.Reset()
	require.Equal(t, StillDisabled, c.TryActivatingIncrement())

	attempts := 0
	res := c.ActivateWithMark(func() bool {
		attempts++
		if attempts == 2 {
			// Simulate another goroutine's rebase landing between our
			// mark attempts.
			c.RebaseFromDisabled()
		}
		return false
	}, func() {})

	require.False(t, res.Rebased)
	require.True(t, res.Contended)
	require.Equal(t, int64(1), c.Load(), "the other goroutine's rebase must be the only one")
}

func TestActivateWithMarkDoesNotReincrementOnRetry(t *testing.T) {
	var c Counter
	c.Reset()
	require.Equal(t, StillDisabled, c.TryActivatingIncrement())

	markCalls := 0
	res := c.ActivateWithMark(func() bool {
		markCalls++
		return markCalls == 2
	}, func() {})

	require.True(t, res.Rebased)
	require.True(t, res.Contended)
	require.Equal(t, int64(1), c.Load(), "a single logical reference must rebase to exactly 1")
}

func TestTryIncrementIfActiveFailsOnDisabledOrZero(t *testing.T) {
	var c Counter
	c.Reset()
	require.False(t, c.TryIncrementIfActive())

	activate(t, &c)
	require.Equal(t, JustWentToZero, c.Decrement())
	require.False(t, c.TryIncrementIfActive())
}

func TestTryIncrementIfActiveSucceedsWhileLive(t *testing.T) {
	var c Counter
	activate(t, &c)

	require.True(t, c.TryIncrementIfActive())
	require.Equal(t, int64(2), c.Load())
}

func TestCounterConcurrentIncrementDecrementBalances(t *testing.T) {
	var c Counter
	activate(t, &c)

	const n = 2000
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.TryActivatingIncrement()
		}()
	}
	wg.Wait()
	require.Equal(t, int64(n+1), c.Load())

	var zeros atomic.Int32
	for i := 0; i < n+1; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.Decrement() == JustWentToZero {
				zeros.Add(1)
			}
		}()
	}
	wg.Wait()
	require.EqualValues(t, 1, zeros.Load())
	require.Equal(t, StateDisabled, c.State())
}
