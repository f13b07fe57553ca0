package cpuid

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCurrentStaysInRange(t *testing.T) {
	Reset()
	for i := 0; i < 100; i++ {
		cpu := Current(16)
		require.GreaterOrEqual(t, cpu, 0)
		require.Less(t, cpu, 16)
	}
}

func TestCurrentCachesWithinRefreshInterval(t *testing.T) {
	Reset()
	var calls int
	old := sampler
	defer func() { sampler = old }()
	sampler = func() int {
		calls++
		return calls
	}

	first := Current(8)
	for i := 0; i < refreshInterval-1; i++ {
		require.Equal(t, first, Current(8))
	}
	require.Equal(t, 1, calls)

	Current(8)
	require.Equal(t, 2, calls)
}

func TestCurrentConcurrentSafe(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_ = Current(32)
			}
		}()
	}
	wg.Wait()
}
