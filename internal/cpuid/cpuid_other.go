//go:build !linux

package cpuid

import (
	"os"
	"sync/atomic"
)

// sampleOS has no getcpu(2) equivalent off Linux. A round-robin counter
// seeded from the pid gives distinct, stable-ish shard assignment across
// goroutines without pretending to know the real CPU topology; correctness
// never depends on this value being accurate, only well-distributed.
var fallbackCounter = int64(os.Getpid())

func sampleOS() int {
	return int(atomic.AddInt64(&fallbackCounter, 1))
}
