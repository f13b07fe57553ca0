package manager

import (
	"sync"
	"sync/atomic"
)

// slotRegistry maps the registryID stamped into every slotHeader of a
// slotArena back to the *slotArena Go struct that owns it, for exactly the
// reason the root package's registry.go exists: slotHeader lives inside a
// pointer-free []byte allocation, so a tagged SlotHandle can recover its
// header directly but cannot recover the owning *slotArena (which holds the
// real claim/release state and the back-reference to its Manager) without
// an indirection table.
//
// Writes happen only when a slotArena is created, which is rare (pool
// growth); reads happen on every SlotHandle.Destroy and WeakSlotHandle
// operation, so this copies registry.go's lock-free-read, copy-on-write
// shape rather than protecting a map with a mutex.
var (
	slotRegistryMu sync.Mutex
	slotRegistry   atomic.Pointer[[]*slotArena]
)

func init() {
	empty := make([]*slotArena, 0)
	slotRegistry.Store(&empty)
}

func registerSlotArena(sa *slotArena) int32 {
	slotRegistryMu.Lock()
	defer slotRegistryMu.Unlock()
	cur := *slotRegistry.Load()
	next := make([]*slotArena, len(cur)+1)
	copy(next, cur)
	next[len(cur)] = sa
	slotRegistry.Store(&next)
	return int32(len(cur))
}

func lookupSlotArena(id int32) *slotArena {
	cur := *slotRegistry.Load()
	if int(id) < 0 || int(id) >= len(cur) {
		return nil
	}
	return cur[id]
}
