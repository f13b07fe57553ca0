// Package manager implements the optional ArenaManager extension in its
// full/sparse-slot form: a growable pool of slotArenas, each packing
// slotsPerArena independently-lived slots - strong and weak per-CPU slab
// arrays apiece - into a single backing allocation, amortizing one
// allocation across many leases instead of paying for one per lease. It is
// grounded on the original design's ArenaManager::getCounter(), which never
// blocks: it walks the current arena, falls back to scanning every arena it
// has ever allocated, and only allocates a new one once none have room.
package manager

import (
	"sync"
	"sync/atomic"
	"time"

	hsp "github.com/LoganEvans/HyperSharedPointer"
)

const (
	defaultMaxLeasesPerGeneration = 100_000
	defaultMaxGenerationAge       = 10 * time.Minute
)

// Manager owns a growable set of slotArenas, all built with the same numCPU
// and Option set passed once at New, and hands out SlotHandle-backed leases
// multiplexed across them.
type Manager struct {
	numCPU int
	cfg    *config
	gen    *generationTracker

	growMu  sync.Mutex
	arenas  atomic.Pointer[[]*slotArena]
	current atomic.Pointer[slotArena]
}

// New constructs a Manager whose slots each have numCPU CPU slabs and are
// configured with opts. It eagerly allocates the first slotArena so the
// first Acquire never pays an allocation it could have paid here instead.
func New(numCPU int, opts ...Option) *Manager {
	m := &Manager{
		numCPU: numCPU,
		cfg:    applyOptions(opts),
		gen:    newGenerationTracker(defaultMaxLeasesPerGeneration, defaultMaxGenerationAge),
	}
	empty := make([]*slotArena, 0)
	m.arenas.Store(&empty)

	if sa, err := newSlotArena(numCPU, m); err == nil {
		m.publishArena(sa)
	}
	return m
}

// Lease is a checked-out slot together with the first live handle into it.
// Callers clone Handle as needed and must call Release exactly once when
// finished with every handle derived from it.
type Lease struct {
	Handle     SlotHandle
	Generation uint32
}

// Release drops the Lease's own handle and reports whether that was the
// slot's last strong reference, same contract as SlotHandle.Destroy. The
// caller is responsible for having destroyed every clone derived from
// Handle first; the slot is only reclaimed once both its strong and weak
// bitmasks read empty.
func (l *Lease) Release() hsp.DropResult {
	return l.Handle.Destroy()
}

// Acquire claims a free slot, growing the pool with a new slotArena if none
// of the existing ones have room. Unlike a fixed-capacity pool, this never
// blocks: the original ArenaManager this extension mirrors has no blocking
// path either, matching the scenario where acquiring past a full arena
// simply allocates a second one.
func (m *Manager) Acquire() (*Lease, error) {
	if sa := m.current.Load(); sa != nil {
		if hdr, ok := sa.claimSlot(); ok {
			return m.leaseFrom(sa, hdr), nil
		}
	}

	m.growMu.Lock()
	defer m.growMu.Unlock()

	// Re-scan every arena under the lock: another goroutine may have grown
	// the pool, or released a slot in an arena that isn't m.current, while
	// we were arriving here.
	for _, sa := range *m.arenas.Load() {
		if hdr, ok := sa.claimSlot(); ok {
			m.current.Store(sa)
			return m.leaseFrom(sa, hdr), nil
		}
	}

	sa, err := newSlotArena(m.numCPU, m)
	if err != nil {
		m.cfg.logger.Warn("manager: failed to grow pool")
		return nil, err
	}
	m.publishArena(sa)

	hdr, ok := sa.claimSlot()
	if !ok {
		return nil, hsp.ErrAllocFailed
	}
	return m.leaseFrom(sa, hdr), nil
}

func (m *Manager) leaseFrom(sa *slotArena, hdr *slotHeader) *Lease {
	return &Lease{
		Handle:     newSlotHandleOnCurrentCPU(hdr, m.cfg),
		Generation: m.gen.recordLease(),
	}
}

func (m *Manager) publishArena(sa *slotArena) {
	cur := *m.arenas.Load()
	next := make([]*slotArena, len(cur)+1)
	copy(next, cur)
	next[len(cur)] = sa
	m.arenas.Store(&next)
	m.current.Store(sa)
}

// notifyAvailability biases the next Acquire back toward sa, the same
// currentArena_ update the original performs after notify_new_availability:
// a newly-freed slot in an older arena is tried again before the pool grows
// any further.
func (m *Manager) notifyAvailability(sa *slotArena) {
	m.current.Store(sa)
}

// InUse reports how many slots are currently checked out across every
// slotArena the Manager has ever allocated.
func (m *Manager) InUse() int {
	total := 0
	for _, sa := range *m.arenas.Load() {
		total += sa.inUse()
	}
	return total
}

// NumArenas reports how many slotArenas the pool has grown to.
func (m *Manager) NumArenas() int {
	return len(*m.arenas.Load())
}

// Snapshot reports the Manager's current occupancy. It returns a
// ManagerSnapshot rather than a diag.ArenaSnapshot, so a Manager does not
// satisfy diag.Snapshotter; SnapshotHandler serves it instead.
func (m *Manager) Snapshot() ManagerSnapshot {
	n := m.NumArenas()
	return ManagerSnapshot{
		NumCPU:     m.numCPU,
		InUse:      m.InUse(),
		MaxSlots:   n * slotsPerArena,
		NumArenas:  n,
		Generation: m.gen.generation(),
	}
}

// ManagerSnapshot is the JSON-serializable view of a Manager's occupancy.
type ManagerSnapshot struct {
	NumCPU     int    `json:"numCpu"`
	InUse      int    `json:"inUse"`
	MaxSlots   int    `json:"maxSlots"`
	NumArenas  int    `json:"numArenas"`
	Generation uint32 `json:"generation"`
}
