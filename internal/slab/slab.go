// Package slab implements the per-CPU counter described by the design as
// "Slab": a single cache-line-isolated atomic integer with a tri-state
// Disabled/Initialising/Active lifecycle. One Counter is held per CPU inside
// an Arena; callers never share a Counter across CPUs on the fast path, which
// is the whole point of the sharded design.
//
// The tri-state encoding follows the convention spelled out for the
// reference design: Disabled is a large negative sentinel, Initialising is
// any other negative value (increments that raced in before the slab was
// marked used), and Active is any value >= 0, where the value itself is the
// live reference count attributed to this CPU.
package slab

import (
	"math"
	"sync/atomic"

	"github.com/LoganEvans/HyperSharedPointer/internal/align"
)

// Disabled is the sentinel value a Counter holds when no references are
// attributed to it. It is never written back to by ordinary increments;
// Decrement CASes the counter from 0 to Disabled, and nothing else.
const Disabled int64 = math.MinInt64

// State is the logical state implied by a Counter's current value.
type State uint8

const (
	StateDisabled State = iota
	StateInitialising
	StateActive
)

// IncrementResult is returned by TryActivatingIncrement.
type IncrementResult uint8

const (
	// AlreadyActive means the slab was already live; the increment was
	// recorded as an ordinary reference and nothing else needs to happen.
	AlreadyActive IncrementResult = iota
	// StillDisabled means the increment raced in while the slab was
	// Disabled or Initialising. The caller must attempt to mark its CPU
	// used in the arena's bitmask and, on success, call RebaseFromDisabled.
	StillDisabled
)

// DecrementResult is returned by Decrement.
type DecrementResult uint8

const (
	// StillAlive means other references remain on this slab.
	StillAlive DecrementResult = iota
	// JustWentToZero means this decrement brought the slab to zero and the
	// CAS back to Disabled succeeded; the caller must clear its CPU's bit
	// in the arena's used-CPU bitmask.
	JustWentToZero
	// RaceLostStillAlive means the slab was observed to reach zero, but
	// another goroutine re-incremented it from zero (an ordinary
	// AlreadyActive increment) before the CAS back to Disabled landed. The slab is alive
	// again and the caller must not clear any bitmask bit.
	RaceLostStillAlive
)

// Counter is a single per-CPU slab counter, cache-line padded so that two
// Counters stored back to back in an array never share a cache line.
type Counter struct {
	_     align.Pad
	value atomic.Int64
	_     align.Pad
}

// Reset returns the counter to the Disabled state. Used only at Arena
// construction time and is not itself synchronized against concurrent
// increments — callers must only call it before the Arena is published.
func (c *Counter) Reset() {
	c.value.Store(Disabled)
}

// Load returns the raw counter value. Debug/observability only.
func (c *Counter) Load() int64 {
	return c.value.Load()
}

// State reports the logical state implied by the counter's current value.
// Debug/observability only; never used in control flow.
func (c *Counter) State() State {
	v := c.value.Load()
	switch {
	case v == Disabled:
		return StateDisabled
	case v < 0:
		return StateInitialising
	default:
		return StateActive
	}
}

// TryActivatingIncrement atomically adds one reference to the slab. If the
// slab was already Active, the increment is complete and AlreadyActive is
// returned. Otherwise the slab was Disabled or Initialising: the increment
// still landed (the returned state reflects a still-negative counter), and
// the caller is responsible for driving the mark/rebase protocol in Arena.
//
// Go's sync/atomic operations are sequentially consistent, which is at least
// as strong as the acquire ordering the design requires here: the first
// increment on a slab must synchronise-with whatever the surrounding
// smart-pointer construction published before handing out the first handle.
func (c *Counter) TryActivatingIncrement() IncrementResult {
	prev := c.value.Add(1) - 1
	if prev >= 0 {
		return AlreadyActive
	}
	return StillDisabled
}

// RebaseFromDisabled re-maps the negative, Initialising-encoded value onto
// the positive Active range, preserving every increment that arrived while
// the slab was transitioning out of Disabled. It must be called exactly once
// per Disabled->Active transition, and only by the goroutine that won the
// arena's mark-CPU race for this slab.
//
// Note: count = v - Disabled (not v + 1 - Disabled). The "+1" form appearing
// in some statements of this design produces an off-by-one against the
// documented single-reference corner case (a brand-new slab's first
// increment must rebase to exactly 1); this implementation picks the formula
// consistent with that worked example. See DESIGN.md.
func (c *Counter) RebaseFromDisabled() {
	for {
		v := c.value.Load()
		if v >= 0 {
			// Already rebased (or raced past us) by someone else.
			return
		}
		desired := v - Disabled
		if desired < 1 {
			desired = 1
		}
		if c.value.CompareAndSwap(v, desired) {
			return
		}
	}
}

// Decrement removes one reference from the slab. If the reference removed
// was the last one, it CASes the counter from 0 back to Disabled and reports
// JustWentToZero. A concurrent increment that lands on the zero value before
// the CAS causes RaceLostStillAlive instead, and the slab remains Active.
func (c *Counter) Decrement() DecrementResult {
	prev := c.value.Add(-1) + 1
	if prev != 1 {
		return StillAlive
	}
	if c.value.CompareAndSwap(0, Disabled) {
		return JustWentToZero
	}
	return RaceLostStillAlive
}

// ActivateResult reports what ActivateWithMark did on behalf of its caller.
type ActivateResult struct {
	// Rebased is true if this call won the mark race and performed the
	// Disabled/Initialising -> Active rebase itself.
	Rebased bool
	// Contended is true if at least one mark attempt lost a race before
	// this call returned, active or not.
	Contended bool
}

// ActivateWithMark runs the mark-retry protocol the design specifies for
// bringing a slab from Disabled/Initialising to Active. The caller must have
// already called TryActivatingIncrement and observed StillDisabled; mark
// should attempt to claim this slab's bit in the owning arena's used-CPU
// bitmask (returning false if the bit was already set by a racing
// goroutine), and yield should back off before the next retry.
//
// Two races make a single mark_cpu failure ambiguous on its own: another
// goroutine may have already won the bit and be about to rebase (in which
// case our increment will be folded into their rebase and we only need to
// wait), or a concurrent decrement may have just observed zero and be about
// to clear the bit on its way back to Disabled (in which case our increment
// would be orphaned unless we retry the mark once the bit clears and rebase
// it ourselves). A literal reading of the mark-retry loop re-issues the
// increment itself on every retry, but that double-counts this call's single
// logical reference whenever the first race resolves with someone else's
// rebase landing between attempts. ActivateWithMark instead retries only the
// mark attempt, polling the slab's own value to detect "someone else already
// rebased on my behalf" as the exit condition - which also avoids spinning
// forever against the first race, where the bit is never going to clear.
func (c *Counter) ActivateWithMark(mark func() bool, yield func()) ActivateResult {
	var res ActivateResult
	for {
		if mark() {
			c.RebaseFromDisabled()
			res.Rebased = true
			return res
		}
		res.Contended = true
		if c.Load() >= 0 {
			return res
		}
		yield()
	}
}

// TryIncrementIfActive adds one reference iff the slab is currently Active
// with at least one live reference, the CAS loop a weak handle's lock()
// performs against the strong slab it shadows. Unlike
// TryActivatingIncrement, it never transitions a Disabled or Initialising
// slab, and it never "activates" a slab sitting at exactly zero: per the
// design, a lock() only succeeds when the strong count is currently >= 1.
func (c *Counter) TryIncrementIfActive() bool {
	for {
		v := c.value.Load()
		if v <= 0 {
			return false
		}
		if c.value.CompareAndSwap(v, v+1) {
			return true
		}
	}
}
