// Package invariant provides debug-only correctness checks for the handle
// lifecycle: double-destroy detection keyed by the handle's tagged pointer
// word. Mirrors the reference cache's habit of
// keeping every unsafe or expensive-to-check invariant behind a single file
// gated by a build tag, so the hot path pays nothing for it in production
// builds.
//
// Build with -tags hspdebug to enable; the default build compiles every
// function in this file down to a no-op.
package invariant

// MarkCreated records that a handle word has come into existence (via Clone
// or NewArena's implicit first handle). Several live handles legitimately
// share one word - every handle minted on the same CPU of the same arena
// carries the same (arena, cpu) tag - so debug builds keep a live count per
// word rather than a set.
func MarkCreated(word uintptr) {
	markCreated(word)
}

// MarkDestroyed records that a handle word has been destroyed, decrementing
// its live count. Debug builds panic if the word has no live handle left,
// which catches a Destroy/Drop that outnumbers the handles created with that
// word. A word whose count drops to zero can become live again later; this
// is a live count, not a history log.
func MarkDestroyed(word uintptr) {
	markDestroyed(word)
}
