package hsp

import "github.com/LoganEvans/HyperSharedPointer/internal/diag"

// Snapshot implements diag.Snapshotter so an Arena can be mounted directly
// under diag.Handler.
func (a *Arena) Snapshot() diag.ArenaSnapshot {
	return diag.ArenaSnapshot{
		Name:     a.cfg.name,
		NumCPU:   a.NumCPU(),
		UseCount: a.UseCount(),
	}
}
