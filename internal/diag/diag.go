// Package diag exposes a JSON introspection snapshot for a running Arena
// (manager.Manager serves its own snapshot through its SnapshotHandler),
// modeled on the /debug/arena-cache/snapshot endpoint this module's
// ancestor cache served for its own operators.
package diag

import (
	"encoding/json"
	"net/http"
)

// ArenaSnapshot describes an Arena's shape and current occupancy for an
// operator looking at /debug/hsp/snapshot. It intentionally does not walk
// individual slab values: that would require reaching into hsp's unexported
// arena header, which this package has no access to (and should not), so
// Snapshotter implementations compute it from the public API instead.
type ArenaSnapshot struct {
	Name     string `json:"name"`
	NumCPU   int    `json:"numCpu"`
	UseCount int64  `json:"useCount"`
}

// Snapshotter is satisfied by anything that can describe its current state
// as an ArenaSnapshot, most directly *hsp.Arena.
type Snapshotter interface {
	Snapshot() ArenaSnapshot
}

// Handler returns an http.Handler that serves a JSON-encoded snapshot on
// every request. Intended to be mounted under something like
// /debug/hsp/snapshot, the same convention the reference CLI's target
// service used.
func Handler(s Snapshotter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(s.Snapshot())
	})
}
