package manager

import (
	"encoding/json"
	"net/http"
)

// SnapshotHandler serves the Manager's occupancy as JSON, the same
// /debug/hsp/snapshot convention internal/diag uses for a bare Arena.
func (m *Manager) SnapshotHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(m.Snapshot())
	})
}
