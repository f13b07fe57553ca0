package diag

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeSnapshotter struct{ snap ArenaSnapshot }

func (f fakeSnapshotter) Snapshot() ArenaSnapshot { return f.snap }

func TestHandlerEncodesSnapshotAsJSON(t *testing.T) {
	want := ArenaSnapshot{Name: "test-arena", NumCPU: 8, UseCount: 3}

	req := httptest.NewRequest("GET", "/debug/hsp/snapshot", nil)
	rec := httptest.NewRecorder()
	Handler(fakeSnapshotter{snap: want}).ServeHTTP(rec, req)

	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got ArenaSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, want, got)
}
