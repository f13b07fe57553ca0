package manager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerationRotatesAfterLeaseBudget(t *testing.T) {
	g := newGenerationTracker(3, time.Hour)
	first := g.recordLease()
	require.EqualValues(t, 1, first)
	g.recordLease()
	g.recordLease()
	fourth := g.recordLease()
	require.EqualValues(t, 2, fourth)
}

func TestGenerationRotatesAfterAgeBudget(t *testing.T) {
	g := newGenerationTracker(1_000_000, time.Millisecond)
	first := g.recordLease()
	require.EqualValues(t, 1, first)
	time.Sleep(5 * time.Millisecond)
	second := g.recordLease()
	require.EqualValues(t, 2, second)
}
