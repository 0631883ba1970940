package detector

import (
	"context"
	"testing"

	"github.com/dplyukhin/uigc/internal/gc"
	"github.com/stretchr/testify/require"
)

// TestDetectParallelMatchesDetect verifies the pool-backed closure
// computation agrees with the single-threaded Detect on the S3 scenario.
func TestDetectParallelMatchesDetect(t *testing.T) {
	t.Parallel()

	a := gc.NewState("A")
	refToB := a.Spawn("B")
	refToC := a.Spawn("C")
	b := gc.NewState("B", refToB)
	c := gc.NewState("C", refToC)

	shared, err := a.CreateRef(refToC, refToB)
	require.NoError(t, err)

	appToB, err := a.Send(refToB, "share", []gc.Refob{shared})
	require.NoError(t, err)
	b.ReceiveApp(appToB)

	releaseMsgs := a.Release([]gc.Refob{refToB, refToC})
	for _, rm := range releaseMsgs {
		if rm.Target == "C" {
			c.ReceiveRelease(rm)
		}
	}

	bReleaseMsgs := b.Release([]gc.Refob{shared})
	c.ReceiveRelease(bReleaseMsgs[0])

	snapshots := map[gc.Addr]gc.Snapshot{
		"A": a.Snapshot(),
		"B": b.Snapshot(),
		"C": c.Snapshot(),
	}

	pool := NewCheckPool(2)
	defer pool.Stop()

	got := DetectParallel(context.Background(), pool, snapshots, nil, nil)
	want := Detect(snapshots, nil, nil)

	require.Equal(t, want, got)
}
