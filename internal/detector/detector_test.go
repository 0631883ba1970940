package detector

import (
	"testing"

	"github.com/dplyukhin/uigc/internal/gc"
	"github.com/stretchr/testify/require"
)

// TestSpawnAndDrop exercises S1: detecting a single, already-quiesced
// child from its own snapshot alone.
func TestSpawnAndDrop(t *testing.T) {
	t.Parallel()

	a := gc.NewState("A")
	childRef := a.Spawn("B")
	b := gc.NewState("B", childRef)

	releaseMsgs := a.Release([]gc.Refob{childRef})
	b.ReceiveRelease(releaseMsgs[0])

	require.Equal(t, gc.Stop, b.TryTerminate().Result)

	snapshots := map[gc.Addr]gc.Snapshot{"B": b.Snapshot()}
	got := Detect(snapshots, nil, nil)

	require.Equal(t, map[gc.Addr]struct{}{"B": {}}, got)
}

// TestCycleNotCollected exercises S5: two actors holding live refobs into
// each other are never closed, even if nothing else points at them.
func TestCycleNotCollected(t *testing.T) {
	t.Parallel()

	a := gc.NewState("A")
	refToB := a.Spawn("B")
	refToC := a.Spawn("C")

	b := gc.NewState("B", refToB)
	c := gc.NewState("C", refToC)

	// A shares B<->C refobs, then releases its own refs.
	bToC, err := a.CreateRef(refToC, refToB)
	require.NoError(t, err)
	cToB, err := a.CreateRef(refToB, refToC)
	require.NoError(t, err)

	msgToB, err := a.Send(refToB, "share", []gc.Refob{bToC})
	require.NoError(t, err)
	msgToC, err := a.Send(refToC, "share", []gc.Refob{cToB})
	require.NoError(t, err)

	b.ReceiveApp(msgToB)
	c.ReceiveApp(msgToC)

	releaseMsgs := a.Release([]gc.Refob{refToB, refToC})
	for _, rm := range releaseMsgs {
		switch rm.Target {
		case "B":
			b.ReceiveRelease(rm)
		case "C":
			c.ReceiveRelease(rm)
		}
	}

	snapshots := map[gc.Addr]gc.Snapshot{
		"B": b.Snapshot(),
		"C": c.Snapshot(),
	}
	got := Detect(snapshots, nil, nil)
	require.Empty(t, got)
}

// TestShareThenReleaseFullCoverage exercises S3 under full snapshot
// coverage: once every actor involved has fully settled, the detector
// closes the whole set.
func TestShareThenReleaseFullCoverage(t *testing.T) {
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
		switch rm.Target {
		case "B":
			b.ReceiveRelease(rm)
		case "C":
			c.ReceiveRelease(rm)
		}
	}

	// B releases the shared refob; C settles fully.
	bReleaseMsgs := b.Release([]gc.Refob{shared})
	c.ReceiveRelease(bReleaseMsgs[0])

	require.Equal(t, gc.Stop, a.TryTerminate().Result)
	require.Equal(t, gc.Stop, b.TryTerminate().Result)
	require.Equal(t, gc.Stop, c.TryTerminate().Result)

	snapshots := map[gc.Addr]gc.Snapshot{
		"A": a.Snapshot(),
		"B": b.Snapshot(),
		"C": c.Snapshot(),
	}
	got := Detect(snapshots, nil, nil)
	require.Equal(
		t,
		map[gc.Addr]struct{}{"A": {}, "B": {}, "C": {}},
		got,
	)
}

// TestPartialSnapshotWithstandsDanglingReference exercises the spirit of
// S6: while B still holds a live dangling refob to C, omitting B's
// snapshot but declaring it part of the known universe must prevent C
// (and therefore the whole set) from closing.
func TestPartialSnapshotWithstandsDanglingReference(t *testing.T) {
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

	// At this point C.owners = {s_C, shared}; B still holds shared in
	// its own refs and has not released it yet. B's snapshot is
	// omitted from the collected set, but the detector is told B is
	// still part of the universe.
	snapshots := map[gc.Addr]gc.Snapshot{
		"A": a.Snapshot(),
		"C": c.Snapshot(),
	}
	universe := map[gc.Addr]struct{}{"A": {}, "B": {}, "C": {}}

	got := Detect(snapshots, nil, universe)
	require.Empty(t, got, "C cannot close while B's disposition of "+
		"the shared refob is unknown")
}

// TestReceptionistNeverCandidate verifies the root actor's external
// receptionist ownership permanently excludes it from the detector.
func TestReceptionistNeverCandidate(t *testing.T) {
	t.Parallel()

	root := gc.NewState("root")
	snapshots := map[gc.Addr]gc.Snapshot{"root": root.Snapshot()}
	receptionists := map[gc.Addr]struct{}{"root": {}}

	got := Detect(snapshots, receptionists, nil)
	require.Empty(t, got)
}
