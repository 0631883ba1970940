package gc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestNewStateInvariants verifies invariant 1 (self-refob present in refs
// and owners) holds immediately after construction.
func TestNewStateInvariants(t *testing.T) {
	t.Parallel()

	s := NewState("A")
	snap := s.Snapshot()

	require.Contains(t, snap.Refs, snap.SelfToken)
	require.Contains(t, snap.Owners, snap.SelfToken)
	require.True(t, snap.LocallyQuiescent())
}

// TestSpawnAndRelease exercises S1: a root spawns a child, releases it, and
// the child reaches Stop once it applies the release.
func TestSpawnAndRelease(t *testing.T) {
	t.Parallel()

	a := NewState("A")
	childRef := a.Spawn("B")

	b := NewState("B", childRef)
	require.Contains(t, b.Snapshot().Owners, childRef.Token)

	msgs := a.Release([]Refob{childRef})
	require.Len(t, msgs, 1)
	require.Equal(t, Addr("B"), msgs[0].Target)

	ack := b.ReceiveRelease(msgs[0])
	require.Equal(t, msgs[0].Seq, ack.Seq)

	bSnap := b.Snapshot()
	require.True(t, bSnap.LocallyQuiescent())

	outcome := b.TryTerminate()
	require.Equal(t, Stop, outcome.Result)
}

// TestSelfMessagesDelayTermination exercises S2: outstanding self-messages
// must block termination until they are drained.
func TestSelfMessagesDelayTermination(t *testing.T) {
	t.Parallel()

	a := NewState("A")
	childRef := a.Spawn("B")
	b := NewState("B", childRef)

	selfRef := b.SelfRefob()

	// B sends itself 3 messages.
	var outbound []AppMsg
	for i := 0; i < 3; i++ {
		msg, err := b.Send(selfRef, i, nil)
		require.NoError(t, err)
		outbound = append(outbound, msg)
	}

	releaseMsgs := a.Release([]Refob{childRef})
	ack := b.ReceiveRelease(releaseMsgs[0])
	_ = ack

	// Not all self-messages delivered yet: must not terminate, must ask
	// for a SelfCheck instead.
	outcome := b.TryTerminate()
	require.Equal(t, Continue, outcome.Result)
	require.True(t, outcome.SelfCheck.IsSome())

	for i, msg := range outbound {
		b.ReceiveApp(msg)

		outcome = b.TryTerminate()
		if i < len(outbound)-1 {
			require.Equal(t, Continue, outcome.Result)
		}
	}

	require.Equal(t, Stop, outcome.Result)
}

// TestShareThenRelease exercises the core of S3/S4: A fabricates a refob
// from C to B via CreateRef, hands it to B, and the create/release race is
// resolved correctly regardless of delivery order.
func TestShareThenRelease(t *testing.T) {
	t.Parallel()

	a := NewState("A")
	refToB := a.Spawn("B")
	refToC := a.Spawn("C")

	b := NewState("B", refToB)
	c := NewState("C", refToC)

	shared, err := a.CreateRef(refToC, refToB)
	require.NoError(t, err)
	require.Equal(t, Addr("C"), shared.Target)

	// A hands the shared refob to B inside an AppMsg, then releases its
	// own refs to B and C.
	appMsg, err := a.Send(refToB, "payload", []Refob{shared})
	require.NoError(t, err)

	releaseMsgs := a.Release([]Refob{refToB, refToC})
	require.Len(t, releaseMsgs, 2)

	// Deliver the release to C before B ever uses the shared refob
	// (S4's create/release race).
	for _, rm := range releaseMsgs {
		if rm.Target == "C" {
			c.ReceiveRelease(rm)
		}
	}
	require.Contains(t, c.Snapshot().Owners, shared.Token)

	// B receives the AppMsg, assimilating the shared refob into its own
	// refs since it is the owner.
	b.ReceiveApp(appMsg)
	require.Contains(t, b.Snapshot().Refs, shared.Token)

	// B later sends on the shared refob; C's recv increments normally.
	sendMsg, err := b.Send(shared, "hello", nil)
	require.NoError(t, err)
	c.ReceiveApp(sendMsg)
	require.Equal(t, uint64(1), c.Snapshot().Recv[shared.Token])

	// B releases the shared refob; C forgets it.
	bReleaseMsgs := b.Release([]Refob{shared})
	require.Len(t, bReleaseMsgs, 1)
	c.ReceiveRelease(bReleaseMsgs[0])
	require.NotContains(t, c.Snapshot().Owners, shared.Token)

	snapshots := map[Addr]Snapshot{
		"A": a.Snapshot(),
		"B": b.Snapshot(),
		"C": c.Snapshot(),
	}
	require.NoError(t, CheckInvariants(snapshots))
}
