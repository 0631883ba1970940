package snapshotstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dplyukhin/uigc/internal/gc"
	"github.com/stretchr/testify/require"
)

// newTestStore creates a Store backed by a real SQLite database in a
// temporary directory. The database is automatically cleaned up when the
// test finishes.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "snapshots.db")
	store, err := Open(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func TestAppendAndLatestSnapshots(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	a := gc.NewState("A")
	childRef := a.Spawn("B")
	b := gc.NewState("B", childRef)

	require.NoError(t, store.Append(ctx, "A", 1, a.Snapshot()))
	require.NoError(t, store.Append(ctx, "B", 1, b.Snapshot()))

	// Append a second, later snapshot for A; LatestSnapshots must
	// return it rather than the first.
	msg, err := a.Send(childRef, "hello", nil)
	require.NoError(t, err)
	b.ReceiveApp(msg)
	require.NoError(t, store.Append(ctx, "A", 2, a.Snapshot()))

	latest, err := store.LatestSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 2)

	aSnap := latest["A"]
	require.Equal(t, gc.Addr("A"), aSnap.Self)
	require.Equal(t, uint64(1), aSnap.Sent[childRef.Token])

	bSnap := latest["B"]
	require.Equal(t, uint64(1), bSnap.Recv[childRef.Token])
}

func TestReceptionists(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutReceptionist(ctx, "root"))
	require.NoError(t, store.PutReceptionist(ctx, "root"))

	got, err := store.Receptionists(ctx)
	require.NoError(t, err)
	require.Equal(t, map[gc.Addr]struct{}{"root": {}}, got)
}
