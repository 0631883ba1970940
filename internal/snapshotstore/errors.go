package snapshotstore

import "errors"

// ErrNoSnapshots is returned by LatestSnapshots when the store is empty.
var ErrNoSnapshots = errors.New("snapshotstore: no snapshots recorded")
