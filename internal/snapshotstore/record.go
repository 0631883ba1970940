package snapshotstore

import (
	"encoding/json"
	"fmt"

	"github.com/dplyukhin/uigc/internal/gc"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// record is the JSON-serializable mirror of gc.Snapshot. gc.Snapshot keys
// its maps by gc.Token, a struct, which encoding/json cannot use as a map
// key; record flattens every map into a slice of entries instead.
type record struct {
	Self      gc.Addr `json:"self"`
	SelfToken tokenJSON `json:"self_token"`

	Refs           []refobEntry  `json:"refs"`
	Owners         []refobEntry  `json:"owners"`
	CreatedFlat    []refobEntry  `json:"created_flat"`
	ReleasedOwners []refobEntry  `json:"released_owners"`

	Sent []counterEntry `json:"sent"`
	Recv []counterEntry `json:"recv"`
}

type tokenJSON struct {
	Owner   gc.Addr `json:"owner"`
	Counter uint64  `json:"counter"`
}

type refobEntry struct {
	Token  tokenJSON `json:"token"`
	Owner  *gc.Addr  `json:"owner,omitempty"`
	Target gc.Addr   `json:"target"`
}

type counterEntry struct {
	Token tokenJSON `json:"token"`
	Count uint64    `json:"count"`
}

func toTokenJSON(t gc.Token) tokenJSON {
	return tokenJSON{Owner: t.Owner, Counter: t.Counter}
}

func (tj tokenJSON) toToken() gc.Token {
	return gc.Token{Owner: tj.Owner, Counter: tj.Counter}
}

func toRefobEntries(m map[gc.Token]gc.Refob) []refobEntry {
	entries := make([]refobEntry, 0, len(m))
	for tok, r := range m {
		entry := refobEntry{
			Token:  toTokenJSON(tok),
			Target: r.Target,
		}
		if owner, ok := r.OwnerAddr(); ok {
			entry.Owner = &owner
		}
		entries = append(entries, entry)
	}
	return entries
}

func fromRefobEntries(entries []refobEntry) map[gc.Token]gc.Refob {
	m := make(map[gc.Token]gc.Refob, len(entries))
	for _, entry := range entries {
		owner := fn.Option[gc.Addr]{}
		if entry.Owner != nil {
			owner = fn.Some(*entry.Owner)
		}
		tok := entry.Token.toToken()
		m[tok] = gc.NewRefob(tok, owner, entry.Target)
	}
	return m
}

func toCounterEntries(m map[gc.Token]uint64) []counterEntry {
	entries := make([]counterEntry, 0, len(m))
	for tok, count := range m {
		entries = append(entries, counterEntry{
			Token: toTokenJSON(tok),
			Count: count,
		})
	}
	return entries
}

func fromCounterEntries(entries []counterEntry) map[gc.Token]uint64 {
	m := make(map[gc.Token]uint64, len(entries))
	for _, entry := range entries {
		m[entry.Token.toToken()] = entry.Count
	}
	return m
}

// MarshalSnapshotJSON converts a gc.Snapshot into its flattened JSON form,
// the same one the append-only log stores it in. Exported so callers that
// need to report a gc.Snapshot as JSON (e.g. the CLI's --format json
// output) don't need to re-derive the gc.Token-keyed-map flattening this
// package already does for storage.
func MarshalSnapshotJSON(snap gc.Snapshot) (json.RawMessage, error) {
	return marshalSnapshot(snap)
}

// marshalSnapshot converts a gc.Snapshot into its append-only wire form.
func marshalSnapshot(snap gc.Snapshot) ([]byte, error) {
	rec := record{
		Self:           snap.Self,
		SelfToken:      toTokenJSON(snap.SelfToken),
		Refs:           toRefobEntries(snap.Refs),
		Owners:         toRefobEntries(snap.Owners),
		CreatedFlat:    toRefobEntries(snap.CreatedFlat),
		ReleasedOwners: toRefobEntries(snap.ReleasedOwners),
		Sent:           toCounterEntries(snap.Sent),
		Recv:           toCounterEntries(snap.Recv),
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

// unmarshalSnapshot reverses marshalSnapshot.
func unmarshalSnapshot(data []byte) (gc.Snapshot, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return gc.Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return gc.Snapshot{
		Self:           rec.Self,
		SelfToken:      rec.SelfToken.toToken(),
		Refs:           fromRefobEntries(rec.Refs),
		Owners:         fromRefobEntries(rec.Owners),
		CreatedFlat:    fromRefobEntries(rec.CreatedFlat),
		ReleasedOwners: fromRefobEntries(rec.ReleasedOwners),
		Sent:           fromCounterEntries(rec.Sent),
		Recv:           fromCounterEntries(rec.Recv),
	}, nil
}
