// Package detector implements the offline, centralized quiescence
// detector: a pure function from a collection of per-actor GC snapshots to
// the maximal subset of actors that are provably terminated. It never
// mutates its input and never communicates with actors; it is run by
// whatever schedules snapshot collection (see internal/snapshotstore and
// cmd/uigc).
package detector

import "github.com/dplyukhin/uigc/internal/gc"

// Detect computes the set of actors in snapshots that are provably
// terminated. receptionists names actors that are permanently externally
// owned (e.g. the root actor) and therefore can never be detector
// candidates, even if their snapshot would otherwise look locally
// quiescent. universe is the set of actor addresses the caller currently
// believes are part of the system, whether or not a snapshot was
// collected for them; any address the caller has never heard of need not
// appear here, but every address that is known to still exist (even
// without a fresh snapshot) must. With a nil or empty universe, every
// target that has no snapshot counts as known, so any edge into it is
// dangling.
//
// The algorithm: start from the locally-quiescent candidates, build the
// directed graph of dangling outbound evidence among them (an edge A->B
// when A's snapshot still shows a live refob or fabricated refob pointing
// at B that B hasn't yet recorded as released), and iteratively remove any
// candidate with an edge leaving the current candidate set, along with any
// edge into a non-candidate (which also disqualifies the source), until a
// fixed point is reached. An edge into an address that is in universe but
// has no snapshot at all is always treated as dangling, since the
// detector has no evidence the address has released anything. What
// remains is closed: no member holds a dangling reference to anything
// outside the set, and nothing outside the set holds a live reference
// into it.
func Detect(
	snapshots map[gc.Addr]gc.Snapshot,
	receptionists map[gc.Addr]struct{},
	universe map[gc.Addr]struct{},
) map[gc.Addr]struct{} {

	candidates := make(map[gc.Addr]struct{})
	for addr, snap := range snapshots {
		if _, isReceptionist := receptionists[addr]; isReceptionist {
			continue
		}
		if snap.LocallyQuiescent() {
			candidates[addr] = struct{}{}
		}
	}
	log.Debugf("detector: %d locally-quiescent candidates out of %d snapshots",
		len(candidates), len(snapshots))

	for {
		removed := false

		for addr := range candidates {
			snap := snapshots[addr]

			for target := range snap.OutboundTargets() {
				if dangling(snapshots, universe, target, snap) &&
					!inSet(candidates, target) {

					log.Tracef("detector: disqualifying %s, "+
						"dangling edge to %s", addr, target)
					delete(candidates, addr)
					removed = true
					break
				}
			}
		}

		if !removed {
			break
		}
	}

	log.Debugf("detector: closed set has %d members", len(candidates))

	return candidates
}

// dangling reports whether the outbound evidence A's snapshot holds about
// target is still live from target's point of view: target's own snapshot
// (if we have one at all) has not yet recorded every such token as
// released. If target is known to the caller (present in universe, or
// universe is empty and dom(snapshots) stands in for it) but we have no
// snapshot for it, the edge is conservatively treated as dangling, since
// we cannot prove otherwise.
func dangling(
	snapshots map[gc.Addr]gc.Snapshot, universe map[gc.Addr]struct{},
	target gc.Addr, fromSnap gc.Snapshot,
) bool {

	targetSnap, ok := snapshots[target]
	if !ok {
		if len(universe) == 0 {
			return true
		}
		_, knownLive := universe[target]
		return knownLive
	}

	for tok, r := range fromSnap.Refs {
		if tok == fromSnap.SelfToken || r.Target != target {
			continue
		}
		if !released(targetSnap, tok) {
			return true
		}
	}
	for tok, r := range fromSnap.CreatedFlat {
		if r.Target != target {
			continue
		}
		if !released(targetSnap, tok) {
			return true
		}
	}

	return false
}

// released reports whether target's snapshot shows token as no longer a
// live inbound refob: absent from both owners and releasedOwners.
func released(targetSnap gc.Snapshot, tok gc.Token) bool {
	if _, ok := targetSnap.Owners[tok]; ok {
		return false
	}
	if _, ok := targetSnap.ReleasedOwners[tok]; ok {
		return false
	}
	return true
}

func inSet(set map[gc.Addr]struct{}, addr gc.Addr) bool {
	_, ok := set[addr]
	return ok
}
