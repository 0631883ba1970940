package gc

import "fmt"

// CheckInvariants validates the universal GC invariants across a
// collection of per-actor snapshots taken at the same logical instant. It
// is meant for property-based tests that drive many actors through a
// sequence of GC operations and want to assert the system-wide invariants
// still hold afterward; it is not used by the runtime itself.
func CheckInvariants(snapshots map[Addr]Snapshot) error {
	heldBy := make(map[Token]Addr)

	for addr, snap := range snapshots {
		if _, ok := snap.Refs[snap.SelfToken]; !ok {
			return fmt.Errorf("%s: self-refob missing from refs", addr)
		}
		if _, ok := snap.Owners[snap.SelfToken]; !ok {
			return fmt.Errorf("%s: self-refob missing from owners", addr)
		}

		for tok := range snap.Owners {
			if _, ok := snap.ReleasedOwners[tok]; ok {
				return fmt.Errorf(
					"%s: token %s in both owners and "+
						"releasedOwners", addr, tok,
				)
			}
		}

		for tok := range snap.Sent {
			if _, ok := snap.Refs[tok]; !ok {
				return fmt.Errorf(
					"%s: sent tracks token %s not held "+
						"in refs", addr, tok,
				)
			}
		}

		for tok := range snap.Recv {
			_, inOwners := snap.Owners[tok]
			_, inReleased := snap.ReleasedOwners[tok]
			if !inOwners && !inReleased {
				return fmt.Errorf(
					"%s: recv tracks token %s absent "+
						"from owners and "+
						"releasedOwners", addr, tok,
				)
			}
		}

		for tok := range snap.Refs {
			if owner, ok := heldBy[tok]; ok && owner != addr {
				return fmt.Errorf(
					"refob %s held in refs of both %s "+
						"and %s", tok, owner, addr,
				)
			}
			heldBy[tok] = addr
		}
	}

	return nil
}
