package gc

// Snapshot is an immutable, point-in-time summary of one actor's GC state,
// taken while the actor was idle. It is the unit the quiescence detector
// consumes; nothing in this package mutates a Snapshot after it is
// returned from State.Snapshot.
type Snapshot struct {
	Self      Addr
	SelfToken Token

	Refs           map[Token]Refob
	Owners         map[Token]Refob
	CreatedFlat    map[Token]Refob
	ReleasedOwners map[Token]Refob

	Sent map[Token]uint64
	Recv map[Token]uint64
}

// LocallyQuiescent reports whether the snapshot shows an actor that has
// released everyone but itself, has no racing release information
// outstanding, and has no self-messages in flight. This is the candidacy
// test the detector's closure algorithm starts from; it does not by
// itself prove termination, since other actors may still hold dangling
// refobs into this one.
func (s Snapshot) LocallyQuiescent() bool {
	if len(s.Owners) != 1 {
		return false
	}
	if _, ok := s.Owners[s.SelfToken]; !ok {
		return false
	}
	if len(s.ReleasedOwners) != 0 {
		return false
	}

	return s.Sent[s.SelfToken] == s.Recv[s.SelfToken]
}

// OutboundTargets returns the set of actors this snapshot holds live
// outbound evidence about: every target reachable via a non-self refob in
// Refs, plus every target of a fabricated refob in CreatedFlat.
func (s Snapshot) OutboundTargets() map[Addr]struct{} {
	targets := make(map[Addr]struct{})

	for tok, r := range s.Refs {
		if tok == s.SelfToken {
			continue
		}
		targets[r.Target] = struct{}{}
	}
	for _, r := range s.CreatedFlat {
		targets[r.Target] = struct{}{}
	}

	return targets
}
