package gc

import (
	"github.com/lightningnetwork/lnd/fn/v2"
)

// TerminationResult is the outcome of a local termination check.
type TerminationResult int

const (
	// Continue means the actor is not yet eligible to stop, either
	// because it has outstanding non-self refs to release, outstanding
	// owners other than itself, or unsettled self-messages.
	Continue TerminationResult = iota

	// Stop means the actor has satisfied every local condition for
	// termination and may shut down.
	Stop
)

// TryTerminateOutcome bundles the verdict of a local termination check
// together with any side effects the caller must carry out: release
// messages to transmit, or a SelfCheck to re-enqueue to self.
type TryTerminateOutcome struct {
	Result TerminationResult

	// ReleaseMsgs are emitted when refs still holds non-self refobs;
	// the caller must deliver each to its Target.
	ReleaseMsgs []ReleaseMsg

	// SelfCheck is present when the actor is otherwise quiescent but
	// has unsettled self-messages in flight; the caller must enqueue
	// it back to the same actor without touching sent/recv.
	SelfCheck fn.Option[SelfCheck]
}

// State is the per-actor GC bookkeeping described in the specification: the
// refobs an actor owns, the refobs it has fabricated for others, the
// inbound refobs it knows about, and the send/receive counters used to
// detect unsettled traffic. A State is owned exclusively by the actor it
// belongs to; nothing outside that actor's own message-processing loop may
// read or mutate it.
type State struct {
	self Addr

	// selfRef is s_A = (tok_A, A, A), present in refs and owners for
	// the actor's entire lifetime.
	selfRef Refob

	refs           map[Token]Refob
	created        map[Addr]map[Token]Refob
	owners         map[Token]Refob
	releasedOwners map[Token]Refob
	sent           map[Token]uint64
	recv           map[Token]uint64

	tokenCounter uint64
	releaseSeq   uint64
}

// NewState creates the GC state for a newly spawned actor at self. seed
// are additional inbound refobs the actor should start out owning (for
// example, the refob its parent holds to it) in addition to its own
// self-refob.
func NewState(self Addr, seed ...Refob) *State {
	s := &State{
		self:           self,
		refs:           make(map[Token]Refob),
		created:        make(map[Addr]map[Token]Refob),
		owners:         make(map[Token]Refob),
		releasedOwners: make(map[Token]Refob),
		sent:           make(map[Token]uint64),
		recv:           make(map[Token]uint64),
	}

	selfTok := s.nextToken()
	s.selfRef = Refob{Token: selfTok, Owner: fn.Some(self), Target: self}
	s.refs[selfTok] = s.selfRef
	s.owners[selfTok] = s.selfRef
	s.sent[selfTok] = 0

	for _, r := range seed {
		s.owners[r.Token] = r
	}

	return s
}

// Self returns the address this state belongs to.
func (s *State) Self() Addr { return s.self }

// SelfRefob returns s_A, the actor's permanent self-refob.
func (s *State) SelfRefob() Refob { return s.selfRef }

func (s *State) nextToken() Token {
	tok := newToken(s.self, s.tokenCounter)
	s.tokenCounter++
	return tok
}

// Spawn mints the refob for a newly created child and registers the
// parent-side bookkeeping (the refob is added to refs, sent initialized to
// 0). The returned refob must be passed as seed to the child's own
// NewState call, so the child's owners set starts out containing it.
func (s *State) Spawn(child Addr) Refob {
	tok := s.nextToken()
	r := Refob{Token: tok, Owner: fn.Some(s.self), Target: child}

	s.refs[tok] = r
	s.sent[tok] = 0

	return r
}

// CreateRef fabricates a new refob from target to recipient: a refob that
// authorizes recipient.Target to send to target.Target. Both target and
// recipient must currently be held in refs. The new refob is recorded in
// created so that, if self later releases target, the fabricated refob is
// handed over to target.Target's actor.
func (s *State) CreateRef(target, recipient Refob) (Refob, error) {
	if _, ok := s.refs[target.Token]; !ok {
		return Refob{}, ErrRefobNotOwned
	}
	if _, ok := s.refs[recipient.Token]; !ok {
		return Refob{}, ErrRefobNotOwned
	}

	tok := s.nextToken()
	shared := Refob{
		Token:  tok,
		Owner:  fn.Some(recipient.Target),
		Target: target.Target,
	}

	bucket, ok := s.created[shared.Target]
	if !ok {
		bucket = make(map[Token]Refob)
		s.created[shared.Target] = bucket
	}
	bucket[tok] = shared

	return shared, nil
}

// Send records an outbound application message on via and returns the
// AppMsg to transmit. via must be held in refs.
func (s *State) Send(via Refob, payload any, refsInMsg []Refob) (AppMsg, error) {
	if _, ok := s.refs[via.Token]; !ok {
		return AppMsg{}, ErrRefobNotOwned
	}

	s.sent[via.Token]++

	return AppMsg{
		TravelToken: via.Token,
		Target:      via.Target,
		Refs:        refsInMsg,
		Payload:     payload,
	}, nil
}

// ReceiveApp assimilates an inbound AppMsg: bumps the recv counter for the
// refob it travelled on, and processes any refobs it carries. A carried
// refob targeting self is added to owners (unless it was already reported
// via a race-winning release, in which case the race is resolved instead).
// A carried refob owned by self is added to refs, since self is now the
// authorized sender on it.
func (s *State) ReceiveApp(msg AppMsg) {
	s.recv[msg.TravelToken]++

	for _, r := range msg.Refs {
		if r.Target == s.self {
			if _, raced := s.releasedOwners[r.Token]; raced {
				delete(s.releasedOwners, r.Token)
			} else {
				s.owners[r.Token] = r
				if _, ok := s.recv[r.Token]; !ok {
					s.recv[r.Token] = 0
				}
			}
		}

		if r.Target != s.self && r.ownedBy(s.self) {
			s.refs[r.Token] = r
			if _, ok := s.sent[r.Token]; !ok {
				s.sent[r.Token] = 0
			}
		}
	}
}

// Release drops refsToDrop from self's refs, grouping the resulting
// ReleaseMsg by target. For each target, the message also carries every
// refob self has fabricated pointing at that target (via CreateRef),
// handing that bookkeeping over along with the release.
func (s *State) Release(refsToDrop []Refob) []ReleaseMsg {
	groups := make(map[Addr][]Refob)
	for _, r := range refsToDrop {
		groups[r.Target] = append(groups[r.Target], r)
	}

	msgs := make([]ReleaseMsg, 0, len(groups))
	for target, group := range groups {
		createdForTarget := s.created[target]

		createdFlat := make([]Refob, 0, len(createdForTarget))
		for _, c := range createdForTarget {
			createdFlat = append(createdFlat, c)
		}

		for _, r := range group {
			delete(s.refs, r.Token)
			delete(s.sent, r.Token)
		}
		delete(s.created, target)

		s.releaseSeq++
		msgs = append(msgs, ReleaseMsg{
			From:      s.self,
			Target:    target,
			Releasing: group,
			Created:   createdFlat,
			Seq:       s.releaseSeq,
		})
	}

	return msgs
}

// ReceiveRelease applies an inbound ReleaseMsg: forgets the recv counters
// and owners entries for the released refobs (or, if the creation hasn't
// been witnessed yet, records the race in releasedOwners), assimilates any
// handed-over created refobs targeting self, and returns the
// AckReleaseMsg to send back to msg.From.
func (s *State) ReceiveRelease(msg ReleaseMsg) AckReleaseMsg {
	for _, r := range msg.Releasing {
		delete(s.recv, r.Token)

		if _, ok := s.owners[r.Token]; ok {
			delete(s.owners, r.Token)
		} else {
			s.releasedOwners[r.Token] = r
		}
	}

	for _, c := range msg.Created {
		if c.Target != s.self {
			continue
		}

		if _, ok := s.releasedOwners[c.Token]; ok {
			delete(s.releasedOwners, c.Token)
		} else {
			s.owners[c.Token] = c
		}
	}

	return AckReleaseMsg{
		Releasing: msg.Releasing,
		Created:   msg.Created,
		Seq:       msg.Seq,
	}
}

// ReceiveAckRelease finalizes the sender side of a release handshake. It is
// currently a no-op: Release already removed sent/created bookkeeping
// eagerly, so the ack exists for protocol symmetry and so a future
// implementation can defer forgetting until the ack arrives. Kept as an
// explicit method so callers don't need to special-case "do nothing" at
// the call site.
func (s *State) ReceiveAckRelease(_ AckReleaseMsg) {}

// TryTerminate implements the local termination check. It never blocks and
// never communicates with other actors directly; any ReleaseMsgs or
// SelfCheck it produces must be transmitted/enqueued by the caller.
func (s *State) TryTerminate() TryTerminateOutcome {
	selfTok := s.selfRef.Token

	_, ownsSelf := s.owners[selfTok]
	onlySelfOwner := ownsSelf && len(s.owners) == 1

	if !onlySelfOwner || len(s.releasedOwners) != 0 {
		return TryTerminateOutcome{Result: Continue}
	}

	if s.sent[selfTok] != s.recv[selfTok] {
		return TryTerminateOutcome{
			Result:    Continue,
			SelfCheck: fn.Some(SelfCheck{}),
		}
	}

	if len(s.refs) == 1 {
		if _, ok := s.refs[selfTok]; ok {
			return TryTerminateOutcome{Result: Stop}
		}
	}

	toDrop := make([]Refob, 0, len(s.refs)-1)
	for tok, r := range s.refs {
		if tok != selfTok {
			toDrop = append(toDrop, r)
		}
	}

	return TryTerminateOutcome{
		Result:      Continue,
		ReleaseMsgs: s.Release(toDrop),
	}
}

// Snapshot takes an immutable copy of the GC-relevant state. Snapshots must
// only be taken between messages, when the actor's mailbox is momentarily
// drained; the result is handed to the quiescence detector and must not
// alias any of State's internal maps.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Self:           s.self,
		SelfToken:      s.selfRef.Token,
		Refs:           cloneRefobs(s.refs),
		Owners:         cloneRefobs(s.owners),
		CreatedFlat:    flattenCreated(s.created),
		ReleasedOwners: cloneRefobs(s.releasedOwners),
		Sent:           cloneCounters(s.sent),
		Recv:           cloneCounters(s.recv),
	}
}

func cloneRefobs(m map[Token]Refob) map[Token]Refob {
	out := make(map[Token]Refob, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneCounters(m map[Token]uint64) map[Token]uint64 {
	out := make(map[Token]uint64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func flattenCreated(m map[Addr]map[Token]Refob) map[Token]Refob {
	out := make(map[Token]Refob)
	for _, bucket := range m {
		for tok, r := range bucket {
			out[tok] = r
		}
	}
	return out
}
