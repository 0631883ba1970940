package gc

// =============================================================================
// GC wire protocol
// =============================================================================
//
// These are the messages a GC-aware actor must recognize in addition to its
// own application traffic. AppMsg piggybacks refobs on top of a user
// payload; ReleaseMsg/AckReleaseMsg carry out the release handshake;
// SelfCheck is an internal wake-up that never touches sent/recv counters.

// AppMsg is a user payload in flight, annotated with the refob it travelled
// on and any refobs the sender chose to share with the recipient.
type AppMsg struct {
	// TravelToken identifies the refob the message was sent along.
	TravelToken Token

	// Target is the refob's destination, included so the runtime can
	// route the envelope without re-deriving it from TravelToken.
	Target Addr

	// Refs are refobs attached to this message, to be assimilated by
	// the recipient before the payload reaches user code.
	Refs []Refob

	// Payload is the opaque user-level message body.
	Payload any
}

// ReleaseMsg informs a target that the sender is dropping one or more
// refobs pointing at it, and hands over any refobs the sender had
// fabricated on the target's behalf.
type ReleaseMsg struct {
	// From is the actor releasing the refobs.
	From Addr

	// Target is the actor the released refobs point at, and the
	// destination of this message.
	Target Addr

	// Releasing are the refobs being dropped, all sharing Target.
	Releasing []Refob

	// Created are refobs From previously fabricated pointing at Target,
	// handed over so Target learns about the new owners.
	Created []Refob

	// Seq lets the sender match the eventual AckReleaseMsg to this
	// release.
	Seq uint64
}

// AckReleaseMsg acknowledges a ReleaseMsg, letting the original sender
// finalize its bookkeeping (forget sent counters, created-refob ledger
// entries) once it knows the target has applied the release.
type AckReleaseMsg struct {
	Releasing []Refob
	Created   []Refob
	Seq       uint64
}

// SelfCheck is an actor's wake-up to itself to re-run the local
// termination check once its outstanding self-messages may have drained.
// It is delivered like any other message but must never increment sent or
// recv counters; callers of ReceiveApp must special-case it by never
// passing a SelfCheck through as an AppMsg.
type SelfCheck struct{}
