package actor

import "github.com/dplyukhin/uigc/internal/gc"

// gcEnvelopeKind discriminates the four message shapes a GC-instrumented
// actor's mailbox must carry: user application traffic and the three
// protocol messages described in internal/gc's wire format.
type gcEnvelopeKind int

const (
	gcEnvelopeApp gcEnvelopeKind = iota
	gcEnvelopeRelease
	gcEnvelopeAck
	gcEnvelopeCheck
)

// GCEnvelope is the single concrete Message type a GC-instrumented actor's
// mailbox is instantiated with. It's a tagged union so Actor[M, R] (which
// is generic over exactly one message type) can carry both a GC-behavior's
// application payloads and the internal/gc protocol messages that ride
// alongside them. User code never constructs one directly; GCContext's
// Tell/Ask/Release build them from the gc.State operations they wrap.
type GCEnvelope[M Message] struct {
	BaseMessage

	kind        gcEnvelopeKind
	travelToken gc.Token
	refs        []gc.Refob
	payload     M
	release     gc.ReleaseMsg
	ack         gc.AckReleaseMsg
}

// MessageType implements Message.
func (GCEnvelope[M]) MessageType() string { return "actor.GCEnvelope" }

func newAppEnvelope[M Message](travelToken gc.Token, refs []gc.Refob, payload M) GCEnvelope[M] {
	return GCEnvelope[M]{
		kind:        gcEnvelopeApp,
		travelToken: travelToken,
		refs:        refs,
		payload:     payload,
	}
}

func newReleaseEnvelope[M Message](msg gc.ReleaseMsg) GCEnvelope[M] {
	return GCEnvelope[M]{kind: gcEnvelopeRelease, release: msg}
}

func newAckEnvelope[M Message](msg gc.AckReleaseMsg) GCEnvelope[M] {
	return GCEnvelope[M]{kind: gcEnvelopeAck, ack: msg}
}

func newCheckEnvelope[M Message]() GCEnvelope[M] {
	return GCEnvelope[M]{kind: gcEnvelopeCheck}
}
