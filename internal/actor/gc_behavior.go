package actor

import (
	"context"
	"fmt"

	"github.com/dplyukhin/uigc/internal/gc"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// GCBehavior is the strategy interface for a GC-instrumented actor. It
// plays the same role ActorBehavior does for a plain actor, but receives a
// GCContext instead of a bare context.Context, giving the handler access to
// the reference-counting operations (CreateRef, Tell/Ask via a held refob,
// Release, Spawn) that the actor may use while reacting to one payload.
type GCBehavior[M Message, R any] interface {
	Receive(gctx *GCContext[M, R], msg M) fn.Result[R]
}

// GCContext is passed to a GCBehavior's Receive method. It bundles the
// ambient context.Context the plain actor runtime already provides with
// the per-actor gc.State operations from internal/gc, so that handling a
// message and updating reference-counting bookkeeping happen as a single,
// ordinary Go function call instead of two systems glued together by the
// caller.
type GCContext[M Message, R any] struct {
	ctx   context.Context
	addr  gc.Addr
	state *gc.State
	gsys  *GCSystem[M, R]
}

// Context returns the merged lifecycle/caller-deadline context the
// underlying actor runtime computed for this message, for actors that need
// to respect cancellation while doing blocking work.
func (g *GCContext[M, R]) Context() context.Context { return g.ctx }

// Self returns this actor's own address.
func (g *GCContext[M, R]) Self() gc.Addr { return g.addr }

// SelfRefob returns this actor's permanent self-refob.
func (g *GCContext[M, R]) SelfRefob() gc.Refob { return g.state.SelfRefob() }

// CreateRef fabricates a refob to target, owned by recipient, suitable for
// attaching to an outgoing message addressed to recipient.Target. Both
// target and recipient must be refobs this actor currently holds.
func (g *GCContext[M, R]) CreateRef(target, recipient gc.Refob) (gc.Refob, error) {
	return g.state.CreateRef(target, recipient)
}

// Tell sends payload to via.Target along the refob via, attaching refsOut
// for the recipient to assimilate. It records the outbound send against
// via's sent counter before handing the envelope to the actor runtime.
func (g *GCContext[M, R]) Tell(via gc.Refob, payload M, refsOut []gc.Refob) error {
	appMsg, err := g.state.Send(via, payload, refsOut)
	if err != nil {
		return err
	}

	ref, ok := g.gsys.lookup(via.Target)
	if !ok {
		return fmt.Errorf("gc: no actor registered at %s", via.Target)
	}

	ref.Tell(g.ctx, newAppEnvelope(appMsg.TravelToken, refsOut, payload))

	return nil
}

// Ask behaves like Tell but returns a Future for the recipient's response.
func (g *GCContext[M, R]) Ask(via gc.Refob, payload M, refsOut []gc.Refob) (Future[R], error) {
	appMsg, err := g.state.Send(via, payload, refsOut)
	if err != nil {
		return nil, err
	}

	ref, ok := g.gsys.lookup(via.Target)
	if !ok {
		return nil, fmt.Errorf("gc: no actor registered at %s", via.Target)
	}

	return ref.Ask(g.ctx, newAppEnvelope(appMsg.TravelToken, refsOut, payload)), nil
}

// Release drops refs from this actor's live set and delivers the resulting
// ReleaseMsgs to their targets. Unlike Tell/Ask, there's no user payload:
// this is pure GC bookkeeping traffic.
func (g *GCContext[M, R]) Release(refs []gc.Refob) {
	for _, rm := range g.state.Release(refs) {
		g.gsys.sendRelease(g.ctx, rm)
	}
}

// Spawn creates a GC-instrumented child actor at addr running behavior,
// seeded with a fresh refob this actor owns pointing at it. The child runs
// under the same GCSystem (and therefore the same ActorSystem) as its
// parent. Spawn only supports children sharing the parent's message and
// response types; heterogeneous actor trees require a distinct GCSystem
// per message type, composed at a higher level.
func (g *GCContext[M, R]) Spawn(addr gc.Addr, behavior GCBehavior[M, R]) (gc.Refob, ActorRef[GCEnvelope[M], R]) {
	ref := g.state.Spawn(addr)
	childRef := g.gsys.spawn(addr, []gc.Refob{ref}, behavior)
	return ref, childRef
}

// gcActorBehavior adapts a GCBehavior into the plain ActorBehavior the
// mailbox loop drives. Every inbound GCEnvelope is threaded through the
// owning actor's gc.State before (for application traffic) the user's
// Receive is invoked; after every message, the local termination check
// runs and any resulting release traffic or self wake-up is dispatched.
type gcActorBehavior[M Message, R any] struct {
	addr  gc.Addr
	state *gc.State
	user  GCBehavior[M, R]
	gsys  *GCSystem[M, R]
}

// Receive implements ActorBehavior.
func (b *gcActorBehavior[M, R]) Receive(ctx context.Context, env GCEnvelope[M]) fn.Result[R] {
	var zero R

	switch env.kind {
	case gcEnvelopeApp:
		b.state.ReceiveApp(gc.AppMsg{
			TravelToken: env.travelToken,
			Target:      b.addr,
			Refs:        env.refs,
			Payload:     env.payload,
		})

		gctx := &GCContext[M, R]{ctx: ctx, addr: b.addr, state: b.state, gsys: b.gsys}
		result := b.user.Receive(gctx, env.payload)

		b.runTermination(ctx)

		return result

	case gcEnvelopeRelease:
		ack := b.state.ReceiveRelease(env.release)
		b.gsys.tellControl(ctx, env.release.From, newAckEnvelope[M](ack))
		b.runTermination(ctx)

		return fn.Ok(zero)

	case gcEnvelopeAck:
		b.state.ReceiveAckRelease(env.ack)
		b.runTermination(ctx)

		return fn.Ok(zero)

	case gcEnvelopeCheck:
		b.runTermination(ctx)

		return fn.Ok(zero)

	default:
		return fn.Ok(zero)
	}
}

// runTermination runs the local termination check and carries out whatever
// it asks for: transmitting release traffic, re-enqueueing a SelfCheck, or
// stopping the actor outright.
func (b *gcActorBehavior[M, R]) runTermination(ctx context.Context) {
	outcome := b.state.TryTerminate()

	for _, rm := range outcome.ReleaseMsgs {
		b.gsys.sendRelease(ctx, rm)
	}

	if outcome.SelfCheck.IsSome() {
		b.gsys.tellControl(ctx, b.addr, newCheckEnvelope[M]())
	}

	if outcome.Result == gc.Stop {
		b.gsys.stop(b.addr)
	}
}

// OnStop implements Stoppable, removing this actor from its GCSystem's
// address directory once the mailbox loop has fully drained.
func (b *gcActorBehavior[M, R]) OnStop(ctx context.Context) error {
	b.gsys.unregister(b.addr)
	return nil
}

var _ ActorBehavior[GCEnvelope[Message], any] = (*gcActorBehavior[Message, any])(nil)
