package actor

import (
	"context"
	"sync"

	"github.com/dplyukhin/uigc/internal/gc"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// externalOrigin is the Token.Owner used for refobs minted outside the
// actor system entirely (the "external receptionist" case from
// internal/gc's Refob doc comment). It can never collide with a real
// actor's own token namespace, since actors mint tokens scoped to their own
// address.
const externalOrigin gc.Addr = "<external>"

// GCSystem wires internal/gc's reference-counting bookkeeping into an
// ActorSystem. It owns the address directory GCContext's Tell/Ask/Release
// use to resolve a gc.Addr to the live ActorRef registered there, and is
// the entry point for spawning GC-instrumented actors both from outside the
// system (SpawnRoot) and from within a running actor (GCContext.Spawn).
//
// A GCSystem is parameterized over a single message/response type pair:
// every GC-instrumented actor it manages shares the same M and R. This
// mirrors how a single ActorSystem commonly hosts a family of homogeneous
// workers (see internal/detector's check pool) rather than an arbitrary mix
// of unrelated actor types.
type GCSystem[M Message, R any] struct {
	sys *ActorSystem
	key ServiceKey[GCEnvelope[M], R]

	mu          sync.RWMutex
	dir         map[gc.Addr]ActorRef[GCEnvelope[M], R]
	externalSeq uint64
}

// NewGCSystem creates a GCSystem backed by sys. The ActorSystem's
// receptionist is reused directly: every GC-instrumented actor this
// GCSystem spawns registers under a single shared service key, so the
// underlying Router/Receptionist machinery participates in GC actor
// discovery rather than going unused.
func NewGCSystem[M Message, R any](sys *ActorSystem) *GCSystem[M, R] {
	return &GCSystem[M, R]{
		sys: sys,
		key: NewServiceKey[GCEnvelope[M], R]("gc-actors"),
		dir: make(map[gc.Addr]ActorRef[GCEnvelope[M], R]),
	}
}

// SpawnRoot creates a GC-instrumented actor at addr with no parent,
// returning an externally-minted refob to it (the "receptionist" refob
// described in internal/gc's Refob doc comment) alongside its ActorRef.
// Callers outside the GC system use the refob's token to address the
// actor via ExternalRef.
func (g *GCSystem[M, R]) SpawnRoot(
	addr gc.Addr, behavior GCBehavior[M, R],
) (gc.Refob, ActorRef[GCEnvelope[M], R]) {

	g.mu.Lock()
	seq := g.externalSeq
	g.externalSeq++
	g.mu.Unlock()

	tok := gc.Token{Owner: externalOrigin, Counter: seq}
	ref := gc.NewRefob(tok, fn.Option[gc.Addr]{}, addr)

	return ref, g.spawn(addr, []gc.Refob{ref}, behavior)
}

// ExternalRef adapts a GC actor's ref into a plain TellOnlyRef[M] for
// callers outside the GC system that hold only the externally-minted
// refob SpawnRoot returned: they can Tell it bare payloads without
// constructing a GCEnvelope by hand. Built on MapInputRef, the same
// adapter the runtime uses to bridge unrelated notification-source types.
func ExternalRef[M Message, R any](
	ref ActorRef[GCEnvelope[M], R], via gc.Refob,
) TellOnlyRef[M] {

	return NewMapInputRef[M, GCEnvelope[M]](ref, func(payload M) GCEnvelope[M] {
		return newAppEnvelope(via.Token, nil, payload)
	})
}

func (g *GCSystem[M, R]) spawn(
	addr gc.Addr, seed []gc.Refob, behavior GCBehavior[M, R],
) ActorRef[GCEnvelope[M], R] {

	state := gc.NewState(addr, seed...)
	adapter := &gcActorBehavior[M, R]{addr: addr, state: state, user: behavior, gsys: g}

	ref := RegisterWithSystem(g.sys, string(addr), g.key, adapter)
	g.register(addr, ref)

	return ref
}

func (g *GCSystem[M, R]) lookup(addr gc.Addr) (ActorRef[GCEnvelope[M], R], bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ref, ok := g.dir[addr]
	return ref, ok
}

func (g *GCSystem[M, R]) register(addr gc.Addr, ref ActorRef[GCEnvelope[M], R]) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.dir[addr] = ref
}

func (g *GCSystem[M, R]) unregister(addr gc.Addr) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.dir, addr)
}

// stop stops and deregisters the actor at addr, in response to its own
// local termination check concluding Stop.
func (g *GCSystem[M, R]) stop(addr gc.Addr) {
	if ref, ok := g.lookup(addr); ok {
		UnregisterFromReceptionist(g.sys.Receptionist(), g.key, ref)
	}

	g.sys.StopAndRemoveActor(string(addr))
}

// sendRelease delivers a ReleaseMsg to its target, if still registered. A
// missing target means the target actor already stopped and drained;
// per the spec's termination invariants this can only happen after it
// already observed every release addressed to it, so the message is
// logged and dropped rather than treated as an error.
func (g *GCSystem[M, R]) sendRelease(ctx context.Context, rm gc.ReleaseMsg) {
	g.tellControl(ctx, rm.Target, newReleaseEnvelope[M](rm))
}

func (g *GCSystem[M, R]) tellControl(ctx context.Context, target gc.Addr, env GCEnvelope[M]) {
	ref, ok := g.lookup(target)
	if !ok {
		log.DebugS(ctx, "gc: dropping control message to unregistered actor",
			"target", string(target))
		return
	}

	ref.Tell(ctx, env)
}
