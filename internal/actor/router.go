package actor

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// ErrNoActorsAvailable is returned by a RoutingStrategy when no candidate
// actors are currently registered for the service key being routed.
var ErrNoActorsAvailable = errors.New("no actors available for service key")

// RoutingStrategy selects one actor reference from a set of candidates
// registered under the same service key. Strategies are stateful (e.g. a
// round-robin cursor) but must be safe for concurrent use, since a Router may
// be shared across many callers.
type RoutingStrategy[M Message, R any] interface {
	// Select picks one reference from refs, or returns
	// ErrNoActorsAvailable if refs is empty.
	Select(refs []ActorRef[M, R]) (ActorRef[M, R], error)
}

// RoundRobinStrategy cycles through candidates in registration order.
type RoundRobinStrategy[M Message, R any] struct {
	next atomic.Uint64
}

// NewRoundRobinStrategy creates a round-robin routing strategy.
func NewRoundRobinStrategy[M Message, R any]() *RoundRobinStrategy[M, R] {
	return &RoundRobinStrategy[M, R]{}
}

// Select implements RoutingStrategy.
func (s *RoundRobinStrategy[M, R]) Select(
	refs []ActorRef[M, R],
) (ActorRef[M, R], error) {

	if len(refs) == 0 {
		return nil, ErrNoActorsAvailable
	}

	idx := s.next.Add(1) % uint64(len(refs))
	return refs[idx], nil
}

// Router is a virtual ActorRef that resolves its target lazily, on every
// send, by querying the Receptionist for the current set of actors
// registered under a ServiceKey and delegating to a RoutingStrategy. This
// gives callers location transparency and automatic failover: if an actor is
// replaced or additional instances are registered, the Router picks up the
// change on the next message without callers needing a new reference.
type Router[M Message, R any] struct {
	receptionist *Receptionist
	key          ServiceKey[M, R]
	strategy     RoutingStrategy[M, R]
	dlo          ActorRef[Message, any]
}

// NewRouter creates a Router for the given service key.
func NewRouter[M Message, R any](receptionist *Receptionist,
	key ServiceKey[M, R], strategy RoutingStrategy[M, R],
	dlo ActorRef[Message, any],
) *Router[M, R] {

	return &Router[M, R]{
		receptionist: receptionist,
		key:          key,
		strategy:     strategy,
		dlo:          dlo,
	}
}

// ID returns a composite identifier for the router.
func (r *Router[M, R]) ID() string {
	return "router->" + r.key.name
}

// resolve picks a live target, or reports the failure from the strategy.
func (r *Router[M, R]) resolve() (ActorRef[M, R], error) {
	refs := FindInReceptionist(r.receptionist, r.key)
	return r.strategy.Select(refs)
}

// Tell routes a fire-and-forget message to a resolved target, falling back
// to the dead letter office if no target is currently registered.
func (r *Router[M, R]) Tell(ctx context.Context, msg M) {
	target, err := r.resolve()
	if err != nil {
		if r.dlo != nil {
			r.dlo.Tell(ctx, msg)
		}
		return
	}
	target.Tell(ctx, msg)
}

// Ask routes a request-response message to a resolved target. If no target
// is registered, the returned Future completes immediately with the
// resolution error.
func (r *Router[M, R]) Ask(ctx context.Context, msg M) Future[R] {
	target, err := r.resolve()
	if err != nil {
		promise := NewPromise[R]()
		promise.Complete(fn.Err[R](err))
		return promise.Future()
	}
	return target.Ask(ctx, msg)
}

// Ensure Router implements ActorRef.
var _ ActorRef[Message, any] = (*Router[Message, any])(nil)
