package detector

import (
	"context"

	"github.com/dplyukhin/uigc/internal/actor"
	"github.com/dplyukhin/uigc/internal/actorutil"
	"github.com/dplyukhin/uigc/internal/gc"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// checkRequest asks a pool worker to evaluate a single actor's snapshot
// for local quiescence and outbound evidence. Splitting this off from the
// single-threaded fixpoint loop in Detect lets large snapshot sets be
// preprocessed concurrently; the loop itself still runs serially since it
// mutates a shared candidate set.
type checkRequest struct {
	actor.BaseMessage

	Addr gc.Addr
	Snap gc.Snapshot
}

// MessageType implements actor.Message.
func (checkRequest) MessageType() string { return "detector.checkRequest" }

// checkResponse is the result of evaluating one checkRequest.
type checkResponse struct {
	Addr      gc.Addr
	Quiescent bool
	Targets   map[gc.Addr]struct{}
}

// NewCheckPool builds a worker pool of size workers that evaluate
// checkRequests. Each worker runs the same stateless local-quiescence and
// outbound-target computation; round-robin dispatch is enough since no
// worker holds affinity to a particular actor address.
func NewCheckPool(workers int) *actorutil.Pool[checkRequest, checkResponse] {
	return actorutil.NewPool(actorutil.PoolConfig[checkRequest, checkResponse]{
		ID:   "detector-check-pool",
		Size: workers,
		Factory: func(idx int) actor.ActorBehavior[checkRequest, checkResponse] {
			return actor.NewFunctionBehavior(
				func(
					ctx context.Context, req checkRequest,
				) fn.Result[checkResponse] {

					return fn.Ok(checkResponse{
						Addr:      req.Addr,
						Quiescent: req.Snap.LocallyQuiescent(),
						Targets:   req.Snap.OutboundTargets(),
					})
				},
			)
		},
	})
}

// DetectParallel is equivalent to Detect, but farms the per-actor local-
// quiescence and outbound-target computation out to pool before running
// the single-threaded closure loop. Worth using once snapshot sets grow
// large enough that the per-actor computation (not the fixpoint loop
// itself) dominates.
func DetectParallel(
	ctx context.Context,
	pool *actorutil.Pool[checkRequest, checkResponse],
	snapshots map[gc.Addr]gc.Snapshot,
	receptionists map[gc.Addr]struct{},
	universe map[gc.Addr]struct{},
) map[gc.Addr]struct{} {

	addrs := make([]gc.Addr, 0, len(snapshots))
	reqs := make([]checkRequest, 0, len(snapshots))
	for addr, snap := range snapshots {
		addrs = append(addrs, addr)
		reqs = append(reqs, checkRequest{Addr: addr, Snap: snap})
	}

	futures := make([]actor.Future[checkResponse], len(reqs))
	for i, req := range reqs {
		futures[i] = pool.Ask(ctx, req)
	}

	candidates := make(map[gc.Addr]struct{})
	targetsByAddr := make(map[gc.Addr]map[gc.Addr]struct{}, len(reqs))
	for i, f := range futures {
		result := f.Await(ctx)
		resp, err := result.Unpack()
		if err != nil {
			log.Errorf("detector: check worker failed for %s: %v",
				addrs[i], err)
			continue
		}

		targetsByAddr[resp.Addr] = resp.Targets
		if _, isReceptionist := receptionists[resp.Addr]; isReceptionist {
			continue
		}
		if resp.Quiescent {
			candidates[resp.Addr] = struct{}{}
		}
	}
	log.Debugf("detector: %d locally-quiescent candidates out of %d snapshots (parallel)",
		len(candidates), len(snapshots))

	for {
		removed := false

		for addr := range candidates {
			snap := snapshots[addr]

			for target := range targetsByAddr[addr] {
				if dangling(snapshots, universe, target, snap) &&
					!inSet(candidates, target) {

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

	log.Debugf("detector: closed set has %d members (parallel)", len(candidates))

	return candidates
}
