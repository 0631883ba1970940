package actor

import (
	"context"
	"sync"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// promise is the concrete implementation of Promise and Future backing
// "ask" operations. A single instance serves both roles: the producer holds
// it as a Promise, the consumer holds the same instance (via Future()) as a
// Future.
type promise[T any] struct {
	mu   sync.Mutex
	done chan struct{}

	completeOnce sync.Once
	result       fn.Result[T]
}

// NewPromise creates a new, uncompleted promise.
func NewPromise[T any]() Promise[T] {
	return &promise[T]{
		done: make(chan struct{}),
	}
}

// Future returns the Future view of this promise.
func (p *promise[T]) Future() Future[T] {
	return p
}

// Complete attempts to set the result of the promise. Only the first call
// has any effect; it returns true iff this call was the one that completed
// it.
func (p *promise[T]) Complete(result fn.Result[T]) bool {
	completed := false
	p.completeOnce.Do(func() {
		p.mu.Lock()
		p.result = result
		p.mu.Unlock()

		close(p.done)
		completed = true
	})

	return completed
}

// Await blocks until the result is available or ctx is cancelled.
func (p *promise[T]) Await(ctx context.Context) fn.Result[T] {
	select {
	case <-p.done:
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.result

	case <-ctx.Done():
		return fn.Err[T](ctx.Err())
	}
}

// ThenApply registers a transformation to run once the result is ready,
// returning a new Future for the transformed value. The original promise is
// left untouched.
func (p *promise[T]) ThenApply(
	ctx context.Context, f func(T) T,
) Future[T] {

	derived := NewPromise[T]()

	go func() {
		result := p.Await(ctx)

		transformed, err := result.Unpack()
		if err != nil {
			derived.Complete(fn.Err[T](err))
			return
		}

		derived.Complete(fn.Ok(f(transformed)))
	}()

	return derived.Future()
}

// OnComplete registers a callback to run once the result is ready, or once
// ctx is cancelled (in which case the callback observes the context error).
func (p *promise[T]) OnComplete(ctx context.Context, f func(fn.Result[T])) {
	go func() {
		f(p.Await(ctx))
	}()
}

// Ensure promise implements both halves of the Promise/Future pair.
var (
	_ Promise[any] = (*promise[any])(nil)
	_ Future[any]  = (*promise[any])(nil)
)
