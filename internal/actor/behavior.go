package actor

import (
	"context"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// FunctionBehavior adapts a plain function into an ActorBehavior. This is
// useful for small actors (dead letter offices, test doubles, simple
// utility actors) that don't warrant a dedicated struct.
type FunctionBehavior[M Message, R any] struct {
	fn func(ctx context.Context, msg M) fn.Result[R]
}

// NewFunctionBehavior wraps a function as an ActorBehavior.
func NewFunctionBehavior[M Message, R any](
	f func(ctx context.Context, msg M) fn.Result[R],
) *FunctionBehavior[M, R] {

	return &FunctionBehavior[M, R]{fn: f}
}

// Receive implements ActorBehavior by invoking the wrapped function.
func (b *FunctionBehavior[M, R]) Receive(
	ctx context.Context, msg M,
) fn.Result[R] {

	return b.fn(ctx, msg)
}

// Ensure FunctionBehavior implements ActorBehavior.
var _ ActorBehavior[Message, any] = (*FunctionBehavior[Message, any])(nil)
