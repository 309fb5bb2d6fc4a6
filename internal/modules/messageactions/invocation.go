package messageactions

import (
	"context"

	"github.com/nfrund/parley/internal/actions"
)

// Invocation is the caller input a handler may need beyond the eval context.
type Invocation struct {
	Context actions.Context
	Reason  string
}

type invocationKey struct{}

// WithInvocation attaches inv to ctx for the handler being run.
func WithInvocation(ctx context.Context, inv Invocation) context.Context {
	return context.WithValue(ctx, invocationKey{}, inv)
}

// InvocationFrom returns the invocation attached to ctx, if any.
func InvocationFrom(ctx context.Context) Invocation {
	inv, _ := ctx.Value(invocationKey{}).(Invocation)
	return inv
}
