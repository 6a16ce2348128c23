package observability

import (
	"context"

	"github.com/google/uuid"
)

type invocationKey struct{}

// WithInvocation attaches a fresh invocation ID to ctx. Every error
// envelope produced during the command carries it as correlation ID.
func WithInvocation(ctx context.Context) context.Context {
	return context.WithValue(ctx, invocationKey{}, uuid.NewString())
}

// InvocationID returns the ID attached by WithInvocation, or "".
func InvocationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(invocationKey{}).(string)
	return id
}
