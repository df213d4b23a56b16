package domain

import "context"

type actorContextKey struct{}

// SystemActor is recorded when no caller identity is available.
const SystemActor = "system"

// ContextWithActor returns a context carrying the acting user id.
func ContextWithActor(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actorID)
}

// ActorFromContext returns the acting user id, if any.
func ActorFromContext(ctx context.Context) (string, bool) {
	actorID, ok := ctx.Value(actorContextKey{}).(string)
	return actorID, ok && actorID != ""
}

// ResolveActor prefers an explicit actor id, then the context, then SystemActor.
func ResolveActor(ctx context.Context, actorID string) string {
	if actorID != "" {
		return actorID
	}
	if fromCtx, ok := ActorFromContext(ctx); ok {
		return fromCtx
	}
	return SystemActor
}
