package internal

import (
	"context"
	"time"
)

// Actor identifies who is performing an operation. It is built once by the
// session middleware and threaded explicitly through every core call; no
// service ever infers the acting tenant from ambient state.
type Actor struct {
	TenantID     string
	UserID       string
	DisplayName  string
	NetworkAdmin bool
	// OriginIP is best-effort, taken from the request, and may be empty.
	OriginIP string
}

type ctxKey string

const ContextActorKey ctxKey = "actor"

func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(ContextActorKey).(Actor)
	return actor, ok
}

func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, ContextActorKey, actor)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
