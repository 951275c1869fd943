package auth

import (
	"context"

	"blogGraph/domain"
)

const (
	actorKey privateKey = "actor"
)

type privateKey string

// SetActor returns a copy of ctx carrying the resolved actor.
func SetActor(ctx context.Context, actor *domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// GetActor returns the actor stored in ctx, or nil if the request is anonymous.
func GetActor(ctx context.Context) *domain.Actor {
	if temp := ctx.Value(actorKey); temp != nil {
		if actor, ok := temp.(*domain.Actor); ok {
			return actor
		}
	}
	return nil
}
