package auth

import (
	"context"

	"github.com/safar/cart-service/internal/models"
)

type ctxKey int

const ctxKeyActor ctxKey = iota

func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, ctxKeyActor, actor)
}

func ActorFromContext(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(ctxKeyActor).(models.Actor)
	return actor, ok
}
