// Package session carries the authenticated actor of a request.
// The auth middleware stores it in the request context; handlers read it once
// and pass it explicitly into services.
package session

import (
	"context"

	"estatehub/backend/internal/models"
)

// Actor is the authenticated caller.
type Actor struct {
	UserID string
	Role   models.Role
}

// IsAdmin reports whether the actor may moderate.
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying actor.
func NewContext(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, actor)
}

// FromContext returns the actor stored in ctx, if any.
func FromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(ctxKey{}).(Actor)
	return actor, ok && actor.UserID != ""
}
