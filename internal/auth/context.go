package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/harapan-ngo/harapan-cms/internal/users"
)

type identityContextKey struct{}

// ContextWithIdentity stores the authenticated identity in context.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the identity from context.
func IdentityFromContext(ctx context.Context) *Identity {
	if ctx == nil {
		return nil
	}
	id, _ := ctx.Value(identityContextKey{}).(*Identity)
	return id
}

// AccountFromContext returns the authenticated account, or nil.
func AccountFromContext(ctx context.Context) *users.Account {
	id := IdentityFromContext(ctx)
	if id == nil {
		return nil
	}
	return id.Account
}

// ActorFromContext returns the id of the authenticated account.
func ActorFromContext(ctx context.Context) (uuid.UUID, bool) {
	acc := AccountFromContext(ctx)
	if acc == nil {
		return uuid.Nil, false
	}
	return acc.ID, true
}
