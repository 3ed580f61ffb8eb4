package auth

import (
	"context"

	"github.com/krabbel/backend/internal/models"
)

// Identity is the authenticated principal resolved from a token. It lives
// for the duration of one request and is never persisted.
type Identity struct {
	UserID   int64
	Username string
	Role     models.Role
}

type ctxKey struct{}

// WithIdentity returns a context carrying the resolved identity.
func WithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, ident)
}

// IdentityFromContext extracts the identity attached by the auth middleware.
// ok is false when the request is unauthenticated.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	ident, ok := ctx.Value(ctxKey{}).(Identity)
	return ident, ok
}
