package contacts

import (
	"context"

	"github.com/google/uuid"
)

var identityCtxKey = &contextKey{"identity"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithIdentityContext sets the resolved account id in the given context.
// The HTTP gate is the only writer; handlers are readers.
func WithIdentityContext(ctx context.Context, accountID uuid.UUID) context.Context {
	return context.WithValue(ctx, identityCtxKey, accountID)
}

// IdentityFromContext finds the resolved account id from the context.
func IdentityFromContext(ctx context.Context) (uuid.UUID, bool) {
	raw, ok := ctx.Value(identityCtxKey).(uuid.UUID)
	return raw, ok
}

// WithClaimsContext sets the AuthClaims in the given context
func WithClaimsContext(ctx context.Context, claims AuthClaims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, claims)
}

// ClaimsFromContext extracts the AuthClaims from the standard context
func ClaimsFromContext(ctx context.Context) (AuthClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(AuthClaims)
	return raw, ok
}
