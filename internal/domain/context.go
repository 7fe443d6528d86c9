package domain

import "context"

type identityKey struct{}

// WithIdentity returns a context carrying the verified caller identity.
func WithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext extracts the caller identity set by the auth layer.
func IdentityFromContext(ctx context.Context) (string, bool) {
	identity, ok := ctx.Value(identityKey{}).(string)
	return identity, ok && identity != ""
}
