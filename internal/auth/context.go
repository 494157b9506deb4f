package auth

import "context"

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID         string
	Username       string
	Role           Role
	OrganizationID string
	Superuser      bool
}

// Authenticated reports whether the identity belongs to a known user.
func (i Identity) Authenticated() bool { return i.UserID != "" }

type identityKey struct{}

// WithIdentity stores the caller identity in context.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext extracts the caller identity from context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	identity, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || !identity.Authenticated() {
		return Identity{}, false
	}
	return identity, true
}
