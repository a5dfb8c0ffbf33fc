package middleware

import (
	"context"

	userdomain "session-auth-service/internal/user/domain"
)

type contextKey struct{ name string }

var (
	identityKey = contextKey{"identity"}
	clientIPKey = contextKey{"client_ip"}
)

// Identity is the authenticated caller resolved by AuthRequired: the active
// user the access token named and the ledger session the token belongs to.
type Identity struct {
	User      *userdomain.User
	SessionID string
}

// WithIdentity returns a context carrying the authenticated identity.
// Handlers and the auth service read it back via GetIdentity.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetIdentity returns the identity from context and true if set; otherwise nil, false.
func GetIdentity(ctx context.Context) (*Identity, bool) {
	v, ok := ctx.Value(identityKey).(*Identity)
	return v, ok
}

// WithClientIP returns a context carrying the caller's IP address.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// ClientIP returns the client IP from context, or "unknown" if not set.
func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(clientIPKey).(string); ok && v != "" {
		return v
	}
	return "unknown"
}
