package middleware

import (
	"context"
	"testing"

	userdomain "session-auth-service/internal/user/domain"
)

func TestIdentityRoundTrip(t *testing.T) {
	ctx := context.Background()

	if id, ok := GetIdentity(ctx); ok || id != nil {
		t.Fatal("expected no identity in empty context")
	}

	want := &Identity{
		User:      &userdomain.User{ID: 3, Username: "alice", Email: "alice@example.com"},
		SessionID: "sess-123",
	}
	ctx = WithIdentity(ctx, want)

	got, ok := GetIdentity(ctx)
	if !ok || got == nil {
		t.Fatal("expected identity to be set")
	}
	if got.User.ID != 3 || got.SessionID != "sess-123" {
		t.Errorf("identity = %+v, want %+v", got, want)
	}
}

func TestClientIPDefault(t *testing.T) {
	if ip := ClientIP(context.Background()); ip != "unknown" {
		t.Errorf("ClientIP = %q, want unknown", ip)
	}
	ctx := WithClientIP(context.Background(), "10.0.0.9")
	if ip := ClientIP(ctx); ip != "10.0.0.9" {
		t.Errorf("ClientIP = %q, want 10.0.0.9", ip)
	}
}
