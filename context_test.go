package designkit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestContextUserValues tests user ID and role helpers
func TestContextUserValues(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, GetUserID(ctx))
	assert.Nil(t, GetUserRoles(ctx))

	ctx = WithUserID(ctx, "u1")
	ctx = WithUserRoles(ctx, []string{"editor", "viewer"})

	assert.Equal(t, "u1", GetUserID(ctx))
	assert.Equal(t, []string{"editor", "viewer"}, GetUserRoles(ctx))
}

// TestContextActorFallback tests that the actor falls back to the user
func TestContextActorFallback(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetActorID(ctx))

	ctx = WithUserID(ctx, "u1")
	assert.Equal(t, "u1", GetActorID(ctx))

	ctx = WithActorID(ctx, "admin")
	assert.Equal(t, "admin", GetActorID(ctx))
	assert.Equal(t, "u1", GetUserID(ctx))
}

// TestContextWrongValueTypes tests keys holding unexpected types
func TestContextWrongValueTypes(t *testing.T) {
	ctx := context.WithValue(context.Background(), contextKeyUserID, 42)
	ctx = context.WithValue(ctx, contextKeyUserRoles, "admin")
	ctx = context.WithValue(ctx, contextKeyStore, "store")

	assert.Empty(t, GetUserID(ctx))
	assert.Nil(t, GetUserRoles(ctx))
	assert.Nil(t, GetStore(ctx))
}

// TestContextStore tests store helpers
func TestContextStore(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, GetStore(ctx))

	fallback := StoreOrDefault(ctx)
	assert.True(t, fallback.Can("anything", ActionDelete))

	store := NewStoreFromPolicy(testPolicy(), "viewer")
	ctx = WithStore(ctx, store)
	assert.Same(t, store, GetStore(ctx))
	assert.Same(t, store, StoreOrDefault(ctx))
}

// TestContextAuditContext tests the audit context round trip
func TestContextAuditContext(t *testing.T) {
	ac := AuditContext{
		ActorID:   "admin",
		IPAddress: "10.0.0.1",
		UserAgent: "curl/8",
		RequestID: "req-9",
	}

	ctx := WithAuditContext(context.Background(), ac)
	assert.Equal(t, ac, GetAuditContext(ctx))

	assert.Equal(t, "10.0.0.1", GetIPAddress(ctx))
	assert.Equal(t, "curl/8", GetUserAgent(ctx))
	assert.Equal(t, "req-9", GetRequestID(ctx))

	// Empty fields leave existing values alone.
	ctx = WithAuditContext(ctx, AuditContext{RequestID: "req-10"})
	got := GetAuditContext(ctx)
	assert.Equal(t, "admin", got.ActorID)
	assert.Equal(t, "req-10", got.RequestID)
}
