package designkit

import (
	"context"
)

// Context keys for designkit values.
type contextKey string

const (
	contextKeyUserID    contextKey = "designkit:user_id"
	contextKeyUserRoles contextKey = "designkit:user_roles"
	contextKeyActorID   contextKey = "designkit:actor_id"
	contextKeyIPAddress contextKey = "designkit:ip_address"
	contextKeyUserAgent contextKey = "designkit:user_agent"
	contextKeyRequestID contextKey = "designkit:request_id"
	contextKeyStore     contextKey = "designkit:store"
)

func stringValue(ctx context.Context, key contextKey) string {
	if v := ctx.Value(key); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithUserID adds a user ID to the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKeyUserID, userID)
}

// GetUserID retrieves the user ID from context.
// Returns empty string if not set.
func GetUserID(ctx context.Context) string {
	return stringValue(ctx, contextKeyUserID)
}

// WithUserRoles adds the user's directly assigned roles to the context.
// The middleware reads them by default.
func WithUserRoles(ctx context.Context, roles []string) context.Context {
	return context.WithValue(ctx, contextKeyUserRoles, roles)
}

// GetUserRoles retrieves the user's roles from context, or nil.
func GetUserRoles(ctx context.Context) []string {
	if v := ctx.Value(contextKeyUserRoles); v != nil {
		if roles, ok := v.([]string); ok {
			return roles
		}
	}
	return nil
}

// WithActorID adds an actor ID to the context.
// This is the user changing the stored policy, recorded in the audit log.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, contextKeyActorID, actorID)
}

// GetActorID retrieves the actor ID from context.
// Falls back to user ID if actor ID is not explicitly set.
func GetActorID(ctx context.Context) string {
	if actor := stringValue(ctx, contextKeyActorID); actor != "" {
		return actor
	}
	return GetUserID(ctx)
}

// WithIPAddress adds the client IP address to the context (for audit).
func WithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, contextKeyIPAddress, ip)
}

// GetIPAddress retrieves the IP address from context.
func GetIPAddress(ctx context.Context) string {
	return stringValue(ctx, contextKeyIPAddress)
}

// WithUserAgent adds the user agent to the context (for audit).
func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, contextKeyUserAgent, ua)
}

// GetUserAgent retrieves the user agent from context.
func GetUserAgent(ctx context.Context) string {
	return stringValue(ctx, contextKeyUserAgent)
}

// WithRequestID adds a request ID to the context (for audit and correlation).
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, requestID)
}

// GetRequestID retrieves the request ID from context.
func GetRequestID(ctx context.Context) string {
	return stringValue(ctx, contextKeyRequestID)
}

// WithStore adds a Store to the context.
// This is set by middleware and can be retrieved in handlers.
func WithStore(ctx context.Context, store *Store) context.Context {
	return context.WithValue(ctx, contextKeyStore, store)
}

// GetStore retrieves the Store from context.
// Returns nil if not set.
func GetStore(ctx context.Context) *Store {
	if v := ctx.Value(contextKeyStore); v != nil {
		if s, ok := v.(*Store); ok {
			return s
		}
	}
	return nil
}

// StoreOrDefault retrieves the Store from context, falling back to the
// fail-open DefaultStore when none is set.
func StoreOrDefault(ctx context.Context) *Store {
	if s := GetStore(ctx); s != nil {
		return s
	}
	return DefaultStore()
}

// AuditContext holds all audit-related information from context.
type AuditContext struct {
	ActorID   string
	IPAddress string
	UserAgent string
	RequestID string
}

// GetAuditContext extracts all audit information from context.
func GetAuditContext(ctx context.Context) AuditContext {
	return AuditContext{
		ActorID:   GetActorID(ctx),
		IPAddress: GetIPAddress(ctx),
		UserAgent: GetUserAgent(ctx),
		RequestID: GetRequestID(ctx),
	}
}

// WithAuditContext adds all audit information to context at once.
func WithAuditContext(ctx context.Context, ac AuditContext) context.Context {
	if ac.ActorID != "" {
		ctx = WithActorID(ctx, ac.ActorID)
	}
	if ac.IPAddress != "" {
		ctx = WithIPAddress(ctx, ac.IPAddress)
	}
	if ac.UserAgent != "" {
		ctx = WithUserAgent(ctx, ac.UserAgent)
	}
	if ac.RequestID != "" {
		ctx = WithRequestID(ctx, ac.RequestID)
	}
	return ctx
}
