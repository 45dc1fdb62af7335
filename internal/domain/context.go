// Package domain provides core catalog types, error codes and context helpers.
//
// Context helpers centralize request-scoped data access so handlers and the
// audit log agree on who performed an action.
package domain

import (
	"context"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey int

const (
	// adminContextKey stores the authenticated admin in context.
	adminContextKey contextKey = iota

	// requestIDContextKey stores the request ID for tracing.
	requestIDContextKey
)

// Admin represents the authenticated console user stored in context.
type Admin struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// --- Admin Context Helpers ---

// NewContextWithAdmin returns a new context with the admin attached.
func NewContextWithAdmin(ctx context.Context, admin *Admin) context.Context {
	return context.WithValue(ctx, adminContextKey, admin)
}

// AdminFromContext retrieves the admin from context.
// Returns nil if no admin is present.
func AdminFromContext(ctx context.Context) *Admin {
	admin, _ := ctx.Value(adminContextKey).(*Admin)
	return admin
}

// AdminIDFromContext returns the admin ID, or 0 for anonymous requests.
func AdminIDFromContext(ctx context.Context) int64 {
	if admin := AdminFromContext(ctx); admin != nil {
		return admin.ID
	}
	return 0
}

// MustAdmin retrieves the admin from context, panicking if not present.
// Only call this behind the admin auth middleware.
func MustAdmin(ctx context.Context) *Admin {
	admin := AdminFromContext(ctx)
	if admin == nil {
		panic("admin required in context but not found")
	}
	return admin
}

// IsAdmin returns true if there is an admin in context.
func IsAdmin(ctx context.Context) bool {
	return AdminFromContext(ctx) != nil
}

// --- Request ID Context Helpers ---

// NewContextWithRequestID returns a new context with the request ID attached.
func NewContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

// RequestIDFromContext retrieves the request ID from context.
// Returns empty string if no request ID is present.
func RequestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDContextKey).(string)
	return requestID
}
