package auth

import "context"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const userIDKey contextKey = "user_id"

// ContextWithUserID attaches an authenticated user ID to ctx.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user ID.
// Returns empty string if not authenticated.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}
