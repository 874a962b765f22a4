package auth

import "context"

type userIDContextKey struct{}

// ContextWithUserID returns a context carrying the id of the
// authenticated user, set by the auth middleware at the request boundary
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey{}, userID)
}

// UserIDFromContext returns the id of the authenticated user, or false
// when the request carries no (valid) session
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDContextKey{}).(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}
