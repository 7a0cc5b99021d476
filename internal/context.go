package internal

import (
	"context"
	"time"
)

type userIDKey struct{}

// ContextWithUserID stamps the authenticated user id on the context.
func ContextWithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the authenticated user id, zero when absent.
func UserIDFromContext(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	userID, _ := ctx.Value(userIDKey{}).(int64)
	return userID
}

// WithTimeout wraps the context with a deadline, falling back to 5 seconds
// when the configured duration is unset.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
