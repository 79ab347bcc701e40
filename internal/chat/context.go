package chat

import "context"

type ctxUserKey struct{}

// WithUser scopes file lookups in ctx to userID.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxUserKey{}, userID)
}

// UserFromContext returns the caller id, or "" when the request is unscoped.
func UserFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxUserKey{}).(string)
	return id
}
