package auth

import "context"

type keyContextKey struct{}

// WithKey stores the caller's API key on ctx.
func WithKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, keyContextKey{}, key)
}

// KeyFromContext returns the caller's API key, or "" when none was sent.
func KeyFromContext(ctx context.Context) string {
	key, _ := ctx.Value(keyContextKey{}).(string)
	return key
}
