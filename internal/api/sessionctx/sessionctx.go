// Package sessionctx carries the request's session identifier between the
// cookie middleware and the handlers without coupling the two packages.
package sessionctx

import "context"

type ctxKey struct{}

// WithSessionID stores the cookie-carried session identifier.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// SessionID returns the identifier set by the middleware, or "".
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
