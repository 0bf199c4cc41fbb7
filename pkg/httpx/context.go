package httpx

import "context"

type ctxKey string

const (
	CtxKeyUsername ctxKey = "username"
	CtxKeyToken    ctxKey = "token"
	CtxKeyClientIP ctxKey = "client_ip"
)

// WithSession stores the resolved session identity on ctx.
func WithSession(ctx context.Context, username, token string) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUsername, username)
	return context.WithValue(ctx, CtxKeyToken, token)
}

// UsernameFromContext returns the authenticated username or "".
func UsernameFromContext(ctx context.Context) string {
	v, _ := ctx.Value(CtxKeyUsername).(string)
	return v
}

// TokenFromContext returns the token that authenticated the request or "".
func TokenFromContext(ctx context.Context) string {
	v, _ := ctx.Value(CtxKeyToken).(string)
	return v
}

// ClientIPFromContext returns the IP the session middleware resolved.
func ClientIPFromContext(ctx context.Context) string {
	v, _ := ctx.Value(CtxKeyClientIP).(string)
	return v
}
