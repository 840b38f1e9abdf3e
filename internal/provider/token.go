package provider

import "context"

type contextKey string

const tokenKey contextKey = "provider_token"

// WithToken stores the raw bearer token for the current request. Set by
// transport middleware; every provider call reads the token back from the
// context so overlapping requests never share token state.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// TokenFromContext returns the bearer token captured for this request,
// or "" when the request carried none.
func TokenFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(tokenKey).(string); ok {
		return v
	}
	return ""
}
