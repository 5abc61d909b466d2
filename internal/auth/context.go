package auth

import "context"

type contextKey string

const sessionKey contextKey = "session"

// WithSession returns a context carrying the session
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// FromContext returns the session carried by ctx, or nil
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey).(*Session)
	return s
}

// TokenFrom returns the bearer token carried by ctx, or ""
func TokenFrom(ctx context.Context) string {
	if s := FromContext(ctx); s != nil {
		return s.Token
	}
	return ""
}
