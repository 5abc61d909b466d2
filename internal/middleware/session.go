package middleware

import (
	"net/http"

	"scholarvault/internal/auth"
)

// SessionSource yields the process-wide session; auth.Manager implements it
type SessionSource interface {
	Current() (*auth.Session, error)
}

// Session attaches the signed-in session to every request context so
// handlers that reach the API carry the bearer token. Without a session
// requests pass through unchanged and remote calls fail as unauthorized.
func Session(source SessionSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s, err := source.Current(); err == nil {
				r = r.WithContext(auth.WithSession(r.Context(), s))
			}
			next.ServeHTTP(w, r)
		})
	}
}
