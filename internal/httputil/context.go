package httputil

import (
	"context"
	"net/http"
)

// Context key type to avoid collisions
type contextKey string

const (
	requestIDKey contextKey = "requestID"
)

// RequestIDHeader is sent on outgoing API calls and echoed by the browse server
const RequestIDHeader = "X-Request-ID"

// WithRequestID adds the correlation id to the request context
func WithRequestID(r *http.Request, requestID string) *http.Request {
	ctx := ContextWithRequestID(r.Context(), requestID)
	return r.WithContext(ctx)
}

// ContextWithRequestID is WithRequestID for callers without a request
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFrom retrieves the correlation id, returns empty string if not found
func RequestIDFrom(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDKey).(string)
	return requestID
}

// GetRequestID retrieves the correlation id from the request context
func GetRequestID(r *http.Request) string {
	return RequestIDFrom(r.Context())
}
