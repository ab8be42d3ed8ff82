// Package middleware provides the HTTP middleware chain: request IDs,
// logging, panic recovery, security headers, CORS, API key auth, scopes
// and rate limiting.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	traceIDKey
)

// Correlation headers.
const (
	RequestIDHeader   = "X-Request-ID"
	TraceIDHeader     = "X-Trace-ID"
	TraceParentHeader = "traceparent"
)

const maxRequestIDLen = 64

// RequestID tags each request with an ID, reusing a well-formed X-Request-ID
// from the client and generating a UUID otherwise. A trace ID is taken from
// X-Trace-ID or a W3C traceparent header when one is sent.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if !validRequestID(requestID) {
			requestID = uuid.NewString()
		}
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set(RequestIDHeader, requestID)

		if traceID := traceIDFromHeaders(r.Header); traceID != "" {
			ctx = context.WithValue(ctx, traceIDKey, traceID)
			w.Header().Set(TraceIDHeader, traceID)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// validRequestID accepts short IDs made of characters that are safe to log.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	return true
}

// traceIDFromHeaders prefers X-Trace-ID and falls back to the trace-id field
// of "version-traceid-parentid-flags".
func traceIDFromHeaders(h http.Header) string {
	if id := h.Get(TraceIDHeader); validRequestID(id) {
		return id
	}
	parts := strings.Split(h.Get(TraceParentHeader), "-")
	if len(parts) != 4 || len(parts[1]) != 32 || strings.Trim(parts[1], "0") == "" {
		return ""
	}
	if strings.Trim(parts[1], "0123456789abcdef") != "" {
		return ""
	}
	return parts[1]
}

// GetRequestID returns the request ID, or "" outside a request.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// GetTraceID returns the trace ID when the caller sent one.
func GetTraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey).(string)
	return id
}
