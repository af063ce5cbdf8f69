// Package middleware provides HTTP middleware shared by the API routes.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// requestIDKey is the context key for the per-request identifier.
const requestIDKey ContextKey = "requestID"

// RequestIDHeader carries the request identifier in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns every request an identifier, reusing a valid incoming
// X-Request-ID, and echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.Header.Get(RequestIDHeader))
		if err != nil {
			id = uuid.New()
		}

		w.Header().Set(RequestIDHeader, id.String())
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID extracts the request identifier from the request context.
func GetRequestID(r *http.Request) (uuid.UUID, bool) {
	id, ok := r.Context().Value(requestIDKey).(uuid.UUID)
	return id, ok
}
