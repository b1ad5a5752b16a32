// Package middleware provides HTTP middleware for the API server.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"keai-wms/backend/internal/security"
	"keai-wms/backend/internal/session"
)

type contextKey string

var (
	accountIDContextKey = contextKey("account_id")
	sessionIDContextKey = contextKey("session_id")
)

// NewSessionMiddleware validates the bearer token and checks that its
// session is still live in the registry. A valid token over a dead session
// is rejected: idle expiry and logout win over token lifetime. Each
// authenticated request counts as session activity.
func NewSessionMiddleware(tokens *security.TokenProvider, sessions *session.Registry) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			sessionID, accountID, err := tokens.Validate(raw)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if !sessions.Touch(sessionID) {
				http.Error(w, "session expired", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), accountIDContextKey, accountID)
			ctx = context.WithValue(ctx, sessionIDContextKey, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

// AccountIDFromContext returns the authenticated account ID. Valid only for
// requests that passed the session middleware.
func AccountIDFromContext(ctx context.Context) (string, error) {
	id, ok := ctx.Value(accountIDContextKey).(string)
	if !ok || id == "" {
		return "", fmt.Errorf("account ID not found in context")
	}
	return id, nil
}

// SessionIDFromContext returns the session ID for the request.
func SessionIDFromContext(ctx context.Context) (string, error) {
	id, ok := ctx.Value(sessionIDContextKey).(string)
	if !ok || id == "" {
		return "", fmt.Errorf("session ID not found in context")
	}
	return id, nil
}

// ContextWithIdentity injects account and session IDs. For tests and
// non-middleware context construction.
func ContextWithIdentity(ctx context.Context, accountID, sessionID string) context.Context {
	ctx = context.WithValue(ctx, accountIDContextKey, accountID)
	return context.WithValue(ctx, sessionIDContextKey, sessionID)
}
