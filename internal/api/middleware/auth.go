package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/example/festisolde/internal/model"
	"github.com/example/festisolde/internal/routing"
)

// AccessTokenCookie holds the access token for browser clients.
const AccessTokenCookie = "access_token"

// SessionResolver turns an access token into the current session.
type SessionResolver interface {
	GetCurrentUser(ctx context.Context, accessToken string) (*model.Session, error)
}

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, message string, status int, redirect routing.Route) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]string{"error": message}
	if redirect != "" {
		body["redirect"] = string(redirect)
	}
	_ = json.NewEncoder(w).Encode(body)
}

// ExtractToken extracts the access token from cookie or Authorization header
func ExtractToken(r *http.Request) string {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

type contextKey string

const (
	sessionContextKey contextKey = "session"
	tokenContextKey   contextKey = "access_token"
)

// Session resolves the caller's session when a valid token is present. It
// never rejects a request; RequireAccess does.
func Session(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := ExtractToken(r); token != "" {
				if session, err := resolver.GetCurrentUser(r.Context(), token); err == nil {
					ctx := context.WithValue(r.Context(), sessionContextKey, session)
					ctx = context.WithValue(ctx, tokenContextKey, token)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAccess rejects sessions that may not enter the route, answering
// with the route they should be sent to.
func RequireAccess(access routing.Access) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, _ := GetSession(r.Context())
			redirect, ok := routing.Guard(access, session)
			if ok {
				next.ServeHTTP(w, r)
				return
			}
			if session == nil {
				respondError(w, "unauthorized", http.StatusUnauthorized, redirect)
				return
			}
			respondError(w, "forbidden", http.StatusForbidden, redirect)
		})
	}
}

// WithSession returns a context carrying session.
func WithSession(ctx context.Context, session *model.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// GetSession retrieves the session from the request context
func GetSession(ctx context.Context) (*model.Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(*model.Session)
	return session, ok && session != nil
}

// GetToken returns the access token the session was resolved from.
func GetToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}

// GetUserID is a helper to get just the user ID from context
func GetUserID(ctx context.Context) string {
	session, ok := GetSession(ctx)
	if !ok {
		return ""
	}
	return session.UserID
}
