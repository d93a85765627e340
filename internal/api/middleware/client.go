package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/google/uuid"
)

const (
	ClientIDHeader = "X-Client-ID"
	ClientCookie   = "festi_client"
)

const clientCookieMaxAge = 365 * 24 * time.Hour

var validClientID = regexp.MustCompile(`^[A-Za-z0-9_-]{8,64}$`)

const clientContextKey contextKey = "client_id"

// ClientID identifies the device a request comes from: the X-Client-ID
// header, else the festi_client cookie, else a fresh id set as a cookie.
func ClientID(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(ClientIDHeader)
			if !validClientID.MatchString(id) {
				id = ""
				if cookie, err := r.Cookie(ClientCookie); err == nil && validClientID.MatchString(cookie.Value) {
					id = cookie.Value
				}
			}
			if id == "" {
				id = uuid.New().String()
				http.SetCookie(w, &http.Cookie{
					Name:     ClientCookie,
					Value:    id,
					Path:     "/",
					MaxAge:   int(clientCookieMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx := context.WithValue(r.Context(), clientContextKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClientID returns the client id set by ClientID.
func GetClientID(ctx context.Context) string {
	id, _ := ctx.Value(clientContextKey).(string)
	return id
}
