// Package auth covers both directions of authentication: client credentials
// for outbound requests and static bearer tokens for the HTTP API.
package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
)

// HTTPClient returns a client that attaches a client-credentials token to
// every request and refreshes it when it expires. Without credentials the
// default client is returned.
func HTTPClient(ctx context.Context, c Conf) *http.Client {
	if !c.Enabled() {
		return http.DefaultClient
	}
	return c.oauth2Config().Client(ctx)
}

// Authorized reports whether r carries "Bearer <token>". An empty token
// disables the check.
func Authorized(r *http.Request, token string) bool {
	if token == "" {
		return true
	}
	got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(token)) == 1
}

// RequireBearer rejects requests failing Authorized with 401.
func RequireBearer(token string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !Authorized(r, token) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
