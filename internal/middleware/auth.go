// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/avolkov/chalkboard/internal/auth"
)

type ctxKey string

const authorKey ctxKey = "author"

// BearerAuth is a middleware that enforces bearer-token authentication.
//
// It expects an "Authorization: Bearer <token>" header carrying a session
// token issued at login. On success the identity email from the token is
// stored in the request context, so handlers downstream can scope their
// queries to the authenticated author.
func BearerAuth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				http.Error(w, "authorization required", http.StatusUnauthorized)
				return
			}
			email, err := auth.GetEmailFromToken(tokenString, secret)
			if err != nil {
				http.Error(w, "invalid session token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), authorKey, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithAuthor returns a context carrying the authenticated identity's email,
// as BearerAuth would have stored it.
func WithAuthor(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, authorKey, email)
}

// GetAuthorFromContext extracts the authenticated identity's email from the
// request context. Returns an empty string if not found.
func GetAuthorFromContext(ctx context.Context) string {
	val := ctx.Value(authorKey)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}
