// Package api implements the notechat REST API using chi.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/starford/notechat/internal/apperr"
)

type ownerKey struct{}

// Auth configures request authentication. When Enabled is false every
// request acts as DefaultOwner; otherwise the Bearer token selects the owner.
type Auth struct {
	Enabled      bool
	DefaultOwner string
	Tokens       map[string]string // token -> owner
}

// WithOwner returns a context carrying owner.
func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ownerKey{}, owner)
}

// OwnerFrom returns the owner set by AuthMiddleware.
func OwnerFrom(ctx context.Context) string {
	owner, _ := ctx.Value(ownerKey{}).(string)
	return owner
}

// AuthMiddleware resolves the request owner. Requests without a valid
// "Authorization: Bearer <token>" header are rejected with 401 in token mode.
func AuthMiddleware(auth Auth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !auth.Enabled {
				next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), auth.DefaultOwner)))
				return
			}
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			owner, known := auth.Tokens[token]
			if !ok || !known || owner == "" {
				writeJSON(w, http.StatusUnauthorized, errorBody(apperr.ErrUnauthorized.Error()))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), owner)))
		})
	}
}
