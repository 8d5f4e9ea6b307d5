package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/relink-app/relink/internal/cache"
)

type contextKey int

const principalKey contextKey = iota

// Auth verifies HS256 bearer tokens and attaches the token's subject to the
// request context as the principal. Verified tokens are memoized in the
// principal cache so the signature check runs once per token.
type Auth struct {
	Secret []byte
	Cache  *cache.PrincipalCache
}

func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			jsonError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}

		if principal, ok := a.Cache.Get(raw); ok {
			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), principal)))
			return
		}

		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			return a.Secret, nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			jsonError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}

		principal, err := token.Claims.GetSubject()
		if err != nil || principal == "" {
			jsonError(w, http.StatusUnauthorized, "unauthorized", "token has no subject")
			return
		}

		var expiresAt time.Time
		if exp, err := token.Claims.GetExpirationTime(); err == nil && exp != nil {
			expiresAt = exp.Time
		}
		a.Cache.Set(raw, principal, expiresAt)

		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), principal)))
	})
}

func withPrincipal(ctx context.Context, principal string) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

// Principal returns the authenticated principal id, or "" outside the
// authenticated surface.
func Principal(ctx context.Context) string {
	p, _ := ctx.Value(principalKey).(string)
	return p
}
