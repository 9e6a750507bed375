package middleware

import (
	"context"
	"net/http"

	"github.com/mkarpenko/sweeper/internal/config"
)

type ctxKey int

const ctxPlayerClaims ctxKey = iota

// PlayerClaims extracts parsed claims put on the context by Auth.
func PlayerClaims(ctx context.Context) (*config.PlayerClaims, bool) {
	claims, ok := ctx.Value(ctxPlayerClaims).(*config.PlayerClaims)
	return claims, ok
}

// Auth parses the player token cookies when present. Requests with no
// or invalid cookies pass through anonymous, with the cookies cleared.
func Auth(auth *config.Auth) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := auth.ParsePlayerClaims(r)
			if err != nil {
				auth.Clear(w)
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), ctxPlayerClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
