package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"bulletnotes/auth"
)

type contextKey struct{}

var identityKey contextKey

// RequireAuth resolves the bearer token into an auth.Identity and stores it
// in the request context. Every failure is a bare 401; the cause is logged
// but never sent to the client.
func RequireAuth(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenStr == authHeader {
				log.Printf("auth middleware: Bearer prefix missing")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			identity, err := tokens.Verify(tokenStr)
			if err != nil {
				log.Printf("auth middleware: %v", err)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// WithIdentity attaches an authenticated identity to the context.
func WithIdentity(ctx context.Context, identity auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFrom returns the authenticated identity placed by RequireAuth.
func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(auth.Identity)
	return identity, ok
}
