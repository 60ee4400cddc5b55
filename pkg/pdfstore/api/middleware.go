package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/loresmith/pdfstore/pkg/pdfstore"
)

// Context keys for middleware
type contextKey string

const identityKey contextKey = "identity"

// IdentityFromContext returns the ClientIdentity stored by AuthMiddleware.
func IdentityFromContext(ctx context.Context) (pdfstore.ClientIdentity, bool) {
	identity, ok := ctx.Value(identityKey).(pdfstore.ClientIdentity)
	return identity, ok
}

// BearerToken extracts the bearer credential from the Authorization header.
// Returns an empty string when the header is missing or not a bearer scheme.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimPrefix(header, prefix)
}

// AuthMiddleware authenticates every request against the configured secrets
// and stores the resulting identity in the request context.
func AuthMiddleware(auth *pdfstore.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := auth.Authenticate(BearerToken(r), false)
			if err != nil {
				writeError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CORSMiddleware handles CORS headers for browser clients.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
