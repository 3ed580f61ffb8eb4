package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/krabbel/backend/internal/auth"
)

// SkipFunc decides whether a request bypasses token verification entirely.
// It is evaluated before anything else in the filter.
type SkipFunc func(r *http.Request) bool

// Authenticate resolves a bearer token into an Identity and attaches it to
// the request context. The filter is pure enrichment: a missing header,
// malformed token, bad signature, expired token, or unknown subject all
// leave the request unauthenticated and pass it through. Downstream
// handlers are the single place that turns "no identity" into a rejection.
func Authenticate(authSvc *auth.Service, skip SkipFunc, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if skip != nil && skip(r) {
			next.ServeHTTP(w, r)
			return
		}

		tokenString := bearerToken(r)
		if tokenString == "" {
			next.ServeHTTP(w, r)
			return
		}

		ident, err := authSvc.ResolveToken(r.Context(), tokenString)
		if err != nil {
			log.Printf("auth: rejecting token for %s %s: %v", r.Method, r.URL.Path, err)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), ident)))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
