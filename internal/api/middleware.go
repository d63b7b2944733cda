/**
 * @description
 * Authentication middleware for the settlement service. The admin surface
 * is server-to-server only, guarded by a shared internal API key;
 * end-user authentication lives with an external collaborator.
 */
package api

import (
	"net/http"
)

// InternalAuthMiddleware validates the internal API key for
// server-to-server calls. An empty configured key disables the check.
func InternalAuthMiddleware(requiredKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requiredKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			provided := r.Header.Get("X-Internal-API-Key")
			if provided == "" || provided != requiredKey {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
