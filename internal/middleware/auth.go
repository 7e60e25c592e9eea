package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mkarpenko/campushub/internal/auth"
)

// SessionCookieName is the HTTP-only cookie carrying the session token.
const SessionCookieName = "campushub_session"

// RequireAuth resolves the session cookie through the session manager and
// attaches the caller's identity to the request context. Token verification
// is signature-and-expiry only; see auth.Manager.Authorize.
func RequireAuth(manager *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				writeUnauthenticated(w)
				return
			}

			user, err := manager.Authorize(cookie.Value)
			if err != nil {
				// A store failure is not the caller's fault; everything
				// else on this path is a bad or stale token.
				if errors.Is(err, auth.ErrStoreUnavailable) {
					writeStoreUnavailable(w)
					return
				}
				writeUnauthenticated(w)
				return
			}

			ctx := auth.WithIdentity(r.Context(), auth.Identity{User: user, Token: cookie.Value})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthenticated(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"kind":  "unauthenticated",
		"error": "authentication required",
	})
}

func writeStoreUnavailable(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{
		"kind":  "store_unavailable",
		"error": "persistence layer unavailable",
	})
}
