package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/fkhayef/tripsplit/pkg/response"
)

// APIKey returns middleware that requires the X-API-Key header to match
// the configured key. Participants are trip-scoped labels rather than
// accounts, so the key is a deployment-level guard, not per-user auth.
// An empty key disables the check, which is the development default.
func APIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			provided := r.Header.Get("X-API-Key")
			if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
				response.Unauthorized(w, "Invalid or missing API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
