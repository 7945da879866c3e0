package middleware

import (
	"crypto/subtle"
	"net/http"
)

// RequireAccessToken guards a route group with a static token carried in the
// X-Access-Token header. Used for the address-autocomplete passthrough so
// the third-party geocoding quota is not open to the world.
func RequireAccessToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get("X-Access-Token")
			if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"success":false,"message":"Unauthorized access"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
