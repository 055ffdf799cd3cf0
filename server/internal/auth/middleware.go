package auth

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
)

// QueryParam is the URL query parameter checked when the header is absent.
// Browsers cannot set headers on WebSocket handshakes, so overlays pass the
// key here instead.
const QueryParam = "api_key"

// APIKeyMiddleware returns HTTP middleware that enforces API key
// authentication on every request.
//
// Behaviour:
//   - If mode != "apikey" or key == "", all requests are allowed (pass-through).
//   - Otherwise the key is read from header, falling back to the api_key query
//     parameter, and compared to key in constant time.
//   - A missing, empty, or incorrect key returns 401 with a JSON error body.
func APIKeyMiddleware(mode, header, key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		// Non-apikey modes or unconfigured key → allow everything.
		if mode != "apikey" || key == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get(header)
			if provided == "" {
				provided = r.URL.Query().Get(QueryParam)
			}
			if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "invalid api key"}) //nolint:errcheck
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
