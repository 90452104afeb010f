package delivery

import (
	"net/http"

	"github.com/Vovarama1992/companion/internal/ports"
)

// AuthMiddleware takes the token from X-Auth, or from ?token= for browsers
// opening a websocket or a media link, which cannot set headers.
func AuthMiddleware(auth ports.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !auth.Enabled() || r.URL.Path == "/api/login" {
				next.ServeHTTP(w, r)
				return
			}

			token := r.Header.Get("X-Auth")
			if token == "" {
				token = r.URL.Query().Get("token")
			}
			if token == "" {
				http.Error(w, "missing token", http.StatusUnauthorized)
				return
			}

			ok, err := auth.ValidateToken(r.Context(), token)
			if err != nil || !ok {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
