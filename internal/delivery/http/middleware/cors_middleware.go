package middleware

import (
	"net/http"

	"storefront-backend/config"
	"storefront-backend/pkg/utils"
)

// NewCORSMiddleware creates a CORS middleware for the configured origins.
// The session header is allowed in and exposed out so browser clients can
// carry their session id explicitly instead of relying on the cookie.
func NewCORSMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	origins := utils.SplitList(cfg.AllowedOrigin)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			for _, o := range origins {
				if o == "*" {
					w.Header().Set("Access-Control-Allow-Origin", "*")
					break
				}
				if o == origin {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Add("Vary", "Origin")
					break
				}
			}

			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+SessionHeader)
			w.Header().Set("Access-Control-Expose-Headers", SessionHeader+", X-Request-ID")
			w.Header().Set("Access-Control-Allow-Credentials", "true")

			// Preflight
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
