package middleware

import (
	"net/http"

	"storefront-backend/internal/domain"
	"storefront-backend/pkg/utils"
)

// RequireCredential rejects requests whose session holds no credential.
// It must run inside the session middleware.
func RequireCredential(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFromContext(r.Context())
		if !ok {
			utils.WriteError(w, http.StatusInternalServerError, "Session not initialised")
			return
		}

		if !session.Credentials.HasCredential(r.Context()) {
			utils.WriteJSON(w, http.StatusUnauthorized, map[string]string{
				"error":    "Unauthorized: No credential stored",
				"redirect": domain.LoginPath,
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
