package middleware

import (
	"context"
	"errors"
	"net/http"

	"storefront-backend/internal/domain"
	"storefront-backend/internal/usecase"
	"storefront-backend/pkg/logger"
	"storefront-backend/pkg/utils"
)

const (
	SessionHeader = "X-Session-ID"
	SessionCookie = "sid"
)

// NewSessionMiddleware resolves the caller's session from the X-Session-ID
// header or the sid cookie and puts it on the request context. Callers
// without a usable id get a fresh session; the id is echoed back in both the
// header and the cookie so the next request lands in the same state.
func NewSessionMiddleware(sessions *usecase.SessionManager, secureCookie bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			id := sessionID(r)

			var (
				session *usecase.Session
				err     error
			)
			if id != "" {
				session, err = sessions.Open(ctx, id)
				if errors.Is(err, domain.ErrInvalidSession) {
					logger.WithContext(ctx).Warn().Str("session_id", id).Msg("Ignoring malformed session id")
					session, err = sessions.New(ctx)
				}
			} else {
				session, err = sessions.New(ctx)
			}
			if err != nil {
				logger.WithContext(ctx).Error().Err(err).Msg("Failed to open session")
				utils.WriteError(w, http.StatusInternalServerError, "Failed to open session")
				return
			}

			w.Header().Set(SessionHeader, session.ID)
			if cookie, cerr := r.Cookie(SessionCookie); cerr != nil || cookie.Value != session.ID {
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    session.ID,
					Path:     "/",
					HttpOnly: true,
					Secure:   secureCookie,
					SameSite: http.SameSiteLaxMode,
				})
			}

			sessionLogger := logger.WithSessionID(*logger.WithContext(ctx), session.ID)
			ctx = logger.NewContext(ctx, &sessionLogger)
			ctx = context.WithValue(ctx, domain.SessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionID(r *http.Request) string {
	if id := r.Header.Get(SessionHeader); id != "" {
		return id
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// SessionFromContext returns the session placed by the session middleware.
func SessionFromContext(ctx context.Context) (*usecase.Session, bool) {
	s, ok := ctx.Value(domain.SessionContextKey).(*usecase.Session)
	return s, ok && s != nil
}
