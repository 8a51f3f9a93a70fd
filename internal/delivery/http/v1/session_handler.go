package v1

import (
	"net/http"
	"strings"

	"storefront-backend/pkg/logger"
	"storefront-backend/pkg/utils"
)

type SessionHandler struct{}

func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

type SessionResponse struct {
	SessionID       string        `json:"sessionId"`
	HasCredential   bool          `json:"hasCredential"`
	Identified      bool          `json:"identified"`
	Theme           ThemeResponse `json:"theme"`
	CartCount       int           `json:"cartCount"`
	WishlistCount   int           `json:"wishlistCount"`
	ComparisonCount int           `json:"comparisonCount"`
}

// GetSession summarises the caller's session for headers and badges.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrFail(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	count := session.Cart.CartItemCount(ctx)
	utils.WriteJSON(w, http.StatusOK, SessionResponse{
		SessionID:       session.ID,
		HasCredential:   session.Credentials.HasCredential(ctx),
		Identified:      count.Identified(),
		Theme:           themeView(session.Theme.Theme()),
		CartCount:       count.Value(),
		WishlistCount:   session.Wishlist.Count(),
		ComparisonCount: session.Comparison.Count(),
	})
}

type MeResponse struct {
	UserID     string `json:"userId,omitempty"`
	Identified bool   `json:"identified"`
}

func (h *SessionHandler) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrFail(w, r)
	if !ok {
		return
	}

	userID, identified := session.Credentials.UserID(r.Context())
	utils.WriteJSON(w, http.StatusOK, MeResponse{UserID: userID, Identified: identified})
}

// StoreToken saves the credential handed over by the login surface. The token
// may come in the JSON body or as a Bearer Authorization header.
func (h *SessionHandler) StoreToken(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrFail(w, r)
	if !ok {
		return
	}

	token, fromHeader := utils.BearerToken(r.Header.Get("Authorization"))
	if !fromHeader {
		var req struct {
			Token string `json:"token"`
		}
		if err := utils.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
			utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}
		token = strings.TrimSpace(req.Token)
	}

	ctx := r.Context()
	if err := session.Credentials.Store(ctx, token); err != nil {
		writeStoreError(w, r, err)
		return
	}

	userID, identified := session.Credentials.UserID(ctx)
	logger.WithContext(ctx).Info().Bool("identified", identified).Msg("Credential stored")
	utils.WriteJSON(w, http.StatusOK, MeResponse{UserID: userID, Identified: identified})
}

func (h *SessionHandler) ClearToken(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrFail(w, r)
	if !ok {
		return
	}

	if err := session.Credentials.Clear(r.Context()); err != nil {
		writeStoreError(w, r, err)
		return
	}
	logger.WithContext(r.Context()).Info().Msg("Credential cleared")
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// Navigate runs the route guard for the path in the "to" query parameter.
func (h *SessionHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrFail(w, r)
	if !ok {
		return
	}

	to := r.URL.Query().Get("to")
	if to == "" || !strings.HasPrefix(to, "/") {
		utils.WriteError(w, http.StatusBadRequest, "Query parameter 'to' must be an absolute path")
		return
	}

	utils.WriteJSON(w, http.StatusOK, session.Navigation.Navigate(r.Context(), to))
}
