package v1

import (
	"net/http"

	"storefront-backend/internal/domain"
	"storefront-backend/pkg/utils"
)

type ThemeHandler struct{}

func NewThemeHandler() *ThemeHandler {
	return &ThemeHandler{}
}

type ThemeResponse struct {
	Theme  domain.Theme `json:"theme"`
	IsDark bool         `json:"isDark"`
}

func themeView(theme domain.Theme) ThemeResponse {
	return ThemeResponse{Theme: theme, IsDark: theme.IsDark()}
}

func (h *ThemeHandler) GetTheme(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrFail(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, themeView(session.Theme.Theme()))
}

func (h *ThemeHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrFail(w, r)
	if !ok {
		return
	}

	var req struct {
		Theme string `json:"theme"`
	}
	if err := utils.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	theme, err := domain.ParseTheme(req.Theme)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	if err := session.Theme.SetTheme(r.Context(), theme); err != nil {
		writeStoreError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, themeView(session.Theme.Theme()))
}

func (h *ThemeHandler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrFail(w, r)
	if !ok {
		return
	}

	theme, err := session.Theme.ToggleTheme(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, themeView(theme))
}
