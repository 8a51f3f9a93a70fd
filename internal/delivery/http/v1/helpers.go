package v1

import (
	"errors"
	"net/http"

	"storefront-backend/internal/delivery/http/middleware"
	"storefront-backend/internal/domain"
	"storefront-backend/internal/usecase"
	"storefront-backend/pkg/logger"
	"storefront-backend/pkg/utils"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 64 << 10

func sessionOrFail(w http.ResponseWriter, r *http.Request) (*usecase.Session, bool) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusInternalServerError, "Session not initialised")
		return nil, false
	}
	return session, true
}

// writeStoreError maps store errors onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidProduct),
		errors.Is(err, domain.ErrInvalidTheme),
		errors.Is(err, domain.ErrInvalidCredential):
		utils.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrPersist):
		logger.WithContext(r.Context()).Error().Err(err).Msg("State applied but not persisted")
		utils.WriteError(w, http.StatusServiceUnavailable, "Change applied but could not be saved")
	default:
		logger.WithContext(r.Context()).Error().Err(err).Msg("Unexpected store error")
		utils.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeProduct(w http.ResponseWriter, r *http.Request) (domain.Product, bool) {
	var product domain.Product
	if err := utils.DecodeJSON(w, r, maxBodyBytes, &product); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return domain.Product{}, false
	}
	return product, true
}

type productListResponse struct {
	Items []domain.Product `json:"items"`
	Count int              `json:"count"`
	Limit int              `json:"limit,omitempty"`
}

type membershipResponse struct {
	ProductID domain.ProductID `json:"productId"`
	Present   bool             `json:"present"`
}

type changeResponse struct {
	Changed bool             `json:"changed"`
	Items   []domain.Product `json:"items"`
	Count   int              `json:"count"`
	Limit   int              `json:"limit,omitempty"`
}

func changed(ok bool, list productListResponse) changeResponse {
	return changeResponse{Changed: ok, Items: list.Items, Count: list.Count, Limit: list.Limit}
}
