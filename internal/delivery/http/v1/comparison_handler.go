package v1

import (
	"net/http"

	"storefront-backend/internal/domain"
	"storefront-backend/internal/usecase"
	"storefront-backend/pkg/utils"
)

type ComparisonHandler struct{}

func NewComparisonHandler() *ComparisonHandler {
	return &ComparisonHandler{}
}

func comparisonView(c *usecase.ComparisonUsecase) productListResponse {
	return productListResponse{Items: c.Items(), Count: c.Count(), Limit: c.Limit()}
}

func (h *ComparisonHandler) GetComparison(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrFail(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, comparisonView(session.Comparison))
}

// AddToComparison adds the posted product. A full list or a duplicate is not
// an error: the response reports changed=false.
func (h *ComparisonHandler) AddToComparison(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrFail(w, r)
	if !ok {
		return
	}
	product, ok := decodeProduct(w, r)
	if !ok {
		return
	}

	added, err := session.Comparison.AddToComparison(r.Context(), product)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, changed(added, comparisonView(session.Comparison)))
}

func (h *ComparisonHandler) IsInComparison(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrFail(w, r)
	if !ok {
		return
	}

	productID := domain.ProductID(r.PathValue("productId"))
	utils.WriteJSON(w, http.StatusOK, membershipResponse{
		ProductID: productID,
		Present:   session.Comparison.IsInComparison(productID),
	})
}

func (h *ComparisonHandler) RemoveFromComparison(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrFail(w, r)
	if !ok {
		return
	}

	removed, err := session.Comparison.RemoveFromComparison(r.Context(), domain.ProductID(r.PathValue("productId")))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, changed(removed, comparisonView(session.Comparison)))
}

func (h *ComparisonHandler) ClearComparison(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrFail(w, r)
	if !ok {
		return
	}

	if err := session.Comparison.ClearComparison(r.Context()); err != nil {
		writeStoreError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, comparisonView(session.Comparison))
}

// ReloadComparison re-reads the persisted list, picking up writes made by
// other processes sharing the backend.
func (h *ComparisonHandler) ReloadComparison(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrFail(w, r)
	if !ok {
		return
	}

	session.Comparison.LoadComparisonList(r.Context())
	utils.WriteJSON(w, http.StatusOK, comparisonView(session.Comparison))
}
