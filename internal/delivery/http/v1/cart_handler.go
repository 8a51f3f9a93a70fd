package v1

import (
	"context"
	"net/http"

	"storefront-backend/internal/domain"
	"storefront-backend/internal/usecase"
	"storefront-backend/pkg/utils"
)

type CartHandler struct{}

func NewCartHandler() *CartHandler {
	return &CartHandler{}
}

// CartResponse is the cart of the signed-in user. Identified is false when
// no user can be resolved from the stored credential; the other fields then
// hold the empty fallbacks.
type CartResponse struct {
	Identified bool              `json:"identified"`
	Items      []domain.LineItem `json:"items"`
	Count      int               `json:"count"`
	Total      string            `json:"total"`
}

func cartView(ctx context.Context, cart *usecase.CartUsecase) CartResponse {
	return CartResponse(cart.View(ctx))
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrFail(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, cartView(r.Context(), session.Cart))
}

func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrFail(w, r)
	if !ok {
		return
	}
	product, ok := decodeProduct(w, r)
	if !ok {
		return
	}

	if _, err := session.Cart.AddToCart(r.Context(), product); err != nil {
		writeStoreError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cartView(r.Context(), session.Cart))
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrFail(w, r)
	if !ok {
		return
	}

	var req updateQuantityRequest
	if err := utils.DecodeJSON(w, r, maxBodyBytes, &req); err != nil || req.Quantity == nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	productID := domain.ProductID(r.PathValue("productId"))
	if _, err := session.Cart.UpdateQuantity(r.Context(), productID, *req.Quantity); err != nil {
		writeStoreError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cartView(r.Context(), session.Cart))
}

func (h *CartHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrFail(w, r)
	if !ok {
		return
	}

	productID := domain.ProductID(r.PathValue("productId"))
	if _, err := session.Cart.RemoveFromCart(r.Context(), productID); err != nil {
		writeStoreError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cartView(r.Context(), session.Cart))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrFail(w, r)
	if !ok {
		return
	}

	if _, err := session.Cart.ClearCart(r.Context()); err != nil {
		writeStoreError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cartView(r.Context(), session.Cart))
}
