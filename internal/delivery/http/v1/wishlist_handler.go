package v1

import (
	"net/http"

	"storefront-backend/internal/domain"
	"storefront-backend/pkg/utils"
)

type WishlistHandler struct{}

func NewWishlistHandler() *WishlistHandler {
	return &WishlistHandler{}
}

func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrFail(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, productListResponse{
		Items: session.Wishlist.Items(),
		Count: session.Wishlist.Count(),
	})
}

// AddToWishlist stores the posted product. Adding a product that is already
// listed succeeds with changed=false.
func (h *WishlistHandler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrFail(w, r)
	if !ok {
		return
	}
	product, ok := decodeProduct(w, r)
	if !ok {
		return
	}

	added, err := session.Wishlist.AddToWishlist(r.Context(), product)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, changed(added, productListResponse{
		Items: session.Wishlist.Items(),
		Count: session.Wishlist.Count(),
	}))
}

func (h *WishlistHandler) IsInWishlist(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrFail(w, r)
	if !ok {
		return
	}

	productID := domain.ProductID(r.PathValue("productId"))
	utils.WriteJSON(w, http.StatusOK, membershipResponse{
		ProductID: productID,
		Present:   session.Wishlist.IsInWishlist(productID),
	})
}

func (h *WishlistHandler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrFail(w, r)
	if !ok {
		return
	}

	removed, err := session.Wishlist.RemoveFromWishlist(r.Context(), domain.ProductID(r.PathValue("productId")))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, changed(removed, productListResponse{
		Items: session.Wishlist.Items(),
		Count: session.Wishlist.Count(),
	}))
}

func (h *WishlistHandler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrFail(w, r)
	if !ok {
		return
	}

	if err := session.Wishlist.ClearWishlist(r.Context()); err != nil {
		writeStoreError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, productListResponse{Items: []domain.Product{}})
}
