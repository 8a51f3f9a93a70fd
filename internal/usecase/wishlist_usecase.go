package usecase

import (
	"context"
	"sync"

	"storefront-backend/internal/domain"
)

const wishlistStore = "wishlist"

// WishlistUsecase is the session's flat wishlist. Products are unique by id
// and keep insertion order.
type WishlistUsecase struct {
	mu    sync.Mutex
	kv    domain.KeyValueStore
	items []domain.Product
}

func NewWishlistUsecase(ctx context.Context, kv domain.KeyValueStore) *WishlistUsecase {
	u := &WishlistUsecase{kv: kv, items: []domain.Product{}}
	u.Load(ctx)
	return u
}

// Load replaces in-memory state with the persisted wishlist.
func (u *WishlistUsecase) Load(ctx context.Context) {
	var stored []domain.Product
	if !loadJSON(ctx, u.kv, domain.KeyWishlist, &stored) {
		stored = nil
	}

	u.mu.Lock()
	u.items = dedupProducts(stored)
	u.mu.Unlock()
}

// AddToWishlist appends product unless its id is already present.
// It reports whether the wishlist changed.
func (u *WishlistUsecase) AddToWishlist(ctx context.Context, product domain.Product) (bool, error) {
	if err := product.Validate(); err != nil {
		return false, err
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if indexOfProduct(u.items, product.ID) >= 0 {
		return false, nil
	}
	u.items = append(u.items, product.Clone())
	recordMutation(wishlistStore, "add")
	return true, u.flushLocked(ctx)
}

// RemoveFromWishlist drops productID. It reports whether anything was removed.
func (u *WishlistUsecase) RemoveFromWishlist(ctx context.Context, productID domain.ProductID) (bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	i := indexOfProduct(u.items, productID)
	if i < 0 {
		return false, nil
	}
	u.items = append(u.items[:i:i], u.items[i+1:]...)
	recordMutation(wishlistStore, "remove")
	return true, u.flushLocked(ctx)
}

// ClearWishlist empties the wishlist and stores an empty list.
func (u *WishlistUsecase) ClearWishlist(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.items = []domain.Product{}
	recordMutation(wishlistStore, "clear")
	return u.flushLocked(ctx)
}

func (u *WishlistUsecase) IsInWishlist(productID domain.ProductID) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return indexOfProduct(u.items, productID) >= 0
}

func (u *WishlistUsecase) Items() []domain.Product {
	u.mu.Lock()
	defer u.mu.Unlock()
	return cloneProducts(u.items)
}

func (u *WishlistUsecase) Count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.items)
}

func (u *WishlistUsecase) flushLocked(ctx context.Context) error {
	return flushJSON(ctx, u.kv, wishlistStore, domain.KeyWishlist, u.items)
}
