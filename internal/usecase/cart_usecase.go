package usecase

import (
	"context"
	"sync"

	"storefront-backend/internal/domain"
	"storefront-backend/pkg/logger"

	"github.com/shopspring/decimal"
)

const cartStore = "cart"

// CartUsecase holds every user's cart for one session and mirrors the whole
// mapping to the "cart" key after each change.
type CartUsecase struct {
	mu       sync.Mutex
	kv       domain.KeyValueStore
	identity domain.IdentityProvider
	carts    map[string][]domain.LineItem
}

// NewCartUsecase creates the cart store and loads any persisted state.
func NewCartUsecase(ctx context.Context, kv domain.KeyValueStore, identity domain.IdentityProvider) *CartUsecase {
	u := &CartUsecase{
		kv:       kv,
		identity: identity,
		carts:    make(map[string][]domain.LineItem),
	}
	u.Load(ctx)
	return u
}

// Load replaces in-memory state with what the store holds. Missing or
// malformed data yields an empty mapping.
func (u *CartUsecase) Load(ctx context.Context) {
	var stored map[string][]domain.LineItem
	if !loadJSON(ctx, u.kv, domain.KeyCart, &stored) || stored == nil {
		stored = make(map[string][]domain.LineItem)
	}
	for userID, items := range stored {
		stored[userID] = normalizeLines(items)
	}

	u.mu.Lock()
	u.carts = stored
	u.mu.Unlock()
}

// normalizeLines restores the invariants on loaded data: quantity within
// [1, MaxQuantity] and one line per product id (duplicates are merged into
// the first line).
func normalizeLines(items []domain.LineItem) []domain.LineItem {
	out := make([]domain.LineItem, 0, len(items))
	index := make(map[domain.ProductID]int, len(items))
	for _, item := range items {
		item.Quantity = clampQuantity(item.Quantity)
		if i, ok := index[item.ID]; ok {
			out[i].Quantity = clampQuantity(out[i].Quantity + item.Quantity)
			continue
		}
		index[item.ID] = len(out)
		out = append(out, item)
	}
	return out
}

func clampQuantity(q int) int {
	return min(max(1, q), domain.MaxQuantity)
}

// AddToCart increments the quantity of product in the user's cart, or
// appends it with quantity 1. A line already at MaxQuantity is left as is.
// The outcome is the zero value whenever err reports an invalid product.
func (u *CartUsecase) AddToCart(ctx context.Context, product domain.Product) (domain.Outcome[[]domain.LineItem], error) {
	if err := product.Validate(); err != nil {
		return domain.Outcome[[]domain.LineItem]{}, err
	}
	userID, ok := u.identity.UserID(ctx)
	if !ok {
		return domain.NoIdentity([]domain.LineItem{}), nil
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	items := u.carts[userID]
	if i := indexOfLine(items, product.ID); i >= 0 {
		if items[i].Quantity >= domain.MaxQuantity {
			return domain.Ok(cloneLines(items)), nil
		}
		items[i].Quantity++
	} else {
		items = append(items, domain.LineItem{Product: product.Clone(), Quantity: 1})
	}
	u.carts[userID] = items
	recordMutation(cartStore, "add")

	logger.WithContext(ctx).Debug().Str("user_id", userID).Str("product_id", product.ID.String()).Msg("Cart item added")
	return domain.Ok(cloneLines(items)), u.flushLocked(ctx)
}

// RemoveFromCart drops the line for productID. Absent lines are a no-op.
func (u *CartUsecase) RemoveFromCart(ctx context.Context, productID domain.ProductID) (domain.Outcome[[]domain.LineItem], error) {
	userID, ok := u.identity.UserID(ctx)
	if !ok {
		return domain.NoIdentity([]domain.LineItem{}), nil
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	items := u.carts[userID]
	i := indexOfLine(items, productID)
	if i < 0 {
		return domain.Ok(cloneLines(items)), nil
	}
	items = append(items[:i:i], items[i+1:]...)
	u.carts[userID] = items
	recordMutation(cartStore, "remove")

	return domain.Ok(cloneLines(items)), u.flushLocked(ctx)
}

// UpdateQuantity sets the line's quantity to quantity clamped into
// [1, MaxQuantity]. There is no remove-via-zero path; absent lines are a no-op.
func (u *CartUsecase) UpdateQuantity(ctx context.Context, productID domain.ProductID, quantity int) (domain.Outcome[[]domain.LineItem], error) {
	userID, ok := u.identity.UserID(ctx)
	if !ok {
		return domain.NoIdentity([]domain.LineItem{}), nil
	}
	quantity = clampQuantity(quantity)

	u.mu.Lock()
	defer u.mu.Unlock()

	items := u.carts[userID]
	i := indexOfLine(items, productID)
	if i < 0 || items[i].Quantity == quantity {
		return domain.Ok(cloneLines(items)), nil
	}
	items[i].Quantity = quantity
	recordMutation(cartStore, "update_quantity")

	return domain.Ok(cloneLines(items)), u.flushLocked(ctx)
}

// ClearCart empties the user's cart. Other users' carts are untouched.
func (u *CartUsecase) ClearCart(ctx context.Context) (domain.Outcome[[]domain.LineItem], error) {
	userID, ok := u.identity.UserID(ctx)
	if !ok {
		return domain.NoIdentity([]domain.LineItem{}), nil
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	u.carts[userID] = []domain.LineItem{}
	recordMutation(cartStore, "clear")

	return domain.Ok([]domain.LineItem{}), u.flushLocked(ctx)
}

// UserCart returns a copy of the user's lines, empty if they have none.
func (u *CartUsecase) UserCart(ctx context.Context) domain.Outcome[[]domain.LineItem] {
	userID, ok := u.identity.UserID(ctx)
	if !ok {
		return domain.NoIdentity([]domain.LineItem{})
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	return domain.Ok(cloneLines(u.carts[userID]))
}

// CartView is the user's cart together with its count and total, all read
// from the same state.
type CartView struct {
	Identified bool
	Items      []domain.LineItem
	Count      int
	Total      string
}

// View resolves the user once and reads lines, count and total under a
// single lock, so the three always agree.
func (u *CartUsecase) View(ctx context.Context) CartView {
	userID, ok := u.identity.UserID(ctx)
	if !ok {
		return CartView{Items: []domain.LineItem{}, Total: decimal.Zero.StringFixed(2)}
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	items := u.carts[userID]
	return CartView{
		Identified: true,
		Items:      cloneLines(items),
		Count:      itemCount(items),
		Total:      lineTotal(items).StringFixed(2),
	}
}

// CartItemCount is the sum of quantities in the user's cart.
func (u *CartUsecase) CartItemCount(ctx context.Context) domain.Outcome[int] {
	userID, ok := u.identity.UserID(ctx)
	if !ok {
		return domain.NoIdentity(0)
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	return domain.Ok(itemCount(u.carts[userID]))
}

func itemCount(items []domain.LineItem) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}

// CartTotal is the sum of price*quantity, as text with exactly two decimals.
func (u *CartUsecase) CartTotal(ctx context.Context) domain.Outcome[string] {
	userID, ok := u.identity.UserID(ctx)
	if !ok {
		return domain.NoIdentity(decimal.Zero.StringFixed(2))
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	return domain.Ok(lineTotal(u.carts[userID]).StringFixed(2))
}

func lineTotal(items []domain.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		price := decimal.NewFromFloat(item.Price)
		total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// Snapshot returns a deep copy of every user's cart.
func (u *CartUsecase) Snapshot() map[string][]domain.LineItem {
	u.mu.Lock()
	defer u.mu.Unlock()

	out := make(map[string][]domain.LineItem, len(u.carts))
	for userID, items := range u.carts {
		out[userID] = cloneLines(items)
	}
	return out
}

// flushLocked writes the whole mapping, all users included. Caller holds mu.
func (u *CartUsecase) flushLocked(ctx context.Context) error {
	return flushJSON(ctx, u.kv, cartStore, domain.KeyCart, u.carts)
}

func indexOfLine(items []domain.LineItem, id domain.ProductID) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func cloneLines(items []domain.LineItem) []domain.LineItem {
	out := make([]domain.LineItem, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out
}
