package usecase

import (
	"context"
	"sync"

	"storefront-backend/internal/domain"
	"storefront-backend/pkg/logger"
)

const (
	comparisonStore = "comparison"

	// DefaultComparisonLimit is how many products can be compared side by side.
	DefaultComparisonLimit = 4
)

// ComparisonUsecase is the session's bounded comparison list.
type ComparisonUsecase struct {
	mu    sync.Mutex
	kv    domain.KeyValueStore
	limit int
	items []domain.Product
}

// NewComparisonUsecase creates the comparison store and loads persisted state.
// A non-positive limit falls back to DefaultComparisonLimit.
func NewComparisonUsecase(ctx context.Context, kv domain.KeyValueStore, limit int) *ComparisonUsecase {
	if limit < 1 {
		limit = DefaultComparisonLimit
	}
	u := &ComparisonUsecase{kv: kv, limit: limit, items: []domain.Product{}}
	u.LoadComparisonList(ctx)
	return u
}

// LoadComparisonList re-reads the persisted list. Lists longer than the
// limit are cut down to the first entries.
func (u *ComparisonUsecase) LoadComparisonList(ctx context.Context) {
	var stored []domain.Product
	if !loadJSON(ctx, u.kv, domain.KeyComparison, &stored) {
		stored = nil
	}
	items := dedupProducts(stored)
	if len(items) > u.limit {
		logger.WithContext(ctx).Warn().Int("stored", len(items)).Int("limit", u.limit).Msg("Truncating persisted comparison list")
		items = items[:u.limit]
	}

	u.mu.Lock()
	u.items = items
	u.mu.Unlock()
}

// AddToComparison appends product when there is room and it is not already
// listed. Otherwise it silently does nothing. It reports whether it added.
func (u *ComparisonUsecase) AddToComparison(ctx context.Context, product domain.Product) (bool, error) {
	if err := product.Validate(); err != nil {
		return false, err
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if len(u.items) >= u.limit || indexOfProduct(u.items, product.ID) >= 0 {
		return false, nil
	}
	u.items = append(u.items, product.Clone())
	recordMutation(comparisonStore, "add")
	return true, flushJSON(ctx, u.kv, comparisonStore, domain.KeyComparison, u.items)
}

func (u *ComparisonUsecase) RemoveFromComparison(ctx context.Context, productID domain.ProductID) (bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	i := indexOfProduct(u.items, productID)
	if i < 0 {
		return false, nil
	}
	u.items = append(u.items[:i:i], u.items[i+1:]...)
	recordMutation(comparisonStore, "remove")
	return true, flushJSON(ctx, u.kv, comparisonStore, domain.KeyComparison, u.items)
}

// ClearComparison empties the list and deletes the persisted key entirely.
func (u *ComparisonUsecase) ClearComparison(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.items = []domain.Product{}
	recordMutation(comparisonStore, "clear")
	return removeKey(ctx, u.kv, comparisonStore, domain.KeyComparison)
}

func (u *ComparisonUsecase) IsInComparison(productID domain.ProductID) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return indexOfProduct(u.items, productID) >= 0
}

func (u *ComparisonUsecase) Items() []domain.Product {
	u.mu.Lock()
	defer u.mu.Unlock()
	return cloneProducts(u.items)
}

func (u *ComparisonUsecase) Count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.items)
}

func (u *ComparisonUsecase) Limit() int {
	return u.limit
}
