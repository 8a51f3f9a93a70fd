package usecase

import (
	"context"
	"fmt"

	"storefront-backend/internal/domain"
	"storefront-backend/pkg/logger"
	"storefront-backend/pkg/metrics"

	"github.com/goccy/go-json"
)

// loadJSON decodes the value stored under key into dst. It reports false when
// the key is absent, unreadable or malformed; dst must then be ignored.
// A broken value is treated as "no prior state", never as an error.
func loadJSON(ctx context.Context, kv domain.KeyValueStore, key string, dst any) bool {
	raw, found, err := kv.Get(ctx, key)
	if err != nil {
		logger.WithContext(ctx).Warn().Err(err).Str("key", key).Msg("Failed to read persisted state, starting empty")
		return false
	}
	if !found || raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		metrics.MalformedState.WithLabelValues(key).Inc()
		logger.WithContext(ctx).Warn().Err(err).Str("key", key).Msg("Discarding malformed persisted state")
		return false
	}
	return true
}

// flushJSON writes the JSON form of v under key.
func flushJSON(ctx context.Context, kv domain.KeyValueStore, store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", domain.ErrPersist, key, err)
	}
	return flushRaw(ctx, kv, store, key, string(data))
}

func flushRaw(ctx context.Context, kv domain.KeyValueStore, store, key, value string) error {
	if err := kv.Set(ctx, key, value); err != nil {
		metrics.FlushErrors.WithLabelValues(store).Inc()
		logger.WithContext(ctx).Error().Err(err).Str("store", store).Str("key", key).Msg("Failed to flush state")
		return fmt.Errorf("%w: write %s: %w", domain.ErrPersist, key, err)
	}
	return nil
}

func removeKey(ctx context.Context, kv domain.KeyValueStore, store, key string) error {
	if err := kv.Remove(ctx, key); err != nil {
		metrics.FlushErrors.WithLabelValues(store).Inc()
		logger.WithContext(ctx).Error().Err(err).Str("store", store).Str("key", key).Msg("Failed to remove state")
		return fmt.Errorf("%w: remove %s: %w", domain.ErrPersist, key, err)
	}
	return nil
}

func recordMutation(store, op string) {
	metrics.StoreMutations.WithLabelValues(store, op).Inc()
}

func indexOfProduct(products []domain.Product, id domain.ProductID) int {
	for i, p := range products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func cloneProducts(products []domain.Product) []domain.Product {
	out := make([]domain.Product, len(products))
	for i, p := range products {
		out[i] = p.Clone()
	}
	return out
}

// dedupProducts keeps the first occurrence of every id, preserving order.
func dedupProducts(products []domain.Product) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	seen := make(map[domain.ProductID]struct{}, len(products))
	for _, p := range products {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}
