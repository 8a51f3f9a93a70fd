package usecase

import (
	"context"
	"testing"

	"storefront-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWishlistAddDeduplicates(t *testing.T) {
	ctx := context.Background()
	kv := newKV()
	w := NewWishlistUsecase(ctx, kv)

	added, err := w.AddToWishlist(ctx, product("1", 10))
	require.NoError(t, err)
	assert.True(t, added)

	added, err = w.AddToWishlist(ctx, product("1", 10))
	require.NoError(t, err)
	assert.False(t, added)

	assert.Equal(t, 1, w.Count())
	assert.True(t, w.IsInWishlist("1"))
	assert.False(t, w.IsInWishlist("2"))

	raw, found := stored(t, kv, domain.KeyWishlist)
	require.True(t, found)
	assert.JSONEq(t, `[{"id":"1","price":10,"name":"Product 1"}]`, raw)
}

func TestWishlistRemove(t *testing.T) {
	ctx := context.Background()
	kv := newKV()
	w := NewWishlistUsecase(ctx, kv)
	for _, id := range []string{"1", "2", "3"} {
		_, err := w.AddToWishlist(ctx, product(id, 1))
		require.NoError(t, err)
	}

	removed, err := w.RemoveFromWishlist(ctx, "9")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 3, w.Count())

	removed, err = w.RemoveFromWishlist(ctx, "2")
	require.NoError(t, err)
	assert.True(t, removed)

	items := w.Items()
	require.Len(t, items, 2)
	assert.Equal(t, domain.ProductID("1"), items[0].ID)
	assert.Equal(t, domain.ProductID("3"), items[1].ID)
}

func TestWishlistClearStoresEmptyList(t *testing.T) {
	ctx := context.Background()
	kv := newKV()
	w := NewWishlistUsecase(ctx, kv)
	_, err := w.AddToWishlist(ctx, product("1", 1))
	require.NoError(t, err)

	require.NoError(t, w.ClearWishlist(ctx))
	assert.Zero(t, w.Count())

	raw, found := stored(t, kv, domain.KeyWishlist)
	require.True(t, found)
	assert.Equal(t, "[]", raw)
}

func TestWishlistLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("restores order and drops duplicates", func(t *testing.T) {
		kv := newKV()
		require.NoError(t, kv.Set(ctx, domain.KeyWishlist, `[{"id":2,"price":1},{"id":"1","price":3},{"id":"2","price":1}]`))

		items := NewWishlistUsecase(ctx, kv).Items()
		require.Len(t, items, 2)
		assert.Equal(t, domain.ProductID("2"), items[0].ID)
		assert.Equal(t, domain.ProductID("1"), items[1].ID)
	})

	t.Run("malformed value starts empty", func(t *testing.T) {
		kv := newKV()
		require.NoError(t, kv.Set(ctx, domain.KeyWishlist, `{"oops":`))
		assert.Zero(t, NewWishlistUsecase(ctx, kv).Count())
	})

	t.Run("wrong shape starts empty", func(t *testing.T) {
		kv := newKV()
		require.NoError(t, kv.Set(ctx, domain.KeyWishlist, `{"id":"1"}`))
		assert.Zero(t, NewWishlistUsecase(ctx, kv).Count())
	})
}

func TestWishlistRejectsInvalidProduct(t *testing.T) {
	ctx := context.Background()
	w := NewWishlistUsecase(ctx, newKV())

	added, err := w.AddToWishlist(ctx, domain.Product{})
	assert.ErrorIs(t, err, domain.ErrInvalidProduct)
	assert.False(t, added)
}

func TestWishlistFlushFailure(t *testing.T) {
	ctx := context.Background()
	w := NewWishlistUsecase(ctx, failingStore{KeyValueStore: newKV()})

	added, err := w.AddToWishlist(ctx, product("1", 1))
	assert.True(t, added)
	assert.ErrorIs(t, err, domain.ErrPersist)
	assert.True(t, w.IsInWishlist("1"))
}
