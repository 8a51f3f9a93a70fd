package kvstore

import (
	"context"

	"storefront-backend/internal/domain"
)

// namespaced confines a store to keys under one prefix, the way a browser
// confines local storage to one origin.
type namespaced struct {
	base   domain.KeyValueStore
	prefix string
}

// Namespace returns a view of base where every key is prefixed.
func Namespace(base domain.KeyValueStore, prefix string) domain.KeyValueStore {
	if prefix == "" {
		return base
	}
	return &namespaced{base: base, prefix: prefix}
}

// SessionPrefix is the namespace used for one client session.
func SessionPrefix(sessionID string) string {
	return "session:" + sessionID + ":"
}

func (n *namespaced) Get(ctx context.Context, key string) (string, bool, error) {
	return n.base.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key, value string) error {
	return n.base.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Remove(ctx context.Context, key string) error {
	return n.base.Remove(ctx, n.prefix+key)
}
