package kvstore

import (
	"context"

	"storefront-backend/internal/domain"

	gocache "github.com/patrickmn/go-cache"
)

type memoryStore struct {
	store *gocache.Cache
}

// NewMemoryStore creates a process-local store. Entries never expire.
func NewMemoryStore() domain.KeyValueStore {
	return &memoryStore{
		store: gocache.New(gocache.NoExpiration, 0),
	}
}

func (s *memoryStore) Get(_ context.Context, key string) (string, bool, error) {
	v, found := s.store.Get(key)
	if !found {
		return "", false, nil
	}
	str, _ := v.(string)
	return str, true, nil
}

func (s *memoryStore) Set(_ context.Context, key, value string) error {
	s.store.Set(key, value, gocache.NoExpiration)
	return nil
}

func (s *memoryStore) Remove(_ context.Context, key string) error {
	s.store.Delete(key)
	return nil
}
