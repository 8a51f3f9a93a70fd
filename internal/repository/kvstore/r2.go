package kvstore

import (
	"context"
	"time"

	"storefront-backend/internal/domain"
	"storefront-backend/pkg/logger"
	"storefront-backend/pkg/storage"
)

// ObjectStorage is the subset of pkg/storage.R2Storage the store needs.
type ObjectStorage interface {
	GetObject(ctx context.Context, key string) ([]byte, bool, error)
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	DeleteObject(ctx context.Context, key string) error
}

// ObjectStore keeps each key as one object under prefix. Object names are
// normalized with storage.ObjectKey.
type ObjectStore struct {
	objects ObjectStorage
	prefix  string
}

func NewObjectStore(objects ObjectStorage, prefix string) *ObjectStore {
	return &ObjectStore{objects: objects, prefix: prefix}
}

func (s *ObjectStore) objectKey(key string) (string, error) {
	return storage.ObjectKey(s.prefix + key)
}

func (s *ObjectStore) Get(ctx context.Context, key string) (string, bool, error) {
	name, err := s.objectKey(key)
	if err != nil {
		return "", false, err
	}
	start := time.Now()
	data, found, err := s.objects.GetObject(ctx, name)
	logger.KVQuery(ctx, "r2", "get", key, time.Since(start), err)
	if err != nil || !found {
		return "", false, err
	}
	return string(data), true, nil
}

func (s *ObjectStore) Set(ctx context.Context, key, value string) error {
	name, err := s.objectKey(key)
	if err != nil {
		return err
	}
	start := time.Now()
	err = s.objects.PutObject(ctx, name, []byte(value), "application/json")
	logger.KVQuery(ctx, "r2", "set", key, time.Since(start), err)
	return err
}

func (s *ObjectStore) Remove(ctx context.Context, key string) error {
	name, err := s.objectKey(key)
	if err != nil {
		return err
	}
	start := time.Now()
	err = s.objects.DeleteObject(ctx, name)
	logger.KVQuery(ctx, "r2", "remove", key, time.Since(start), err)
	return err
}

var (
	_ domain.KeyValueStore = (*ObjectStore)(nil)
	_ ObjectStorage        = (*storage.R2Storage)(nil)
)
