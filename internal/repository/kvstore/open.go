package kvstore

import (
	"context"
	"fmt"

	"storefront-backend/config"
	"storefront-backend/internal/domain"
	"storefront-backend/pkg/storage"
)

// Open builds the backend selected by cfg.KVDriver. The returned close
// function releases it and is never nil.
func Open(ctx context.Context, cfg *config.Config) (domain.KeyValueStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.KVDriver {
	case config.DriverMemory, "":
		return NewMemoryStore(), noop, nil

	case config.DriverBadger:
		s, err := OpenBadger(DefaultBadgerConfig(cfg.BadgerPath))
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil

	case config.DriverPostgres:
		pool, err := NewPgxPool(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		s := NewPostgresStore(pool)
		if err := s.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, noop, err
		}
		return s, func() error { pool.Close(); return nil }, nil

	case config.DriverR2:
		r2, err := storage.NewR2Storage(ctx,
			cfg.R2AccountID,
			cfg.R2AccessKeyID,
			cfg.R2AccessKeySecret,
			cfg.R2BucketName,
			cfg.R2Timeout,
		)
		if err != nil {
			return nil, noop, fmt.Errorf("init r2 storage: %w", err)
		}
		return NewObjectStore(r2, cfg.R2Prefix), noop, nil
	}

	return nil, noop, fmt.Errorf("unknown KV driver %q", cfg.KVDriver)
}
