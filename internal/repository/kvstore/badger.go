package kvstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"storefront-backend/internal/domain"
	"storefront-backend/pkg/logger"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// BadgerConfig holds configuration for the embedded BadgerDB backend.
type BadgerConfig struct {
	// Path is the directory for BadgerDB files. Ignored when InMemory is true.
	Path string

	// InMemory keeps everything in RAM. Used by tests.
	InMemory bool

	// SyncWrites fsyncs every write.
	SyncWrites bool

	// GCInterval is how often value log GC runs; 0 disables it.
	GCInterval time.Duration

	// GCDiscardRatio is the minimum discardable fraction before a value log file is rewritten.
	GCDiscardRatio float64
}

func DefaultBadgerConfig(path string) BadgerConfig {
	return BadgerConfig{
		Path:           path,
		SyncWrites:     true,
		GCInterval:     5 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

func InMemoryBadgerConfig() BadgerConfig {
	return BadgerConfig{InMemory: true}
}

// badgerLogger adapts zerolog to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *zerolog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// BadgerStore is a KeyValueStore on an embedded BadgerDB.
type BadgerStore struct {
	db     *badger.DB
	cancel context.CancelFunc
	done   chan struct{}
}

// OpenBadger opens (creating if needed) a BadgerDB and starts value log GC.
// Callers must Close the returned store.
func OpenBadger(cfg BadgerConfig) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites).
		WithNumVersionsToKeep(1).
		WithLogger(&badgerLogger{logger: logger.Get()})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &BadgerStore{db: db, cancel: cancel, done: make(chan struct{})}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		go s.gcLoop(ctx, cfg.GCInterval, cfg.GCDiscardRatio)
	} else {
		close(s.done)
	}
	return s, nil
}

func (s *BadgerStore) gcLoop(ctx context.Context, interval time.Duration, ratio float64) {
	defer close(s.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// RunValueLogGC rewrites at most one file per call; loop until nothing is left.
			for s.db.RunValueLogGC(ratio) == nil {
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *BadgerStore) Get(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		logger.KVQuery(ctx, "badger", "get", key, time.Since(start), nil)
		return "", false, nil
	}
	logger.KVQuery(ctx, "badger", "get", key, time.Since(start), err)
	if err != nil {
		return "", false, fmt.Errorf("badger get %s: %w", key, err)
	}
	return string(value), true, nil
}

func (s *BadgerStore) Set(ctx context.Context, key, value string) error {
	start := time.Now()
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
	logger.KVQuery(ctx, "badger", "set", key, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("badger set %s: %w", key, err)
	}
	return nil
}

func (s *BadgerStore) Remove(ctx context.Context, key string) error {
	start := time.Now()
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	logger.KVQuery(ctx, "badger", "remove", key, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("badger remove %s: %w", key, err)
	}
	return nil
}

// Close stops GC and closes the database.
func (s *BadgerStore) Close() error {
	s.cancel()
	<-s.done
	return s.db.Close()
}

var _ domain.KeyValueStore = (*BadgerStore)(nil)
