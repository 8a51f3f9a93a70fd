package usecase

import (
	"context"
	"fmt"
	"time"

	"storefront-backend/internal/domain"
	"storefront-backend/internal/repository/kvstore"
	"storefront-backend/pkg/cache"
	"storefront-backend/pkg/logger"
	"storefront-backend/pkg/metrics"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// SessionOptions tune the stores built for each session.
type SessionOptions struct {
	ComparisonLimit  int
	CredentialSecret string
}

// Session bundles one client's stores over that client's key namespace.
// It is created once and handed to every consumer by reference.
type Session struct {
	ID          string
	Credentials *CredentialUsecase
	Cart        *CartUsecase
	Wishlist    *WishlistUsecase
	Comparison  *ComparisonUsecase
	Theme       *ThemeUsecase
	Navigation  *NavigationUsecase
}

// NewSession builds every store for one session and loads its persisted state.
func NewSession(ctx context.Context, id string, kv domain.KeyValueStore, opts SessionOptions) *Session {
	creds := NewCredentialUsecase(kv, opts.CredentialSecret)
	return &Session{
		ID:          id,
		Credentials: creds,
		Cart:        NewCartUsecase(ctx, kv, creds),
		Wishlist:    NewWishlistUsecase(ctx, kv),
		Comparison:  NewComparisonUsecase(ctx, kv, opts.ComparisonLimit),
		Theme:       NewThemeUsecase(ctx, kv),
		Navigation:  NewNavigationUsecase(creds, domain.Routes),
	}
}

// SessionManager hands out sessions by id, keeping recently used ones in memory.
// Concurrent opens of the same uncached id share one build; builds for
// different ids run in parallel.
type SessionManager struct {
	flight singleflight.Group
	base   domain.KeyValueStore
	cache  cache.CacheService
	ttl    time.Duration
	opts   SessionOptions
}

func NewSessionManager(base domain.KeyValueStore, sessions cache.CacheService, ttl time.Duration, opts SessionOptions) *SessionManager {
	return &SessionManager{
		base:  base,
		cache: sessions,
		ttl:   ttl,
		opts:  opts,
	}
}

// Open returns the session for id, building it from the backend when it is
// not in memory. Each access extends the in-memory lifetime.
func (m *SessionManager) Open(ctx context.Context, id string) (*Session, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSession, err)
	}
	id = parsed.String()

	if s, ok := m.cached(id); ok {
		m.cache.Set(id, s, m.ttl)
		return s, nil
	}

	v, err, _ := m.flight.Do(id, func() (interface{}, error) {
		if s, ok := m.cached(id); ok {
			return s, nil
		}
		s := NewSession(ctx, id, kvstore.Namespace(m.base, kvstore.SessionPrefix(id)), m.opts)
		s.Theme.Subscribe(func(theme domain.Theme) {
			logger.Debug().Str("session_id", id).Str("theme", string(theme)).Bool("dark", theme.IsDark()).Msg("Theme applied")
		})
		m.cache.Set(id, s, m.ttl)
		logger.WithContext(ctx).Debug().Str("session_id", id).Msg("Session opened")
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

func (m *SessionManager) cached(id string) (*Session, bool) {
	v, found := m.cache.Get(id)
	if !found {
		return nil, false
	}
	s, ok := v.(*Session)
	return s, ok
}

// New starts a session with a fresh random id.
func (m *SessionManager) New(ctx context.Context) (*Session, error) {
	return m.Open(ctx, uuid.NewString())
}

// Forget drops the in-memory session. Persisted state is kept.
func (m *SessionManager) Forget(id string) {
	m.cache.Delete(id)
}

// Count is the number of sessions held in memory.
func (m *SessionManager) Count() int {
	return m.cache.ItemCount()
}

// RegisterMetrics exposes Count as a gauge.
func (m *SessionManager) RegisterMetrics() error {
	return metrics.RegisterSessionGauge(m.Count)
}
