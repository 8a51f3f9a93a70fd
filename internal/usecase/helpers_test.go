package usecase

import (
	"context"
	"errors"
	"testing"

	"storefront-backend/internal/domain"
	"storefront-backend/internal/repository/kvstore"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// staticIdentity resolves every context to the same user (or to nobody).
type staticIdentity struct {
	userID string
}

func (s *staticIdentity) UserID(context.Context) (string, bool) {
	return s.userID, s.userID != ""
}

func (s *staticIdentity) HasCredential(context.Context) bool {
	return s.userID != ""
}

// alternatingIdentity answers each lookup with the next user in users.
type alternatingIdentity struct {
	users []string
	next  int
}

func (a *alternatingIdentity) UserID(context.Context) (string, bool) {
	id := a.users[a.next%len(a.users)]
	a.next++
	return id, true
}

func (a *alternatingIdentity) HasCredential(context.Context) bool {
	return true
}

var errBackendDown = errors.New("backend down")

// failingStore accepts reads but rejects every write.
type failingStore struct {
	domain.KeyValueStore
}

func (failingStore) Set(context.Context, string, string) error { return errBackendDown }
func (failingStore) Remove(context.Context, string) error      { return errBackendDown }

// brokenStore fails every call.
type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (string, bool, error) { return "", false, errBackendDown }
func (brokenStore) Set(context.Context, string, string) error         { return errBackendDown }
func (brokenStore) Remove(context.Context, string) error              { return errBackendDown }

func product(id string, price float64) domain.Product {
	return domain.Product{
		ID:         domain.ProductID(id),
		Price:      price,
		Attributes: map[string]any{"name": "Product " + id},
	}
}

func signedToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newKV() domain.KeyValueStore {
	return kvstore.NewMemoryStore()
}

func stored(t *testing.T, kv domain.KeyValueStore, key string) (string, bool) {
	t.Helper()
	v, found, err := kv.Get(context.Background(), key)
	require.NoError(t, err)
	return v, found
}
