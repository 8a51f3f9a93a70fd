package domain

import "context"

// Persisted keys. Each store owns exactly one of them; KeyToken is written
// by the login surface and only read by the credential reader.
const (
	KeyCart       = "cart"
	KeyWishlist   = "wishlist"
	KeyComparison = "comparisonList"
	KeyTheme      = "theme"
	KeyToken      = "token"
)

// KeyValueStore is the string-keyed persistent store the state containers mirror into.
type KeyValueStore interface {
	// Get returns the stored value and true, or "", false when the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Remove deletes the key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}
