package repository

import "context"

// Session storage keys. One value per key per session; the composed key is
// "<prefix><session id>".
const (
	KeyPrefixCart     = "cart:"
	KeyPrefixToken    = "token:"
	KeyPrefixEmail    = "email:"
	KeyPrefixCheckout = "checkout:"
	KeyPrefixCatalog  = "catalog:"
)

// KeyValueStore is the session persistence bridge. Values are opaque strings;
// callers serialize and deserialize JSON themselves. A missing key reads as
// pkg/errors.ErrNotFound.
type KeyValueStore interface {
	// Read returns the value stored under key.
	Read(ctx context.Context, key string) (string, error)

	// Write stores value under key, overwriting any previous value.
	Write(ctx context.Context, key, value string) error

	// Remove deletes the key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}
