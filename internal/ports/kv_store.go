package ports

import "context"

// Port: small persistent user state (preferences, prayer log).
type KeyValueStore interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Delete is a no-op for missing keys.
	Delete(ctx context.Context, key string) error
}
