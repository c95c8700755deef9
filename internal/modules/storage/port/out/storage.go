package out

import "context"

// KVStore is a namespaced key-value backend. Get reports false for a missing
// key. SetMany writes all entries or none.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	SetMany(ctx context.Context, entries map[string][]byte) error
	Remove(ctx context.Context, keys ...string) error
}
