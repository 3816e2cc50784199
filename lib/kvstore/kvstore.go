package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been written
// or has been deleted.
var ErrNotFound = errors.New("kvstore: key not found")

// Store is the key-value cache the service keeps its records and its
// single credential slot in. Values are opaque strings, last writer wins.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// Scan returns every key starting with prefix, in no particular order.
	Scan(ctx context.Context, prefix string) ([]string, error)
	Close() error
}
