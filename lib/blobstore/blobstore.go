package blobstore

import "context"

// Store is the remote object store activity photos are offloaded to.
// A nil Store disables offloading without affecting anything else.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// List returns the keys of every stored object under prefix.
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
	// ObjectURL reconstructs the public URL an object is served under.
	// It is pure, the object does not have to exist.
	ObjectURL(key string) string
}
