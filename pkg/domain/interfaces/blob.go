package interfaces

import "context"

// BlobStore is a durable key-value store holding opaque blobs
type BlobStore interface {
	// Get returns the blob stored under key. Returns nil, nil when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the blob stored under key
	Put(ctx context.Context, key string, data []byte) error

	Close() error
}
