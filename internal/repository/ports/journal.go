package ports

import "context"

// Journal persists named collections as opaque blobs, read and written whole.
// Load returns a nil slice for a collection that was never stored.
type Journal interface {
	Load(ctx context.Context, collection string) ([]byte, error)
	Store(ctx context.Context, collection string, payload []byte) error
	Close() error
}
