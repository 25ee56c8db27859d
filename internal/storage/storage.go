package storage

import (
	"context"
	"io"
)

// SaveResult reports what was actually persisted: the byte count and content
// hash are computed from the written stream, never from client-declared
// values.
type SaveResult struct {
	Path        string
	Size        int64
	ContentHash string // sha256, hex
}

// Storage persists file blobs under opaque stored names. Implementations
// must write durably before returning from Save; the database row for an
// upload is only created afterwards.
type Storage interface {
	Save(ctx context.Context, storedName string, r io.Reader) (*SaveResult, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
}
