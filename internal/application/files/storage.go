package files

import (
	"context"
	"io"
	"time"
)

// ObjectStorage is the blob store holding uploaded documents
type ObjectStorage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	// PresignGet returns a time-limited download URL and its expiry
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, time.Time, error)
	Delete(ctx context.Context, key string) error
}
