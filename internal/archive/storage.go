package archive

import (
	"context"
	"io"
	"time"

	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/archive/drivers"
)

var (
	// ErrObjectNotFound is returned by drivers when a key has no stored object.
	ErrObjectNotFound = drivers.ErrNotFound
	// ErrInvalidKey is returned for keys that escape the storage root.
	ErrInvalidKey = drivers.ErrInvalidKey
)

// StorageDriver defines how archived reports reach the blob store
type StorageDriver interface {
	// Save writes the content under key
	Save(ctx context.Context, key string, body io.Reader, contentType string) error

	// Get returns a ReadCloser to stream the object back and its content type
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)

	// Delete removes the object
	Delete(ctx context.Context, key string) error

	// GenerateURL returns a download URL, presigned for expires when the store needs it
	GenerateURL(ctx context.Context, key string, expires time.Duration) (string, error)
}
