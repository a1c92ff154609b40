package imagestore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when an image key does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Resolver is an abstraction over image asset storage.
type Resolver interface {
	// URL resolves an image key to a renderable URL. Cloud backends
	// return a time-limited presigned GET URL.
	URL(ctx context.Context, key string) (string, error)

	// Put uploads an image under the given key. size may be -1 when
	// unknown.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Delete removes an image. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
