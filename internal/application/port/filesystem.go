package port

import (
	"context"
	"io"
)

// FileSystem is the slice of the OS filesystem that download preparation
// and transfers need.
type FileSystem interface {
	// Exists reports whether path exists. Errors other than not-exist are returned.
	Exists(ctx context.Context, path string) (bool, error)
	MkdirAll(ctx context.Context, path string) error
	// Create opens path for writing, truncating any existing file.
	Create(ctx context.Context, path string) (io.WriteCloser, error)
	// Remove deletes one file. A missing file is not an error.
	Remove(ctx context.Context, path string) error
}
