// Package filesystem implements port.FileSystem on top of the os package.
package filesystem

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/bnema/pagekit/internal/application/port"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Adapter is the OS-backed port.FileSystem.
type Adapter struct{}

var _ port.FileSystem = (*Adapter)(nil)

// New returns an OS filesystem adapter.
func New() *Adapter {
	return &Adapter{}
}

func (*Adapter) Exists(_ context.Context, path string) (bool, error) {
	switch _, err := os.Stat(path); {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

func (*Adapter) MkdirAll(_ context.Context, path string) error {
	return os.MkdirAll(path, dirPerm)
}

func (*Adapter) Create(_ context.Context, path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm)
}

func (*Adapter) Remove(_ context.Context, path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
