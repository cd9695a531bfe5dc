// Package file implements the local filesystem datasource: opening batch
// files and discovering base and incremental batches on disk.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Local is a filesystem data source that opens one file from local disk.
type Local struct{ path string }

// NewLocal returns a Local data source bound to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Open opens the configured path for reading. If ctx is already canceled the
// context error is returned without touching the filesystem. Filesystem
// errors are wrapped with the path while keeping errors.Is(err,
// os.ErrNotExist) working for callers.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}
