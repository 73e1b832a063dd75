package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	derrors "github.com/matzehuels/deliverynote/pkg/errors"
)

// Saver stores a finished export under a file name.
type Saver interface {
	Save(ctx context.Context, name string, data []byte) error
}

// SaverFunc adapts a function to [Saver].
type SaverFunc func(ctx context.Context, name string, data []byte) error

// Save calls f.
func (f SaverFunc) Save(ctx context.Context, name string, data []byte) error {
	return f(ctx, name, data)
}

// FileSaver writes exports into Dir. Files are written to a temporary name
// and renamed into place, so a failed save leaves nothing behind.
type FileSaver struct {
	Dir string
}

// Save writes data to Dir/name. Names that are not a single file name are
// rejected.
func (s FileSaver) Save(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := derrors.ValidateFilename(name); err != nil {
		return err
	}
	dir := s.dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".export-*")
	if err != nil {
		return err
	}
	cleanup := func() { _ = os.Remove(tmp.Name()) }
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmp.Name(), s.Path(name)); err != nil {
		cleanup()
		return err
	}
	return nil
}

// Path returns where Save stores name.
func (s FileSaver) Path(name string) string {
	return filepath.Join(s.dir(), name)
}

func (s FileSaver) dir() string {
	if s.Dir == "" {
		return "."
	}
	return s.Dir
}

var _ Saver = FileSaver{}
