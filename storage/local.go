package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Local stores blobs in a single flat directory
type Local struct {
	dir string
}

func NewLocal(dir string) (*Local, error) {
	if dir == "" {
		return nil, errors.New("storage directory can't be empty")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory, %w", err)
	}

	return &Local{dir: dir}, nil
}

func (l *Local) Store(ctx context.Context, r io.Reader, originalName string) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	name, err := GenerateName(originalName)
	if err != nil {
		return "", 0, err
	}

	// O_EXCL so a name is never written twice even if generation ever collided
	f, err := os.OpenFile(filepath.Join(l.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create blob, %w", err)
	}

	n, err := io.Copy(f, r)
	if err == nil {
		err = f.Sync()
	}

	if cerr := f.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		if rmErr := os.Remove(f.Name()); rmErr != nil {
			zap.L().Warn("Failed to remove partially written blob", zap.String("name", name), zap.Error(rmErr))
		}

		return "", 0, fmt.Errorf("failed to write blob, %w", err)
	}

	return name, n, nil
}

func (l *Local) Retrieve(ctx context.Context, storedName string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !validName(storedName) {
		return nil, ErrMissing
	}

	f, err := os.Open(filepath.Join(l.dir, storedName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrMissing
		}

		return nil, fmt.Errorf("failed to open blob, %w", err)
	}

	return f, nil
}

func (l *Local) Delete(ctx context.Context, storedName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !validName(storedName) {
		return ErrMissing
	}

	err := os.Remove(filepath.Join(l.dir, storedName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrMissing
		}

		return fmt.Errorf("failed to delete blob, %w", err)
	}

	return nil
}
