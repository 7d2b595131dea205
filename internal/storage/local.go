package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrS3NotConfigured is returned when sharing is attempted without a bucket.
var ErrS3NotConfigured = errors.New("S3 storage is not configured")

// LocalStorage keeps blobs in a directory on local disk.
// It cannot publish; wrap it with S3Storage for that.
type LocalStorage struct {
	dir string
}

// NewLocalStorage creates the directory if needed.
// If dir is empty, a "moodify" directory under os.TempDir() is used.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "moodify")
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create blob directory: %w", err)
	}

	return &LocalStorage{dir: dir}, nil
}

// Dir returns the blob directory.
func (s *LocalStorage) Dir() string {
	return s.dir
}

// SaveBlob writes data to a uniquely named file. The extension of name,
// if any, is kept so players recognise the format.
func (s *LocalStorage) SaveBlob(ctx context.Context, name string, data io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context cancelled: %w", err)
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(filepath.Base(name), ext)
	f, err := os.CreateTemp(s.dir, base+"_*"+ext)
	if err != nil {
		return "", fmt.Errorf("create blob: %w", err)
	}

	path := f.Name()
	if _, err := io.Copy(f, data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write blob: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close blob: %w", err)
	}

	return path, nil
}

// OpenBlob opens a blob for reading.
func (s *LocalStorage) OpenBlob(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	f, err := os.Open(path) // #nosec G304 - path comes from SaveBlob
	if err != nil {
		return nil, fmt.Errorf("open blob: %w", err)
	}
	return f, nil
}

// Revoke removes the given blobs. Missing files are ignored.
func (s *LocalStorage) Revoke(ctx context.Context, paths ...string) error {
	var firstErr error
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("context cancelled: %w", err)
		}
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = fmt.Errorf("remove blob %s: %w", p, err)
		}
	}
	return firstErr
}

// Publish is not supported by LocalStorage.
func (s *LocalStorage) Publish(_ context.Context, _ string, _ io.Reader, _ string) (string, error) {
	return "", ErrS3NotConfigured
}
