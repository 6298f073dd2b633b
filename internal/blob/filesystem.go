package blob

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"shoplist/internal/shop"
)

// FileSystemStore is a filesystem-backed BlobStore. Keys map directly to
// paths under the root directory; writes are atomic (temp file + rename).
type FileSystemStore struct {
	root string
}

// NewFileSystemStore creates a store rooted at the given directory,
// creating it if needed.
func NewFileSystemStore(root string) (*FileSystemStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating blob root: %w", err)
	}
	return &FileSystemStore{root: root}, nil
}

// Put writes the blob at key, replacing any existing blob.
func (s *FileSystemStore) Put(_ context.Context, key string, r io.Reader) error {
	destPath := s.path(key)
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return &shop.StorageError{Op: "put", Key: key, Err: err}
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-*")
	if err != nil {
		return &shop.StorageError{Op: "put", Key: key, Err: err}
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmpFile, r); err != nil {
		tmpFile.Close()
		return &shop.StorageError{Op: "put", Key: key, Err: err}
	}
	if err := tmpFile.Close(); err != nil {
		return &shop.StorageError{Op: "put", Key: key, Err: err}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return &shop.StorageError{Op: "put", Key: key, Err: err}
	}

	success = true
	return nil
}

// Get reads the blob at key into w.
func (s *FileSystemStore) Get(_ context.Context, key string, w io.Writer) error {
	f, err := os.Open(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("blob %s: %w", key, shop.ErrNotFound)
		}
		return &shop.StorageError{Op: "get", Key: key, Err: err}
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return &shop.StorageError{Op: "get", Key: key, Err: err}
	}
	return nil
}

// Delete removes the blob at key. Absent keys are a no-op.
func (s *FileSystemStore) Delete(_ context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return &shop.StorageError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

// List returns every key starting with prefix. A prefix with no blobs
// yields an empty slice.
func (s *FileSystemStore) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() || d.Name()[0] == '.' {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, &shop.StorageError{Op: "list", Key: prefix, Err: err}
	}
	return keys, nil
}

// ValidateSetup verifies that the root directory is accessible.
func (s *FileSystemStore) ValidateSetup(_ context.Context) error {
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("blob root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("blob root is not a directory: %s", s.root)
	}
	return nil
}

func (s *FileSystemStore) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

// Compile-time check that FileSystemStore implements shop.BlobStore
var _ shop.BlobStore = (*FileSystemStore)(nil)
