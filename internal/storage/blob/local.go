package blob

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore implements Store on the local filesystem. It exists for
// development and tests; object metadata is persisted as a sidecar JSON file.
type LocalStore struct {
	root string
}

// NewLocalStore creates a filesystem-backed blob store rooted at dir.
func NewLocalStore(dir string) (*LocalStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("local store directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &LocalStore{root: dir}, nil
}

func (s *LocalStore) path(key string) (string, error) {
	clean := filepath.Clean(strings.TrimLeft(key, "/"))
	if clean == "." || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid object key: %s", key)
	}
	return filepath.Join(s.root, clean), nil
}

// Put writes the object and its metadata sidecar.
func (s *LocalStore) Put(ctx context.Context, in PutInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(in.Key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create object directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create object file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, in.Body); err != nil {
		return fmt.Errorf("write object: %w", err)
	}

	if len(in.Metadata) > 0 || in.ContentType != "" {
		meta := map[string]any{
			"content_type": in.ContentType,
			"metadata":     in.Metadata,
		}
		data, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("encode metadata: %w", err)
		}
		if err := os.WriteFile(path+".meta.json", data, 0o644); err != nil {
			return fmt.Errorf("write metadata: %w", err)
		}
	}
	return nil
}

// Get opens a stored object for reading.
func (s *LocalStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open object %s: %w", key, err)
	}
	return f, nil
}

var _ Store = (*LocalStore)(nil)
