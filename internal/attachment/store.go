package attachment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrNotFound is returned when no image is stored under a key.
var ErrNotFound = errors.New("attachment not found")

// Store keeps processed images by key.
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// Key names the object for a completion's image slot.
func Key(completionID int64, slot int) string {
	return fmt.Sprintf("completions/%d/%d.jpg", completionID, slot)
}

// DirStore keeps images as files below a root directory.
type DirStore struct {
	root string
}

func NewDirStore(root string) (*DirStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create attachment dir: %w", err)
	}
	return &DirStore{root: root}, nil
}

func (s *DirStore) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(filepath.Clean("/" + key)))
}

// Put writes data through a temporary file so readers never see a partial
// image.
func (s *DirStore) Put(_ context.Context, key string, data []byte) error {
	dst := s.path(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write attachment: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close attachment: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("rename attachment: %w", err)
	}
	return nil
}

func (s *DirStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open attachment: %w", err)
	}
	return f, nil
}
