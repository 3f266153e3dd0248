package kv

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File stores the blob as a single file on disk.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile creates a file-backed blob at path. The parent directory is
// created on first save.
func NewFile(path string) *File {
	return &File{path: path}
}

// Load reads the file, returning (nil, nil) if it does not exist.
func (f *File) Load() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading blob file: %w", err)
	}
	return data, nil
}

// Save writes the blob atomically via a temp file rename.
func (f *File) Save(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating blob directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing blob file: %w", err)
	}
	return nil
}

// Close is a no-op for file blobs.
func (f *File) Close() error { return nil }
