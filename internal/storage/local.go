package storage

import (
	"context"       // Context for interface compatibility
	"errors"        // Error inspection
	"fmt"           // Error wrapping
	"io"            // Streams
	"io/fs"         // fs.ErrNotExist
	"os"            // File operations
	"path/filepath" // Path handling
)

// LocalStore keeps assets on the local filesystem under Root/<folder>/<name>
type LocalStore struct {
	Root string
}

// NewLocalStore creates the folder layout under root
func NewLocalStore(root string) (*LocalStore, error) {
	for _, folder := range []string{FolderArtworks, FolderSlips} {
		if err := os.MkdirAll(filepath.Join(root, folder), 0o755); err != nil {
			return nil, fmt.Errorf("create asset folder %s: %w", folder, err)
		}
	}
	return &LocalStore{Root: root}, nil
}

// path resolves folder/name, rejecting names that would escape the folder
func (s *LocalStore) path(folder, name string) (string, error) {
	if !ValidFolder(folder) {
		return "", fmt.Errorf("unknown asset folder %q", folder)
	}
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid asset name %q", name)
	}
	return filepath.Join(s.Root, folder, name), nil
}

// Save writes the file through a temp file and renames it into place
func (s *LocalStore) Save(_ context.Context, folder, name string, r io.Reader, _ int64, _ string) error {
	dst, err := s.path(folder, name)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), dst)
}

// Open opens the stored file for reading
func (s *LocalStore) Open(_ context.Context, folder, name string) (io.ReadCloser, error) {
	p, err := s.path(folder, name)
	if err != nil {
		return nil, ErrNotFound
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

// Remove deletes the stored file
func (s *LocalStore) Remove(_ context.Context, folder, name string) error {
	p, err := s.path(folder, name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
