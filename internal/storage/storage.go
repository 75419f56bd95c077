package storage

import (
	"context" // Context for backend calls
	"errors"  // Sentinel errors
	"io"      // Streams
)

// Folders inside the asset store
const (
	FolderArtworks = "artworks" // Uploaded artwork images
	FolderSlips    = "slips"    // Uploaded payment slips
)

// ErrNotFound is returned by Open when the asset does not exist
var ErrNotFound = errors.New("asset not found")

// AssetStore keeps uploaded files addressed by folder and filename
type AssetStore interface {
	// Save writes r under folder/name, replacing any existing file.
	Save(ctx context.Context, folder, name string, r io.Reader, size int64, contentType string) error
	// Open returns a reader for folder/name or ErrNotFound.
	Open(ctx context.Context, folder, name string) (io.ReadCloser, error)
	// Remove deletes folder/name; removing a missing file is not an error.
	Remove(ctx context.Context, folder, name string) error
}

// ValidFolder reports whether folder is one of the asset folders
func ValidFolder(folder string) bool {
	return folder == FolderArtworks || folder == FolderSlips
}
