package utils

import (
	"fmt"     // Formatting
	"strings" // String manipulation

	"github.com/google/uuid" // Unique identifiers
)

// DefaultExtension is used when the uploaded filename has no extension
const DefaultExtension = "jpg"

// FileExtension returns the lowercase text after the last dot of filename, or jpg
func FileExtension(filename string) string {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return DefaultExtension
	}
	ext := strings.ToLower(filename[i+1:])
	// Keep the extension a plain token so it cannot smuggle path separators
	if ext == "" || strings.ContainsAny(ext, `/\`) {
		return DefaultExtension
	}
	return ext
}

// ArtworkFilename names an uploaded artwork image: <uuid>.<ext>
func ArtworkFilename(original string) string {
	return uuid.NewString() + "." + FileExtension(original)
}

// SlipFilename names an uploaded payment slip: SLIP_<artworkID>_<uuid>.<ext>
func SlipFilename(artworkID uint, original string) string {
	return fmt.Sprintf("SLIP_%d_%s.%s", artworkID, uuid.NewString(), FileExtension(original))
}
