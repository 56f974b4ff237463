package catalog

import (
	"fmt"
	"path/filepath"
	"strings"
)

var allowedImageExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// ValidateImageExtension checks a photo filename and returns its content type.
func ValidateImageExtension(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	if ext == "" {
		return "", fmt.Errorf("%w: file extension missing", ErrInvalidPhoto)
	}

	contentType, ok := allowedImageExt[ext]
	if !ok {
		return "", fmt.Errorf("%w: file type not allowed", ErrInvalidPhoto)
	}

	return contentType, nil
}

// NormalizeName is the canonical form used for name lookups.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
