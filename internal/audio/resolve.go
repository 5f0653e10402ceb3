package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrFileNotFound means an input file does not exist or is not a regular file.
var ErrFileNotFound = errors.New("file not found")

// ResolveFile checks that path names an existing regular file and returns
// it cleaned. Errors wrap ErrFileNotFound so callers can treat them as
// input errors.
func ResolveFile(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: empty path", ErrFileNotFound)
	}
	full := filepath.Clean(path)
	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s is not a regular file", ErrFileNotFound, path)
	}
	return full, nil
}
