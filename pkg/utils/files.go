package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir creates a directory with all parent directories.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// DeleteFile removes a file, ignoring a missing one.
func DeleteFile(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// MoveFile moves or renames a file.
func MoveFile(src, dst string) error {
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("failed to move file from %s to %s: %w", src, dst, err)
	}
	return nil
}

// UniquePath returns path if it does not exist yet, otherwise appends
// a numeric suffix before the extension until it finds a free name.
func UniquePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	ext := filepath.Ext(path)
	base := path[:len(path)-len(ext)]
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s-%d%s", base, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
