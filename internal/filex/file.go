package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// Exists reports whether path refers to an existing regular file.
// Directories do not count; any stat error is treated as "does not exist".
func Exists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// EnsureDir creates dir (and any missing parents) if needed. Relative paths
// are resolved against the current working directory and the absolute path
// is returned.
func EnsureDir(dir string) (string, error) {
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dir)
	}

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}
