package fileutil

import (
	"os"
	"path/filepath"
	"strings"
)

// FindUp walks from start towards the filesystem root and returns the first directory
// containing an entry called marker. ok is false if no such directory exists.
func FindUp(start, marker string) (dir string, ok bool) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// IsURI returns true for paths that carry a scheme NewReader understands.
func IsURI(path string) bool {
	for _, scheme := range []string{"s3://", "http://", "https://", "file://"} {
		if strings.HasPrefix(path, scheme) {
			return true
		}
	}
	return false
}
