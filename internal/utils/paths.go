package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolvePath anchors a config path. Empty and absolute paths come back
// unchanged, "~/" expands to the home directory, and anything else is joined
// onto baseDir (the directory holding ocracle.yaml).
func ResolvePath(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return filepath.Join(baseDir, path)
}
