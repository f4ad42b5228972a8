package storage

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const defaultScope = "default"

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// FindProjectRoot walks up from dir looking for a .git directory.
// Returns the directory containing .git and true, or "" and false.
func FindProjectRoot(dir string) (string, bool) {
	for {
		info, err := os.Stat(filepath.Join(dir, ".git"))
		if err == nil && info.IsDir() {
			return dir, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// SanitizePath converts an absolute path to a safe directory name.
// "/Users/abatilo/myproject" -> "Users-abatilo-myproject"
func SanitizePath(path string) string {
	result := strings.TrimPrefix(path, "/")
	result = nonAlphanumeric.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// ScopeDir returns the directory name tasks live under for work done in cwd:
// the sanitized git root, or "default" outside a repository.
func ScopeDir(cwd string) string {
	root, ok := FindProjectRoot(cwd)
	if !ok {
		return defaultScope
	}
	if s := SanitizePath(root); s != "" {
		return s
	}
	return defaultScope
}
