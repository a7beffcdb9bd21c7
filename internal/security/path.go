// Package security provides shared path validation for served files.
package security

import (
	"errors"
	"path"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned for request paths that escape the served root.
var ErrOutsideRoot = errors.New("path escapes root directory")

// ResolvePath maps a slash-separated URL path onto a file below root. It
// rejects paths that would leave root after cleaning and paths containing
// NUL bytes.
func ResolvePath(root, urlPath string) (string, error) {
	if strings.ContainsRune(urlPath, 0) {
		return "", errors.New("path contains NUL byte")
	}
	// Reject traversal before cleaning hides it.
	for _, seg := range strings.Split(urlPath, "/") {
		if seg == ".." {
			return "", ErrOutsideRoot
		}
	}
	clean := path.Clean("/" + urlPath)
	full := filepath.Join(root, filepath.FromSlash(clean))

	rel, err := filepath.Rel(root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return full, nil
}

// IsHidden reports whether any segment of a slash-separated path starts
// with a dot.
func IsHidden(urlPath string) bool {
	for _, seg := range strings.Split(urlPath, "/") {
		if strings.HasPrefix(seg, ".") && seg != "." {
			return true
		}
	}
	return false
}
