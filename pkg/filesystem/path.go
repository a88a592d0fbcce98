package filesystem

import (
	"fmt"
	"strings"
	"unicode"
)

// NormalizePath turns a user supplied path into the canonical relative form
// used by adapters: '/' separators, no leading or trailing slash, no empty or
// "." segments and every ".." resolved.
//
// A ".." that would climb above the root returns ErrPathTraversal; control
// characters return ErrCorruptedPath.
func NormalizePath(path string) (string, error) {
	for _, r := range path {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("%q: %w", path, ErrCorruptedPath)
		}
	}

	path = strings.ReplaceAll(path, "\\", "/")

	segments := strings.Split(path, "/")
	parts := make([]string, 0, len(segments))
	for _, segment := range segments {
		switch segment {
		case "", ".":
			continue
		case "..":
			if len(parts) == 0 {
				return "", fmt.Errorf("%q: %w", path, ErrPathTraversal)
			}
			parts = parts[:len(parts)-1]
		default:
			parts = append(parts, segment)
		}
	}

	return strings.Join(parts, "/"), nil
}

// Prefixer maps logical paths to backend keys under a fixed root.
//
// The zero value has no prefix and is ready to use.
type Prefixer struct {
	prefix string
}

// NewPrefixer returns a Prefixer rooted at prefix. Surrounding slashes are
// trimmed and a single trailing '/' is added unless the prefix is empty.
func NewPrefixer(prefix string) Prefixer {
	prefix = strings.Trim(strings.ReplaceAll(prefix, "\\", "/"), "/")
	if prefix != "" {
		prefix += "/"
	}
	return Prefixer{prefix: prefix}
}

// Prefix returns the configured prefix, including its trailing slash.
func (p Prefixer) Prefix() string {
	return p.prefix
}

// PrefixPath returns the backend key for path.
func (p Prefixer) PrefixPath(path string) string {
	return p.prefix + strings.TrimLeft(path, "/")
}

// PrefixDirectoryPath returns the backend key prefix for the directory path.
// The root directory maps to the bare prefix.
func (p Prefixer) PrefixDirectoryPath(path string) string {
	path = strings.Trim(path, "/")
	if path == "" {
		return p.prefix
	}
	return p.prefix + path + "/"
}

// StripPrefix returns the logical path for a backend key.
func (p Prefixer) StripPrefix(key string) string {
	return strings.TrimPrefix(key, p.prefix)
}

// StripDirectoryPrefix returns the logical path for a backend directory key,
// without the trailing slash.
func (p Prefixer) StripDirectoryPrefix(key string) string {
	return strings.TrimRight(p.StripPrefix(key), "/")
}
