package hostfs

import (
	"errors"
	"path/filepath"
	"strings"
)

var ErrInvalidPath = errors.New("invalid host path")

// Root is the directory the host filesystem is reachable under.
type Root string

// Path joins the root with a host path. Both "etc/passwd" and "/etc/passwd"
// map to <root>/etc/passwd; paths escaping the root are rejected.
func (r Root) Path(p string) (string, error) {
	rel := strings.TrimPrefix(p, "/")
	clean := filepath.Clean(rel)
	if clean == "." || clean == "" {
		return "", ErrInvalidPath
	}
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrInvalidPath
	}
	base := string(r)
	if base == "" {
		base = "/"
	}
	return filepath.Join(base, clean), nil
}

// Abs maps an absolute host path (e.g. /home/alice) into the root.
func (r Root) Abs(abs string) (string, error) {
	if abs == "" || !strings.HasPrefix(abs, "/") {
		return "", ErrInvalidPath
	}
	return r.Path(abs)
}
