package domain

import (
	"path/filepath"
	"strings"
)

// RelativeTo returns target relative to root. The second result is false when
// target is not root or a descendant of it. The root itself maps to "".
func RelativeTo(root, target string) (string, bool) {
	root = filepath.Clean(root)
	target = filepath.Clean(target)
	if root == target {
		return "", true
	}
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	if rel == "." {
		return "", true
	}
	return rel, true
}

// SplitRelative splits a relative path into its components.
func SplitRelative(rel string) []string {
	if rel == "" {
		return nil
	}
	return strings.Split(rel, string(filepath.Separator))
}

// IsWithin reports whether path is root or below it.
func IsWithin(root, path string) bool {
	_, ok := RelativeTo(root, path)
	return ok
}

// VolumeRoot returns the root of the volume holding path, e.g. "C:\" or "/".
func VolumeRoot(path string) string {
	vol := filepath.VolumeName(path)
	return vol + string(filepath.Separator)
}
