package paths

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/dotstow/pkg/errors"
)

// ValidatePath performs basic validation on a path.
// It checks for:
// - Empty paths
// - Null bytes
// - Excessive path length
func ValidatePath(path string) error {
	if path == "" {
		return errors.New(errors.ErrInvalidInput, "path cannot be empty")
	}

	if strings.Contains(path, "\x00") {
		return errors.New(errors.ErrInvalidInput, "path contains null bytes")
	}

	// Common filesystem limit
	if len(path) > 4096 {
		return errors.New(errors.ErrInvalidInput, "path exceeds maximum length")
	}

	return nil
}

// ValidatePackageName ensures a package name is a single path element.
// Package names must:
// - Not be empty
// - Not contain path separators
// - Not be reserved names (. or ..)
// - Not contain control characters
func ValidatePackageName(name string) error {
	if name == "" {
		return errors.New(errors.ErrInvalidInput, "package name cannot be empty")
	}

	if strings.ContainsAny(name, "/\\") {
		return errors.New(errors.ErrInvalidInput, "package name cannot contain path separators").
			WithDetail("package", name)
	}

	if name == "." || name == ".." {
		return errors.New(errors.ErrInvalidInput, "package name cannot be '.' or '..'")
	}

	invalidChars := ":*?\"<>|"
	if strings.ContainsAny(name, invalidChars) {
		return errors.Newf(errors.ErrInvalidInput,
			"package name contains invalid characters: %s", invalidChars).
			WithDetail("package", name)
	}

	for _, r := range name {
		if r < 32 {
			return errors.New(errors.ErrInvalidInput,
				"package name contains control characters")
		}
	}

	return nil
}

// ContainsPath reports whether child is parent or lies under it
func ContainsPath(parent, child string) bool {
	parent = filepath.Clean(parent)
	child = filepath.Clean(child)
	if parent == child {
		return true
	}
	if parent == string(filepath.Separator) {
		return strings.HasPrefix(child, parent)
	}
	return strings.HasPrefix(child, parent+string(filepath.Separator))
}

// IsHiddenPath reports whether the last element of path starts with a dot
func IsHiddenPath(path string) bool {
	base := filepath.Base(path)
	return len(base) > 1 && base[0] == '.' && base != ".."
}
