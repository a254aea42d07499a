package scanner

import (
	"path/filepath"

	"github.com/arthur-debert/dotstow/pkg/types"
)

// IgnoreFileName marks a directory (or a whole package) to be skipped
const IgnoreFileName = ".dotstowignore"

// DefaultIgnorePatterns are used when no patterns are configured
var DefaultIgnorePatterns = []string{".git", ".DS_Store", ".stow-local-ignore"}

// MatchesIgnore reports whether a base name matches any of the glob patterns
func MatchesIgnore(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}

// hasIgnoreFile checks if a directory contains the ignore marker
func hasIgnoreFile(fsys types.FS, dir string) bool {
	_, err := fsys.Lstat(filepath.Join(dir, IgnoreFileName))
	return err == nil
}
