package types

import (
	"path/filepath"
)

// Package is a named directory whose files are mirrored under the target root
// with the same relative structure. It is derived from configuration and does
// not change for the duration of a run.
type Package struct {
	// Name is the package name (the directory name under the source root)
	Name string `json:"name"`

	// SourceRoot is the absolute path to the package directory
	SourceRoot string `json:"sourceRoot"`
}

// GetFilePath returns the full path to a file within the package
func (p Package) GetFilePath(relPath string) string {
	return filepath.Join(p.SourceRoot, relPath)
}

// FileEntry is one leaf file discovered under a package's source tree.
type FileEntry struct {
	RelativePath   string `json:"relativePath"`
	SourceAbsolute string `json:"sourceAbsolute"`
}
