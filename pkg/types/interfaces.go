package types

import (
	"io/fs"
)

// FS is the filesystem interface required for link operations
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Lstat must not follow a trailing symlink; classification depends on it.
	Lstat(name string) (fs.FileInfo, error)

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Symlink operations
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)

	// Other operations
	Remove(name string) error
	Rename(oldpath, newpath string) error
}

// ConfirmFunc asks the user a yes/no question. Unattended callers return true
// without prompting.
type ConfirmFunc func(prompt string) bool

// AlwaysConfirm is the ConfirmFunc used in forced mode.
func AlwaysConfirm(string) bool { return true }

// NeverConfirm declines every prompt.
func NeverConfirm(string) bool { return false }
