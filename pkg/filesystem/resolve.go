package filesystem

import (
	"errors"
	"io/fs"
	"path/filepath"
	"syscall"

	"github.com/arthur-debert/dotstow/pkg/types"
)

// symlinkEvaluator is implemented by filesystems that can resolve symlinks
// in every path component, not just the last one.
type symlinkEvaluator interface {
	EvalSymlinks(path string) (string, error)
}

// LinkDest returns where the symlink at path points, made absolute relative
// to the link's directory.
func LinkDest(fsys types.FS, path string) (string, error) {
	dest, err := fsys.Readlink(path)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(filepath.Dir(path), dest)
	}
	return filepath.Clean(dest), nil
}

// Resolve returns the final path path refers to after following symlinks.
// Dangling links resolve to the path they point at; only link loops and I/O
// failures are errors.
func Resolve(fsys types.FS, path string) (string, error) {
	if eval, ok := fsys.(symlinkEvaluator); ok {
		if real, err := eval.EvalSymlinks(path); err == nil {
			return filepath.Clean(real), nil
		}
	}

	current := filepath.Clean(path)
	for hops := 0; hops <= maxLinkHops; hops++ {
		info, err := fsys.Lstat(current)
		if err != nil {
			if isNotExist(err) {
				return current, nil
			}
			return "", err
		}
		if info.Mode()&fs.ModeSymlink == 0 {
			return current, nil
		}
		current, err = LinkDest(fsys, current)
		if err != nil {
			return "", err
		}
	}
	return "", &fs.PathError{Op: "resolve", Path: path, Err: syscall.ELOOP}
}

// SameFile reports whether a and b resolve to the same path
func SameFile(fsys types.FS, a, b string) (bool, error) {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true, nil
	}
	ra, err := Resolve(fsys, a)
	if err != nil {
		return false, err
	}
	rb, err := Resolve(fsys, b)
	if err != nil {
		return false, err
	}
	return ra == rb, nil
}

func isNotExist(err error) bool {
	return err != nil && (errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR))
}
