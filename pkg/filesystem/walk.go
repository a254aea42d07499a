package filesystem

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/dotstow/pkg/types"
)

// Walk walks the tree rooted at root in lexical order, calling fn for every
// entry including root. It has fs.WalkDir semantics (SkipDir, SkipAll) but
// runs against types.FS and never descends into symlinked directories.
func Walk(fsys types.FS, root string, fn fs.WalkDirFunc) error {
	info, err := fsys.Lstat(root)
	if err != nil {
		err = fn(root, nil, err)
	} else {
		err = walkDir(fsys, root, fs.FileInfoToDirEntry(info), fn)
	}
	if errors.Is(err, filepath.SkipDir) || errors.Is(err, filepath.SkipAll) {
		return nil
	}
	return err
}

func walkDir(fsys types.FS, path string, d fs.DirEntry, fn fs.WalkDirFunc) error {
	if err := fn(path, d, nil); err != nil || !d.IsDir() {
		if errors.Is(err, filepath.SkipDir) && d.IsDir() {
			err = nil
		}
		return err
	}

	entries, err := fsys.ReadDir(path)
	if err != nil {
		// Second call, to report the ReadDir error
		err = fn(path, d, err)
		if err != nil {
			if errors.Is(err, filepath.SkipDir) && d.IsDir() {
				err = nil
			}
			return err
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if err := walkDir(fsys, filepath.Join(path, entry.Name()), entry, fn); err != nil {
			if errors.Is(err, filepath.SkipDir) {
				break
			}
			return err
		}
	}
	return nil
}

// IsEmptyDir reports whether path is a directory with no entries
func IsEmptyDir(fsys types.FS, path string) (bool, error) {
	entries, err := fsys.ReadDir(path)
	if err != nil {
		return false, err
	}
	return len(entries) == 0, nil
}

// Exists reports whether anything, including a dangling symlink, is at path
func Exists(fsys types.FS, path string) (bool, error) {
	_, err := fsys.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// RemoveAll removes path and, when it is a real directory, everything below
// it. Symlinks are removed, never followed. A missing path is not an error.
func RemoveAll(fsys types.FS, path string) error {
	info, err := fsys.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		entries, err := fsys.ReadDir(path)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if err := RemoveAll(fsys, filepath.Join(path, entry.Name())); err != nil {
				return err
			}
		}
	}
	return fsys.Remove(path)
}
