package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"
)

// maxLinkHops bounds symlink resolution, matching the usual kernel limit
const maxLinkHops = 40

// MemoryFS implements types.FS in memory. Unlike afero's MemMapFs it models
// symlinks as real nodes, so Lstat, Readlink and link resolution behave like
// the OS. Failures can be injected per operation and path.
type MemoryFS struct {
	mu   sync.RWMutex
	root *memNode

	// failures maps "op path" to the error the operation should return
	failures map[string]error
}

// memNode represents a file, directory or symlink
type memNode struct {
	name     string
	mode     os.FileMode
	modTime  time.Time
	content  []byte
	linkDest string
	children map[string]*memNode
}

func (n *memNode) isDir() bool  { return n.mode.IsDir() }
func (n *memNode) isLink() bool { return n.mode&os.ModeSymlink != 0 }

// NewMemory creates an empty in-memory filesystem containing only "/"
func NewMemory() *MemoryFS {
	return &MemoryFS{
		root: &memNode{
			name:     "/",
			mode:     0755 | os.ModeDir,
			modTime:  time.Now(),
			children: make(map[string]*memNode),
		},
		failures: make(map[string]error),
	}
}

// FailOn makes op ("stat", "lstat", "readfile", "writefile", "mkdir",
// "readdir", "symlink", "readlink", "remove", "rename") on path return err.
// For rename the path is the old path.
func (m *MemoryFS) FailOn(op, path string, err error) *MemoryFS {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[op+" "+cleanAbs(path)] = err
	return m
}

func (m *MemoryFS) injected(op, path string) error {
	return m.failures[op+" "+cleanAbs(path)]
}

func cleanAbs(path string) string {
	if !filepath.IsAbs(path) {
		path = "/" + path
	}
	return filepath.Clean(path)
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// lookup walks path from the root following intermediate symlinks. The last
// component is followed only when followLast is set. It returns the node and
// its real path.
func (m *MemoryFS) lookup(op, path string, followLast bool) (*memNode, string, error) {
	return m.lookupHops(op, cleanAbs(path), followLast, 0)
}

func (m *MemoryFS) lookupHops(op, path string, followLast bool, hops int) (*memNode, string, error) {
	if hops > maxLinkHops {
		return nil, "", &fs.PathError{Op: op, Path: path, Err: syscall.ELOOP}
	}

	node := m.root
	current := "/"
	parts := splitPath(path)

	for i, part := range parts {
		if !node.isDir() {
			return nil, "", &fs.PathError{Op: op, Path: path, Err: syscall.ENOTDIR}
		}
		child, ok := node.children[part]
		if !ok {
			return nil, "", &fs.PathError{Op: op, Path: path, Err: fs.ErrNotExist}
		}

		last := i == len(parts)-1
		if child.isLink() && (!last || followLast) {
			dest := child.linkDest
			if !filepath.IsAbs(dest) {
				dest = filepath.Join(current, dest)
			}
			rest := append([]string{dest}, parts[i+1:]...)
			return m.lookupHops(op, filepath.Join(rest...), followLast, hops+1)
		}

		node = child
		current = filepath.Join(current, part)
	}

	return node, current, nil
}

// parent returns the directory node that holds path, and the base name
func (m *MemoryFS) parent(op, path string) (*memNode, string, error) {
	path = cleanAbs(path)
	if path == "/" {
		return nil, "", &fs.PathError{Op: op, Path: path, Err: syscall.EINVAL}
	}
	dir, _, err := m.lookup(op, filepath.Dir(path), true)
	if err != nil {
		return nil, "", err
	}
	if !dir.isDir() {
		return nil, "", &fs.PathError{Op: op, Path: path, Err: syscall.ENOTDIR}
	}
	return dir, filepath.Base(path), nil
}

// Stat returns file info, following symlinks
func (m *MemoryFS) Stat(name string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.injected("stat", name); err != nil {
		return nil, err
	}
	node, _, err := m.lookup("stat", name, true)
	if err != nil {
		return nil, err
	}
	return &memFileInfo{node: node, name: filepath.Base(cleanAbs(name))}, nil
}

// Lstat returns file info without following a trailing symlink
func (m *MemoryFS) Lstat(name string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.injected("lstat", name); err != nil {
		return nil, err
	}
	node, _, err := m.lookup("lstat", name, false)
	if err != nil {
		return nil, err
	}
	return &memFileInfo{node: node, name: filepath.Base(cleanAbs(name))}, nil
}

// ReadFile reads the entire file content
func (m *MemoryFS) ReadFile(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.injected("readfile", name); err != nil {
		return nil, err
	}
	node, _, err := m.lookup("open", name, true)
	if err != nil {
		return nil, err
	}
	if node.isDir() {
		return nil, &fs.PathError{Op: "read", Path: name, Err: syscall.EISDIR}
	}

	// Return a copy to prevent mutation
	content := make([]byte, len(node.content))
	copy(content, node.content)
	return content, nil
}

// WriteFile writes data to a file, creating it if necessary. The parent
// directory must exist, as with os.WriteFile.
func (m *MemoryFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.injected("writefile", name); err != nil {
		return err
	}

	if node, _, err := m.lookup("open", name, true); err == nil {
		if node.isDir() {
			return &fs.PathError{Op: "open", Path: name, Err: syscall.EISDIR}
		}
		node.content = append([]byte(nil), data...)
		node.modTime = time.Now()
		return nil
	}

	dir, base, err := m.parent("open", name)
	if err != nil {
		return err
	}
	dir.children[base] = &memNode{
		name:    base,
		mode:    perm.Perm(),
		modTime: time.Now(),
		content: append([]byte(nil), data...),
	}
	return nil
}

// MkdirAll creates a directory and all necessary parents
func (m *MemoryFS) MkdirAll(path string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.injected("mkdir", path); err != nil {
		return err
	}

	current := "/"
	for _, part := range splitPath(cleanAbs(path)) {
		next := filepath.Join(current, part)
		node, _, err := m.lookup("mkdir", next, true)
		switch {
		case err == nil && node.isDir():
		case err == nil:
			return &fs.PathError{Op: "mkdir", Path: next, Err: syscall.ENOTDIR}
		default:
			dir, base, perr := m.parent("mkdir", next)
			if perr != nil {
				return perr
			}
			dir.children[base] = &memNode{
				name:     base,
				mode:     perm.Perm() | os.ModeDir,
				modTime:  time.Now(),
				children: make(map[string]*memNode),
			}
		}
		current = next
	}
	return nil
}

// ReadDir reads a directory and returns its entries sorted by name
func (m *MemoryFS) ReadDir(name string) ([]fs.DirEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.injected("readdir", name); err != nil {
		return nil, err
	}
	node, _, err := m.lookup("readdir", name, true)
	if err != nil {
		return nil, err
	}
	if !node.isDir() {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: syscall.ENOTDIR}
	}

	entries := make([]fs.DirEntry, 0, len(node.children))
	for childName, child := range node.children {
		entries = append(entries, fs.FileInfoToDirEntry(&memFileInfo{node: child, name: childName}))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

// Symlink creates newname as a symbolic link to oldname
func (m *MemoryFS) Symlink(oldname, newname string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.injected("symlink", newname); err != nil {
		return &os.LinkError{Op: "symlink", Old: oldname, New: newname, Err: err}
	}

	dir, base, err := m.parent("symlink", newname)
	if err != nil {
		return &os.LinkError{Op: "symlink", Old: oldname, New: newname, Err: err}
	}
	if _, exists := dir.children[base]; exists {
		return &os.LinkError{Op: "symlink", Old: oldname, New: newname, Err: fs.ErrExist}
	}

	dir.children[base] = &memNode{
		name:     base,
		mode:     0777 | os.ModeSymlink,
		modTime:  time.Now(),
		linkDest: oldname,
	}
	return nil
}

// Readlink returns the destination of a symbolic link
func (m *MemoryFS) Readlink(name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.injected("readlink", name); err != nil {
		return "", err
	}
	node, _, err := m.lookup("readlink", name, false)
	if err != nil {
		return "", err
	}
	if !node.isLink() {
		return "", &fs.PathError{Op: "readlink", Path: name, Err: syscall.EINVAL}
	}
	return node.linkDest, nil
}

// Remove removes a file, symlink or empty directory
func (m *MemoryFS) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.injected("remove", name); err != nil {
		return err
	}
	dir, base, err := m.parent("remove", name)
	if err != nil {
		return err
	}
	node, ok := dir.children[base]
	if !ok {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
	}
	if node.isDir() && len(node.children) > 0 {
		return &fs.PathError{Op: "remove", Path: name, Err: syscall.ENOTEMPTY}
	}
	delete(dir.children, base)
	return nil
}

// Rename moves oldpath to newpath with POSIX semantics: a non-directory
// replaces an existing non-directory, a directory may only replace an empty
// directory.
func (m *MemoryFS) Rename(oldpath, newpath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	linkErr := func(err error) error {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: err}
	}

	if err := m.injected("rename", oldpath); err != nil {
		return linkErr(err)
	}

	srcDir, srcBase, err := m.parent("rename", oldpath)
	if err != nil {
		return linkErr(err)
	}
	node, ok := srcDir.children[srcBase]
	if !ok {
		return linkErr(fs.ErrNotExist)
	}

	dstDir, dstBase, err := m.parent("rename", newpath)
	if err != nil {
		return linkErr(err)
	}

	if node.isDir() {
		src := cleanAbs(oldpath)
		dst := cleanAbs(newpath)
		if strings.HasPrefix(dst, src+"/") {
			return linkErr(syscall.EINVAL)
		}
	}

	if existing, exists := dstDir.children[dstBase]; exists {
		if existing == node {
			return nil
		}
		switch {
		case existing.isDir() && !node.isDir():
			return linkErr(syscall.EISDIR)
		case !existing.isDir() && node.isDir():
			return linkErr(syscall.ENOTDIR)
		case existing.isDir() && len(existing.children) > 0:
			return linkErr(syscall.ENOTEMPTY)
		}
	}

	delete(srcDir.children, srcBase)
	node.name = dstBase
	dstDir.children[dstBase] = node
	return nil
}

// EvalSymlinks resolves every symlink in path
func (m *MemoryFS) EvalSymlinks(path string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, real, err := m.lookup("lstat", path, true)
	return real, err
}

// memFileInfo implements fs.FileInfo
type memFileInfo struct {
	node *memNode
	name string
}

func (fi *memFileInfo) Name() string       { return fi.name }
func (fi *memFileInfo) Size() int64        { return int64(len(fi.node.content)) }
func (fi *memFileInfo) Mode() os.FileMode  { return fi.node.mode }
func (fi *memFileInfo) ModTime() time.Time { return fi.node.modTime }
func (fi *memFileInfo) IsDir() bool        { return fi.node.isDir() }
func (fi *memFileInfo) Sys() interface{}   { return nil }
