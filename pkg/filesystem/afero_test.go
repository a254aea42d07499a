package filesystem_test

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/dotstow/pkg/errors"
	"github.com/arthur-debert/dotstow/pkg/filesystem"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAferoOsFsSymlinks(t *testing.T) {
	dir := t.TempDir()
	fsys := filesystem.NewAfero(afero.NewOsFs())

	src := filepath.Join(dir, "src")
	link := filepath.Join(dir, "link")
	require.NoError(t, fsys.WriteFile(src, []byte("x"), 0644))
	require.NoError(t, fsys.Symlink(src, link))

	info, err := fsys.Lstat(link)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink)

	dest, err := fsys.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, src, dest)

	entries, err := fsys.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "link", entries[0].Name())
	assert.NotZero(t, entries[0].Type()&os.ModeSymlink)
}

func TestAferoReadOnlyReportsPermission(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f"), []byte("x"), 0644))

	fsys := filesystem.NewAfero(afero.NewReadOnlyFs(afero.NewOsFs()))

	content, err := fsys.ReadFile(filepath.Join(dir, "f"))
	require.NoError(t, err)
	assert.Equal(t, "x", string(content))

	err = fsys.Symlink(filepath.Join(dir, "f"), filepath.Join(dir, "link"))
	assert.True(t, errors.IsPermission(err))

	err = fsys.Rename(filepath.Join(dir, "f"), filepath.Join(dir, "g"))
	assert.True(t, errors.IsPermission(err))
}

// plainFs hides every optional afero interface of the wrapped Fs
type plainFs struct{ afero.Fs }

func TestAferoWithoutSymlinkSupport(t *testing.T) {
	fsys := filesystem.NewAfero(plainFs{afero.NewMemMapFs()})

	err := fsys.Symlink("/a", "/b")
	assert.True(t, stderrors.Is(err, afero.ErrNoSymlink))

	_, err = fsys.Readlink("/b")
	assert.True(t, stderrors.Is(err, afero.ErrNoReadlink))
}
