package testutil

import (
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertLinked checks that rel under the target root is a symlink to the
// package file with the same relative path.
func (env *TestEnvironment) AssertLinked(t *testing.T, pkg, rel string) {
	t.Helper()
	target := filepath.Join(env.TargetRoot, rel)
	info, err := env.FS.Lstat(target)
	require.NoError(t, err, "target %s should exist", rel)
	require.NotZero(t, info.Mode()&fs.ModeSymlink, "target %s should be a symlink", rel)

	dest, err := env.FS.Readlink(target)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(env.SourceRoot, pkg, rel), dest)
}

// AssertRegularFile checks that path is a regular file holding content
func (env *TestEnvironment) AssertRegularFile(t *testing.T, path, content string) {
	t.Helper()
	info, err := env.FS.Lstat(path)
	require.NoError(t, err, "%s should exist", path)
	require.True(t, info.Mode().IsRegular(), "%s should be a regular file", path)
	assert.Equal(t, content, env.ReadFile(path))
}

// AssertBackedUp checks that the backup root holds rel with content
func (env *TestEnvironment) AssertBackedUp(t *testing.T, rel, content string) {
	t.Helper()
	env.AssertRegularFile(t, filepath.Join(env.BackupRoot, rel), content)
}

// AssertNotExists checks that nothing, not even a dangling link, is at path
func (env *TestEnvironment) AssertNotExists(t *testing.T, path string) {
	t.Helper()
	_, err := env.FS.Lstat(path)
	assert.Error(t, err, "%s should not exist", path)
}
