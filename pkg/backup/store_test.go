// pkg/backup/store_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: MemoryFS
// PURPOSE: Test backup moves, replacement warnings and restore round trips

package backup_test

import (
	"io/fs"
	"syscall"
	"testing"

	"github.com/arthur-debert/dotstow/pkg/backup"
	"github.com/arthur-debert/dotstow/pkg/errors"
	"github.com/arthur-debert/dotstow/pkg/filesystem"
	"github.com/arthur-debert/dotstow/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	targetRoot = "/home/user"
	backupRoot = "/home/user/.dotfiles-backup"
)

func newFS(t *testing.T) *filesystem.MemoryFS {
	t.Helper()
	m := filesystem.NewMemory()
	require.NoError(t, m.MkdirAll(targetRoot, 0755))
	return m
}

func conflict(rel string, kind types.TargetState) types.ConflictRecord {
	return types.ConflictRecord{
		Package:        "zsh",
		RelativePath:   rel,
		TargetAbsolute: targetRoot + "/" + rel,
		Kind:           kind,
	}
}

func readString(t *testing.T, m *filesystem.MemoryFS, path string) string {
	t.Helper()
	content, err := m.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func assertMissing(t *testing.T, m *filesystem.MemoryFS, path string) {
	t.Helper()
	exists, err := filesystem.Exists(m, path)
	require.NoError(t, err)
	assert.False(t, exists, "%s should not exist", path)
}

func TestBackupOne_MovesFile(t *testing.T) {
	m := newFS(t)
	require.NoError(t, m.MkdirAll(targetRoot+"/.config/git", 0755))
	require.NoError(t, m.WriteFile(targetRoot+"/.config/git/config", []byte("old"), 0600))

	store := backup.New(m, backupRoot, false)
	record, err := store.BackupOne(conflict(".config/git/config", types.ConflictFile))
	require.NoError(t, err)

	assert.Equal(t, backupRoot+"/.config/git/config", record.BackupAbsolute)
	assert.False(t, record.Replaced)
	assert.Equal(t, "old", readString(t, m, backupRoot+"/.config/git/config"))
	assertMissing(t, m, targetRoot+"/.config/git/config")

	info, err := m.Stat(backupRoot + "/.config/git/config")
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0600), info.Mode().Perm(), "moved, not copied")
}

func TestBackupOne_Kinds(t *testing.T) {
	m := newFS(t)
	require.NoError(t, m.MkdirAll(targetRoot+"/.vim/colors", 0755))
	require.NoError(t, m.WriteFile(targetRoot+"/.vim/colors/dark.vim", []byte("dark"), 0644))
	require.NoError(t, m.Symlink("/somewhere/else", targetRoot+"/.gitconfig"))

	store := backup.New(m, backupRoot, false)

	_, err := store.BackupOne(conflict(".vim", types.ConflictDir))
	require.NoError(t, err)
	assert.Equal(t, "dark", readString(t, m, backupRoot+"/.vim/colors/dark.vim"))

	_, err = store.BackupOne(conflict(".gitconfig", types.LinkedElsewhere))
	require.NoError(t, err)
	dest, err := m.Readlink(backupRoot + "/.gitconfig")
	require.NoError(t, err)
	assert.Equal(t, "/somewhere/else", dest)
}

func TestBackupOne_RefusesNonConflicts(t *testing.T) {
	m := newFS(t)
	require.NoError(t, m.WriteFile(targetRoot+"/.zshrc", []byte("x"), 0644))
	store := backup.New(m, backupRoot, false)

	for _, kind := range []types.TargetState{types.Absent, types.LinkedToThisSource} {
		_, err := store.BackupOne(conflict(".zshrc", kind))
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	}
	assert.Equal(t, "x", readString(t, m, targetRoot+"/.zshrc"))
}

func TestBackupOne_ReplacesOlderBackup(t *testing.T) {
	m := newFS(t)
	require.NoError(t, m.MkdirAll(backupRoot+"/.zshrc", 0755))
	require.NoError(t, m.WriteFile(backupRoot+"/.zshrc/stale", []byte("stale"), 0644))
	require.NoError(t, m.WriteFile(targetRoot+"/.zshrc", []byte("newer"), 0644))

	record, err := backup.New(m, backupRoot, false).BackupOne(conflict(".zshrc", types.ConflictFile))
	require.NoError(t, err)

	assert.True(t, record.Replaced)
	assert.Equal(t, "newer", readString(t, m, backupRoot+"/.zshrc"))
}

func TestBackupOne_BlockingAncestor(t *testing.T) {
	m := newFS(t)
	require.NoError(t, m.WriteFile(targetRoot+"/.config", []byte("x"), 0644))

	record, err := backup.New(m, backupRoot, false).BackupOne(types.ConflictRecord{
		Package:           "git",
		RelativePath:      ".config/git/config",
		TargetAbsolute:    targetRoot + "/.config/git/config",
		Kind:              types.ConflictFile,
		BlockedBy:         ".config",
		BlockedByAbsolute: targetRoot + "/.config",
	})
	require.NoError(t, err)

	assert.Equal(t, ".config", record.RelativePath)
	assert.Equal(t, backupRoot+"/.config", record.BackupAbsolute)
	assert.Equal(t, "x", readString(t, m, backupRoot+"/.config"))
	assertMissing(t, m, targetRoot+"/.config")
}

func TestBackupOne_DryRun(t *testing.T) {
	m := newFS(t)
	require.NoError(t, m.WriteFile(targetRoot+"/.zshrc", []byte("old"), 0644))

	record, err := backup.New(m, backupRoot, true).BackupOne(conflict(".zshrc", types.ConflictFile))
	require.NoError(t, err)

	assert.Equal(t, backupRoot+"/.zshrc", record.BackupAbsolute)
	assert.Equal(t, "old", readString(t, m, targetRoot+"/.zshrc"))
	assertMissing(t, m, backupRoot)
}

func TestBackup_PerFileFailures(t *testing.T) {
	m := newFS(t)
	for _, name := range []string{".a", ".b", ".c"} {
		require.NoError(t, m.WriteFile(targetRoot+"/"+name, []byte(name), 0644))
	}
	m.FailOn("rename", targetRoot+"/.b", syscall.EXDEV)

	count, failed := backup.New(m, backupRoot, false).Backup([]types.ConflictRecord{
		conflict(".a", types.ConflictFile),
		conflict(".b", types.ConflictFile),
		conflict(".c", types.ConflictFile),
	})

	assert.Equal(t, 2, count)
	require.Len(t, failed, 1)
	assert.Equal(t, ".b", failed[0].RelativePath)
	assert.True(t, errors.IsErrorCode(failed[0].Err, errors.ErrBackupIO))

	// the failed item stays where it was
	assert.Equal(t, ".b", readString(t, m, targetRoot+"/.b"))
	assert.Equal(t, ".c", readString(t, m, backupRoot+"/.c"))
}

func TestBackupOne_PermissionDenied(t *testing.T) {
	m := newFS(t)
	require.NoError(t, m.WriteFile(targetRoot+"/.zshrc", []byte("old"), 0644))
	m.FailOn("mkdir", backupRoot, fs.ErrPermission)

	_, err := backup.New(m, backupRoot, false).BackupOne(conflict(".zshrc", types.ConflictFile))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPermission))
}

func TestRestore_RoundTrip(t *testing.T) {
	m := newFS(t)
	originals := map[string]string{
		".zshrc":                "old zshrc",
		".config/git/config":    "[user]",
		".config/nvim/init.lua": "vim.o.number = true",
	}
	for rel, content := range originals {
		require.NoError(t, m.MkdirAll(targetRoot+"/"+dirOf(rel), 0755))
		require.NoError(t, m.WriteFile(targetRoot+"/"+rel, []byte(content), 0644))
	}

	store := backup.New(m, backupRoot, false)
	var conflicts []types.ConflictRecord
	for rel := range originals {
		conflicts = append(conflicts, conflict(rel, types.ConflictFile))
	}
	count, failed := store.Backup(conflicts)
	require.Empty(t, failed)
	require.Equal(t, 3, count)

	// something else takes the place of one of them
	require.NoError(t, m.Symlink("/dots/zsh/.zshrc", targetRoot+"/.zshrc"))

	result, err := store.Restore(targetRoot)
	require.NoError(t, err)
	assert.True(t, result.Succeeded())
	assert.ElementsMatch(t, []string{".zshrc", ".config/git/config", ".config/nvim/init.lua"}, result.Restored)

	for rel, content := range originals {
		info, err := m.Lstat(targetRoot + "/" + rel)
		require.NoError(t, err)
		assert.True(t, info.Mode().IsRegular(), "%s should be a regular file", rel)
		assert.Equal(t, content, readString(t, m, targetRoot+"/"+rel))
	}
	assertMissing(t, m, backupRoot)
	assert.Contains(t, result.PrunedDirs, backupRoot)
}

func TestRestore_DirectoryReplacedByLink(t *testing.T) {
	m := newFS(t)
	require.NoError(t, m.MkdirAll("/dots/vim", 0755))
	require.NoError(t, m.WriteFile("/dots/vim/.vimrc", []byte("set number"), 0644))
	require.NoError(t, m.MkdirAll(targetRoot+"/.vimrc", 0755))
	require.NoError(t, m.WriteFile(targetRoot+"/.vimrc/old.txt", []byte("old"), 0644))

	store := backup.New(m, backupRoot, false)
	_, err := store.BackupOne(conflict(".vimrc", types.ConflictDir))
	require.NoError(t, err)
	require.NoError(t, m.Symlink("/dots/vim/.vimrc", targetRoot+"/.vimrc"))

	result, err := store.Restore(targetRoot)
	require.NoError(t, err)
	assert.True(t, result.Succeeded(), "%+v", result.Failed)
	assert.Equal(t, []string{".vimrc/old.txt"}, result.Restored)

	info, err := m.Lstat(targetRoot + "/.vimrc")
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "the link should be gone and the directory back")
	assert.Equal(t, "old", readString(t, m, targetRoot+"/.vimrc/old.txt"))
	assert.Equal(t, "set number", readString(t, m, "/dots/vim/.vimrc"))
	assertMissing(t, m, backupRoot)
}

func TestRestore_NeverWritesThroughLinkedAncestor(t *testing.T) {
	m := newFS(t)
	require.NoError(t, m.MkdirAll("/dots/nvim/.config/nvim", 0755))
	require.NoError(t, m.WriteFile("/dots/nvim/.config/nvim/init.lua", []byte("new"), 0644))
	require.NoError(t, m.MkdirAll(targetRoot+"/.config/nvim", 0755))
	require.NoError(t, m.WriteFile(targetRoot+"/.config/nvim/init.lua", []byte("old"), 0644))

	store := backup.New(m, backupRoot, false)
	_, err := store.BackupOne(conflict(".config/nvim/init.lua", types.ConflictFile))
	require.NoError(t, err)

	// the directory is later folded into the package
	require.NoError(t, m.Remove(targetRoot+"/.config/nvim"))
	require.NoError(t, m.Symlink("/dots/nvim/.config/nvim", targetRoot+"/.config/nvim"))

	result, err := store.Restore(targetRoot)
	require.NoError(t, err)
	assert.True(t, result.Succeeded(), "%+v", result.Failed)
	assert.Equal(t, []string{".config/nvim/init.lua"}, result.Restored)

	info, err := m.Lstat(targetRoot + "/.config/nvim")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, "old", readString(t, m, targetRoot+"/.config/nvim/init.lua"))
	assert.Equal(t, "new", readString(t, m, "/dots/nvim/.config/nvim/init.lua"))
}

func TestRestore_DryRunLeavesLinkedDirectory(t *testing.T) {
	m := newFS(t)
	require.NoError(t, m.MkdirAll(backupRoot+"/.vimrc", 0755))
	require.NoError(t, m.WriteFile(backupRoot+"/.vimrc/old.txt", []byte("old"), 0644))
	require.NoError(t, m.Symlink("/dots/vim/.vimrc", targetRoot+"/.vimrc"))

	result, err := backup.New(m, backupRoot, true).Restore(targetRoot)
	require.NoError(t, err)

	assert.Equal(t, []string{".vimrc/old.txt"}, result.Restored)
	dest, err := m.Readlink(targetRoot + "/.vimrc")
	require.NoError(t, err)
	assert.Equal(t, "/dots/vim/.vimrc", dest)
	assert.Equal(t, "old", readString(t, m, backupRoot+"/.vimrc/old.txt"))
}

func TestRestore_KeepsNonEmptyDirs(t *testing.T) {
	m := newFS(t)
	require.NoError(t, m.MkdirAll(backupRoot+"/.config", 0755))
	require.NoError(t, m.WriteFile(backupRoot+"/.config/a", []byte("a"), 0644))
	require.NoError(t, m.WriteFile(backupRoot+"/.b", []byte("b"), 0644))
	require.NoError(t, m.MkdirAll(targetRoot+"/.b", 0755))
	require.NoError(t, m.MkdirAll(targetRoot+"/.config", 0755))

	result, err := backup.New(m, backupRoot, false).Restore(targetRoot)
	require.NoError(t, err)

	assert.Equal(t, []string{".config/a"}, result.Restored)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, ".b", result.Failed[0].RelativePath)
	assert.False(t, result.Succeeded())

	// .b could not go back, so the root stays; the emptied .config goes
	assert.Equal(t, "b", readString(t, m, backupRoot+"/.b"))
	assertMissing(t, m, backupRoot+"/.config")
	assert.Equal(t, []string{backupRoot + "/.config"}, result.PrunedDirs)
}

func TestRestore_MissingRoot(t *testing.T) {
	m := newFS(t)
	result, err := backup.New(m, backupRoot, false).Restore(targetRoot)
	require.NoError(t, err)
	assert.Empty(t, result.Restored)
	assert.True(t, result.Succeeded())
}

func TestRestore_DryRun(t *testing.T) {
	m := newFS(t)
	require.NoError(t, m.MkdirAll(backupRoot, 0755))
	require.NoError(t, m.WriteFile(backupRoot+"/.zshrc", []byte("old"), 0644))
	require.NoError(t, m.Symlink("/dots/zsh/.zshrc", targetRoot+"/.zshrc"))

	result, err := backup.New(m, backupRoot, true).Restore(targetRoot)
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Equal(t, []string{".zshrc"}, result.Restored)
	assert.Equal(t, []string{backupRoot}, result.PrunedDirs)
	assert.Equal(t, "old", readString(t, m, backupRoot+"/.zshrc"))
	dest, err := m.Readlink(targetRoot + "/.zshrc")
	require.NoError(t, err)
	assert.Equal(t, "/dots/zsh/.zshrc", dest)
}

func dirOf(rel string) string {
	for i := len(rel) - 1; i >= 0; i-- {
		if rel[i] == '/' {
			return rel[:i]
		}
	}
	return ""
}
