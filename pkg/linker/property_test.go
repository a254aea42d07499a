package linker_test

import (
	"context"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/dotstow/pkg/backup"
	"github.com/arthur-debert/dotstow/pkg/filesystem"
	"github.com/arthur-debert/dotstow/pkg/linker"
	"github.com/arthur-debert/dotstow/pkg/scanner"
	"github.com/arthur-debert/dotstow/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// snapshot records what is at a path without following a trailing link
type snapshot struct {
	kind    string
	content string
	dest    string
}

func take(t *testing.T, fsys types.FS, path string) snapshot {
	t.Helper()
	info, err := fsys.Lstat(path)
	if err != nil {
		return snapshot{kind: "absent"}
	}
	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		dest, err := fsys.Readlink(path)
		require.NoError(t, err)
		return snapshot{kind: "link", dest: dest}
	case info.IsDir():
		return snapshot{kind: "dir"}
	default:
		content, err := fsys.ReadFile(path)
		require.NoError(t, err)
		return snapshot{kind: "file", content: string(content)}
	}
}

// TestUnstow_NeverTouchesForeignTargets fills the target root with a random
// mix of files, directories and links, some belonging to the package, and
// checks unstow removes exactly the package's own links.
func TestUnstow_NeverTouchesForeignTargets(t *testing.T) {
	rels := []string{".zshrc", ".zshenv", ".config/zsh/aliases", ".config/zsh/env", ".local/bin/tool"}

	for seed := int64(1); seed <= 25; seed++ {
		t.Run(fmt.Sprintf("seed-%d", seed), func(t *testing.T) {
			rng := rand.New(rand.NewSource(seed))
			e := newEnv(t, false)
			for _, rel := range rels {
				e.file(t, "/dots/zsh/"+rel, "zsh:"+rel)
				e.file(t, "/dots/other/"+rel, "other:"+rel)
			}

			own := map[string]bool{}
			for _, rel := range rels {
				target := "/home/user/" + rel
				switch rng.Intn(7) {
				case 0: // absent
				case 1:
					e.file(t, target, "user data")
				case 2:
					require.NoError(t, e.fs.MkdirAll(target, 0755))
				case 3:
					e.link(t, "/dots/zsh/"+rel, target)
					own[rel] = true
				case 4:
					e.link(t, "/dots/other/"+rel, target)
				case 5:
					e.link(t, "/nowhere/"+rel, target)
				case 6:
					rel2, err := filepath.Rel(filepath.Dir(target), "/dots/zsh/"+rel)
					require.NoError(t, err)
					e.link(t, rel2, target)
					own[rel] = true
				}
			}

			before := map[string]snapshot{}
			for _, rel := range rels {
				before[rel] = take(t, e.fs, "/home/user/"+rel)
			}

			result := e.apply("zsh", types.ModeUnstow, types.ResolutionAbort)
			require.True(t, result.Succeeded())

			for _, rel := range rels {
				after := take(t, e.fs, "/home/user/"+rel)
				if own[rel] {
					assert.Equal(t, "absent", after.kind, "%s should be unlinked", rel)
					assert.Contains(t, result.Unlinked, rel)
				} else {
					assert.Equal(t, before[rel], after, "%s must be untouched", rel)
					assert.NotContains(t, result.Unlinked, rel)
				}
				// sources are never touched
				assert.Equal(t, "zsh:"+rel, take(t, e.fs, "/dots/zsh/"+rel).content)
			}
		})
	}
}

// TestStow_ResolvesOnRealFilesystem checks the resolution invariant with real
// symlinks on disk.
func TestStow_ResolvesOnRealFilesystem(t *testing.T) {
	root := t.TempDir()
	source := filepath.Join(root, "dots")
	target := filepath.Join(root, "home")
	backups := filepath.Join(target, ".dotfiles-backup")

	files := map[string]string{
		".zshrc":              "rc",
		".config/zsh/aliases": "aliases",
		".local/bin/hello":    "#!/bin/sh",
	}
	for rel, content := range files {
		path := filepath.Join(source, "zsh", rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	require.NoError(t, os.MkdirAll(target, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(target, ".zshrc"), []byte("old"), 0644))

	osfs := filesystem.NewOS()
	sc := scanner.New(osfs, target, nil)
	applier := linker.New(osfs, sc, backup.New(osfs, backups, false), false)
	pkg := types.Package{Name: "zsh", SourceRoot: filepath.Join(source, "zsh")}

	result := applier.Apply(context.Background(), pkg, types.ModeStow, types.ResolutionAdopt)
	require.True(t, result.Succeeded(), "%+v", result)

	for rel, content := range files {
		resolved, err := filepath.EvalSymlinks(filepath.Join(target, rel))
		require.NoError(t, err)
		want, err := filepath.EvalSymlinks(filepath.Join(source, "zsh", rel))
		require.NoError(t, err)
		assert.Equal(t, want, resolved)

		got, err := os.ReadFile(filepath.Join(target, rel))
		require.NoError(t, err)
		assert.Equal(t, content, string(got))
	}

	old, err := os.ReadFile(filepath.Join(backups, ".zshrc"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(old))

	// a second run changes nothing
	again := applier.Apply(context.Background(), pkg, types.ModeStow, types.ResolutionAbort)
	require.True(t, again.Succeeded())
	assert.Empty(t, again.Linked)
	assert.Len(t, again.AlreadyLinked, len(files))
}
