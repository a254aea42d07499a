// pkg/testutil/environment.go
// DEPENDENCIES: filesystem, config
// PURPOSE: Build isolated source/target/backup trees for stow tests

package testutil

import (
	"path/filepath"
	"sort"
	"testing"

	"github.com/arthur-debert/dotstow/pkg/config"
	"github.com/arthur-debert/dotstow/pkg/filesystem"
	"github.com/arthur-debert/dotstow/pkg/types"
	"github.com/stretchr/testify/require"
)

// EnvType defines the type of test environment
type EnvType int

const (
	EnvMemoryOnly EnvType = iota // Pure in-memory, no real filesystem
	EnvIsolated                  // Real filesystem in temp directory
)

// FileTree maps relative paths to file contents
type FileTree map[string]string

// TestEnvironment is a dotfiles layout ready for stow operations
type TestEnvironment struct {
	SourceRoot string
	TargetRoot string
	BackupRoot string

	FS   types.FS
	Type EnvType

	// Memory is set for EnvMemoryOnly so tests can inject failures
	Memory *filesystem.MemoryFS

	t *testing.T
}

// NewTestEnvironment creates the three roots and sets HOME and
// DOTFILES_ROOT to match.
func NewTestEnvironment(t *testing.T, envType EnvType) *TestEnvironment {
	t.Helper()

	env := &TestEnvironment{t: t, Type: envType}
	switch envType {
	case EnvMemoryOnly:
		env.SourceRoot = "/virtual/dotfiles"
		env.TargetRoot = "/virtual/home"
		env.Memory = filesystem.NewMemory()
		env.FS = env.Memory
	case EnvIsolated:
		tempDir := t.TempDir()
		// macOS hands out temp dirs behind a /var -> /private/var link
		if resolved, err := filepath.EvalSymlinks(tempDir); err == nil {
			tempDir = resolved
		}
		env.SourceRoot = filepath.Join(tempDir, "dotfiles")
		env.TargetRoot = filepath.Join(tempDir, "home")
		env.FS = filesystem.NewOS()
	}
	env.BackupRoot = filepath.Join(env.TargetRoot, ".dotfiles-backup")

	require.NoError(t, env.FS.MkdirAll(env.SourceRoot, 0755))
	require.NoError(t, env.FS.MkdirAll(env.TargetRoot, 0755))

	t.Setenv("DOTFILES_ROOT", env.SourceRoot)
	t.Setenv("HOME", env.TargetRoot)
	return env
}

// Config returns a resolved config over the environment's roots
func (env *TestEnvironment) Config(packages ...string) *config.Config {
	env.t.Helper()
	cfg := &config.Config{
		SourceRoot: env.SourceRoot,
		TargetRoot: env.TargetRoot,
		BackupRoot: env.BackupRoot,
		Packages:   packages,
	}
	require.NoError(env.t, cfg.Resolve())
	return cfg
}

// SetupPackage creates a package directory holding files
func (env *TestEnvironment) SetupPackage(name string, files FileTree) types.Package {
	env.t.Helper()
	pkg := types.Package{Name: name, SourceRoot: filepath.Join(env.SourceRoot, name)}
	require.NoError(env.t, env.FS.MkdirAll(pkg.SourceRoot, 0755))
	env.writeTree(pkg.SourceRoot, files)
	return pkg
}

// WriteTarget creates regular files under the target root
func (env *TestEnvironment) WriteTarget(files FileTree) {
	env.t.Helper()
	env.writeTree(env.TargetRoot, files)
}

// LinkTarget creates a symlink at rel under the target root
func (env *TestEnvironment) LinkTarget(rel, dest string) {
	env.t.Helper()
	path := filepath.Join(env.TargetRoot, rel)
	require.NoError(env.t, env.FS.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(env.t, env.FS.Symlink(dest, path))
}

// ReadFile returns the contents of path, following links
func (env *TestEnvironment) ReadFile(path string) string {
	env.t.Helper()
	data, err := env.FS.ReadFile(path)
	require.NoError(env.t, err)
	return string(data)
}

func (env *TestEnvironment) writeTree(root string, files FileTree) {
	env.t.Helper()
	// Sorted so failures are reproducible
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(root, name)
		require.NoError(env.t, env.FS.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(env.t, env.FS.WriteFile(path, []byte(files[name]), 0644))
	}
}
