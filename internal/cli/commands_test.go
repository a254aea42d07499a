// internal/cli/commands_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Real filesystem in temp dirs
// PURPOSE: Drive the commands end to end and check links, output and exit errors

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arthur-debert/dotstow/pkg/config"
	"github.com/arthur-debert/dotstow/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cliResult struct {
	stdout string
	stderr string
	err    error
}

func newEnv(t *testing.T) *testutil.TestEnvironment {
	t.Helper()
	env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(env.TargetRoot, ".config"))
	for _, key := range []string{"SOURCE_ROOT", "TARGET_ROOT", "BACKUP_ROOT", "PACKAGES", "IGNORE"} {
		t.Setenv(config.EnvPrefix+key, "")
		require.NoError(t, os.Unsetenv(config.EnvPrefix+key))
	}
	return env
}

func run(t *testing.T, env *testutil.TestEnvironment, stdin string, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{
		"--dir", env.SourceRoot,
		"--target", env.TargetRoot,
		"--log-file", filepath.Join(t.TempDir(), "dotstow.log"),
	}, args...))
	err := cmd.ExecuteContext(context.Background())
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func TestStow_LinksPackages(t *testing.T) {
	env := newEnv(t)
	env.SetupPackage("vim", testutil.FileTree{".vimrc": "set nu", ".vim/colors/x.vim": "hi"})

	res := run(t, env, "", "stow", "vim")

	require.NoError(t, res.err)
	env.AssertLinked(t, "vim", ".vimrc")
	env.AssertLinked(t, "vim", ".vim/colors/x.vim")
	assert.Contains(t, res.stdout, "vim [ok]")
	assert.Contains(t, res.stdout, "1 package(s) processed")
}

func TestStow_ConflictDeclined(t *testing.T) {
	env := newEnv(t)
	env.SetupPackage("zsh", testutil.FileTree{".zshrc": "new"})
	env.WriteTarget(testutil.FileTree{".zshrc": "old"})

	res := run(t, env, "n\n", "stow", "zsh")

	require.Error(t, res.err)
	assert.True(t, IsSilent(res.err))
	assert.Contains(t, res.stderr, ".zshrc (conflict-file)")
	assert.Contains(t, res.stdout, "zsh [failed]")
	env.AssertRegularFile(t, filepath.Join(env.TargetRoot, ".zshrc"), "old")
	env.AssertNotExists(t, env.BackupRoot)
}

func TestStow_ConflictConfirmed(t *testing.T) {
	env := newEnv(t)
	env.SetupPackage("zsh", testutil.FileTree{".zshrc": "new"})
	env.WriteTarget(testutil.FileTree{".zshrc": "old"})

	res := run(t, env, "y\n", "stow", "zsh")

	require.NoError(t, res.err)
	env.AssertLinked(t, "zsh", ".zshrc")
	env.AssertBackedUp(t, ".zshrc", "old")
}

func TestStow_ForceAndRestore(t *testing.T) {
	env := newEnv(t)
	env.SetupPackage("git", testutil.FileTree{".gitconfig": "new", ".config/git/ignore": "*.o"})
	env.WriteTarget(testutil.FileTree{".gitconfig": "old", ".config/git/ignore": "old ignore"})

	res := run(t, env, "", "--force", "stow")
	require.NoError(t, res.err)
	env.AssertLinked(t, "git", ".gitconfig")
	env.AssertBackedUp(t, ".config/git/ignore", "old ignore")

	res = run(t, env, "", "restore")
	require.NoError(t, res.err)
	env.AssertRegularFile(t, filepath.Join(env.TargetRoot, ".gitconfig"), "old")
	env.AssertRegularFile(t, filepath.Join(env.TargetRoot, ".config/git/ignore"), "old ignore")
	env.AssertNotExists(t, env.BackupRoot)
	assert.Regexp(t, `restore\s+\.gitconfig`, res.stdout)
}

func TestStow_ForceOverDirectoryAndRestore(t *testing.T) {
	env := newEnv(t)
	env.SetupPackage("vim", testutil.FileTree{".vimrc": "set nu"})
	env.WriteTarget(testutil.FileTree{".vimrc/old.txt": "old"})

	res := run(t, env, "", "--force", "stow", "vim")
	require.NoError(t, res.err)
	env.AssertLinked(t, "vim", ".vimrc")

	res = run(t, env, "", "restore")
	require.NoError(t, res.err)
	info, err := os.Lstat(filepath.Join(env.TargetRoot, ".vimrc"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	env.AssertRegularFile(t, filepath.Join(env.TargetRoot, ".vimrc/old.txt"), "old")
	env.AssertRegularFile(t, filepath.Join(env.SourceRoot, "vim/.vimrc"), "set nu")
	env.AssertNotExists(t, env.BackupRoot)
}

func TestRestore_Incomplete(t *testing.T) {
	env := newEnv(t)
	env.WriteTarget(testutil.FileTree{
		".dotfiles-backup/.b": "b",
		".b/inner":            "x",
	})

	res := run(t, env, "", "restore")

	require.Error(t, res.err)
	assert.True(t, IsSilent(res.err))
	assert.Equal(t, MsgErrRestore, res.err.Error())
	env.AssertRegularFile(t, filepath.Join(env.BackupRoot, ".b"), "b")
}

func TestStow_DryRun(t *testing.T) {
	env := newEnv(t)
	env.SetupPackage("zsh", testutil.FileTree{".zshrc": "new", ".zsh/aliases": "a"})
	env.WriteTarget(testutil.FileTree{".zshrc": "old"})

	res := run(t, env, "", "--dry-run", "stow", "zsh")

	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "stow (dry run)")
	assert.Contains(t, res.stdout, "would back up")
	assert.Contains(t, res.stdout, "would link")
	env.AssertRegularFile(t, filepath.Join(env.TargetRoot, ".zshrc"), "old")
	env.AssertNotExists(t, filepath.Join(env.TargetRoot, ".zsh"))
	env.AssertNotExists(t, env.BackupRoot)
}

func TestStow_MissingPackageFailsBatch(t *testing.T) {
	env := newEnv(t)
	env.SetupPackage("vim", testutil.FileTree{".vimrc": ""})

	res := run(t, env, "", "stow", "nope", "vim")

	require.Error(t, res.err)
	assert.True(t, IsSilent(res.err))
	assert.Contains(t, res.err.Error(), "1 of 2")
	env.AssertLinked(t, "vim", ".vimrc")
}

func TestUnstowAndRestow(t *testing.T) {
	env := newEnv(t)
	env.SetupPackage("vim", testutil.FileTree{".vimrc": ""})
	require.NoError(t, run(t, env, "", "stow", "vim").err)

	// A file added after stowing is only linked by restow
	env.SetupPackage("vim", testutil.FileTree{".gvimrc": ""})
	res := run(t, env, "", "restow", "vim")
	require.NoError(t, res.err)
	env.AssertLinked(t, "vim", ".vimrc")
	env.AssertLinked(t, "vim", ".gvimrc")

	res = run(t, env, "", "unstow", "vim")
	require.NoError(t, res.err)
	env.AssertNotExists(t, filepath.Join(env.TargetRoot, ".vimrc"))
	env.AssertNotExists(t, filepath.Join(env.TargetRoot, ".gvimrc"))
	assert.Contains(t, res.stdout, "unlink")
}

func TestStatus_JSON(t *testing.T) {
	env := newEnv(t)
	env.SetupPackage("vim", testutil.FileTree{".vimrc": ""})
	env.SetupPackage("zsh", testutil.FileTree{".zshrc": ""})
	require.NoError(t, run(t, env, "", "stow", "vim").err)

	res := run(t, env, "", "--format", "json", "status", "vim", "zsh", "gone")

	require.NoError(t, res.err, "status never fails on unstowed packages")
	var report struct {
		SourceRootExists bool `json:"sourceRootExists"`
		Packages         []struct {
			Package   string   `json:"package"`
			Exists    bool     `json:"exists"`
			Stowed    bool     `json:"stowed"`
			Conflicts []string `json:"conflicts"`
		} `json:"packages"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &report))
	assert.True(t, report.SourceRootExists)
	require.Len(t, report.Packages, 3)
	assert.True(t, report.Packages[0].Stowed)
	assert.False(t, report.Packages[1].Stowed)
	assert.Equal(t, []string{".zshrc"}, report.Packages[1].Conflicts)
	assert.False(t, report.Packages[2].Exists)
}

func TestList_MarksConfigured(t *testing.T) {
	env := newEnv(t)
	env.SetupPackage("vim", testutil.FileTree{".vimrc": ""})
	env.SetupPackage("zsh", testutil.FileTree{".zshrc": ""})
	configPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("packages = [\"zsh\"]\n"), 0644))

	res := run(t, env, "", "--config", configPath, "list")

	require.NoError(t, res.err)
	assert.Equal(t, "vim\nzsh (configured)\n", res.stdout)
}

func TestConfig(t *testing.T) {
	env := newEnv(t)

	res := run(t, env, "", "config")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "source_root")
	assert.Contains(t, res.stdout, env.SourceRoot)

	res = run(t, env, "", "config", "--init")
	require.NoError(t, res.err)
	assert.Equal(t, config.GenerateConfigContent(), res.stdout)
}

func TestConfig_MissingFile(t *testing.T) {
	env := newEnv(t)

	res := run(t, env, "", "--config", filepath.Join(t.TempDir(), "none.toml"), "stow")

	require.Error(t, res.err)
	assert.False(t, IsSilent(res.err))
	assert.Contains(t, res.err.Error(), "failed to load configuration")
}

func TestVersionAndCompletion(t *testing.T) {
	env := newEnv(t)

	res := run(t, env, "", "version")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "dotstow version")

	res = run(t, env, "", "completion", "bash")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "dotstow")

	res = run(t, env, "", "completion", "tcsh")
	assert.Error(t, res.err)
}

func TestMan(t *testing.T) {
	env := newEnv(t)
	dir := filepath.Join(t.TempDir(), "man")

	res := run(t, env, "", "man", "--dir", dir)

	require.NoError(t, res.err)
	_, err := os.Stat(filepath.Join(dir, "dotstow.1"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "dotstow-stow.1"))
	assert.NoError(t, err)
}

func TestNoCommand(t *testing.T) {
	env := newEnv(t)

	res := run(t, env, "")

	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), MsgNoCommand)
	assert.Contains(t, res.stdout, "stow")
}

func TestBadFormat(t *testing.T) {
	env := newEnv(t)

	res := run(t, env, "", "--format", "xml", "list")

	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "unknown format")
}

func TestHelpTopics(t *testing.T) {
	env := newEnv(t)

	res := run(t, env, "", "help", "topics")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "  conflicts\n")
	assert.Contains(t, res.stdout, "  --dry-run\n")

	res = run(t, env, "", "help", "force")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "# --force")

	res = run(t, env, "", "help", "backups")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "dotstow restore")
}
