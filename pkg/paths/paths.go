package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/dotstow/pkg/errors"
)

// Environment variable names
const (
	// EnvDotfilesRoot is the fallback environment variable for the source root
	EnvDotfilesRoot = "DOTFILES_ROOT"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files
const (
	// DefaultDotfilesDir is the default source root, relative to home
	DefaultDotfilesDir = "dotfiles"

	// DefaultBackupDir is the default backup root, relative to the target root
	DefaultBackupDir = ".dotfiles-backup"

	// AppDirName is the directory name dotstow uses under the XDG dirs
	AppDirName = "dotstow"

	// ConfigFileName is the name of the user configuration file
	ConfigFileName = "config.toml"

	// StylesFileName overrides the terminal styles when present next to the
	// config file
	StylesFileName = "styles.yaml"
)

// Roots are the user supplied roots. Empty fields get defaults.
type Roots struct {
	Source string
	Target string
	Backup string
}

// Paths resolves package, target and backup locations. Every root is
// absolute and clean.
type Paths struct {
	sourceRoot string
	targetRoot string
	backupRoot string
}

// New creates a Paths value from roots, expanding ~ and environment
// variables and filling in defaults.
func New(roots Roots) (*Paths, error) {
	target := roots.Target
	if target == "" {
		target = HomeDir()
	}
	target, err := absolute(target, "target root")
	if err != nil {
		return nil, err
	}

	source := roots.Source
	if source == "" {
		source = os.Getenv(EnvDotfilesRoot)
	}
	if source == "" {
		source = filepath.Join(HomeDir(), DefaultDotfilesDir)
	}
	source, err = absolute(source, "source root")
	if err != nil {
		return nil, err
	}

	backup := roots.Backup
	if backup == "" {
		backup = filepath.Join(target, DefaultBackupDir)
	}
	backup, err = absolute(backup, "backup root")
	if err != nil {
		return nil, err
	}

	return &Paths{sourceRoot: source, targetRoot: target, backupRoot: backup}, nil
}

func absolute(path, what string) (string, error) {
	if err := ValidatePath(path); err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput, "invalid %s", what)
	}
	abs, err := filepath.Abs(ExpandHome(os.ExpandEnv(path)))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for %s", what)
	}
	return abs, nil
}

// SourceRoot returns the directory holding the packages
func (p *Paths) SourceRoot() string {
	return p.sourceRoot
}

// TargetRoot returns the directory packages are linked into
func (p *Paths) TargetRoot() string {
	return p.targetRoot
}

// BackupRoot returns the directory conflicting targets are moved to
func (p *Paths) BackupRoot() string {
	return p.backupRoot
}

// PackagePath returns the source directory of a package
func (p *Paths) PackagePath(name string) string {
	return filepath.Join(p.sourceRoot, name)
}

// TargetPath maps a package-relative path onto the target root
func (p *Paths) TargetPath(relPath string) string {
	return filepath.Join(p.targetRoot, relPath)
}

// BackupPath maps a target-relative path onto the backup root
func (p *Paths) BackupPath(relPath string) string {
	return filepath.Join(p.backupRoot, relPath)
}

// Rel returns path relative to root, failing when path is not inside root.
func Rel(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput, "cannot make %s relative to %s", path, root)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Newf(errors.ErrInvalidInput, "%s is outside %s", path, root).
			WithDetail("root", root).
			WithDetail("path", path)
	}
	return rel, nil
}

// ConfigFilePath returns the default user configuration file location.
// XDG_CONFIG_HOME is re-read on each call; xdg caches it at startup.
func ConfigFilePath() string {
	return filepath.Join(configDir(), ConfigFileName)
}

// StylesFilePath returns the location of the optional styles override
func StylesFilePath() string {
	return filepath.Join(configDir(), StylesFileName)
}

func configDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if !filepath.IsAbs(base) {
		base = xdg.ConfigHome
	}
	return filepath.Join(base, AppDirName)
}

// HomeDir returns the user's home directory, falling back to $HOME and
// then the XDG home.
func HomeDir() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return home
	}
	if home := os.Getenv(EnvHome); home != "" {
		return home
	}
	return xdg.Home
}

// ExpandHome expands a leading ~ to the home directory. ~user forms are
// returned unchanged.
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	if len(path) == 1 {
		return HomeDir()
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(HomeDir(), path[2:])
	}
	return path
}
