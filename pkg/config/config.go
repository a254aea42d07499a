package config

import (
	"path/filepath"

	"github.com/arthur-debert/dotstow/pkg/errors"
	"github.com/arthur-debert/dotstow/pkg/paths"
	toml "github.com/pelletier/go-toml/v2"
)

// Config is the effective dotstow configuration
type Config struct {
	SourceRoot string   `koanf:"source_root" toml:"source_root" json:"source_root"`
	TargetRoot string   `koanf:"target_root" toml:"target_root" json:"target_root"`
	BackupRoot string   `koanf:"backup_root" toml:"backup_root" json:"backup_root"`
	Packages   []string `koanf:"packages" toml:"packages" json:"packages"`
	Ignore     []string `koanf:"ignore" toml:"ignore" json:"ignore"`

	// Source is the config file that was loaded, if any
	Source string `koanf:"-" toml:"-" json:"-"`

	paths *paths.Paths
}

// Paths returns the resolved roots. It is only set on configs returned by
// Load or Resolve.
func (c *Config) Paths() *paths.Paths {
	return c.paths
}

// Resolve expands the roots, fills in defaults and writes the absolute
// values back into the config.
func (c *Config) Resolve() error {
	p, err := paths.New(paths.Roots{
		Source: c.SourceRoot,
		Target: c.TargetRoot,
		Backup: c.BackupRoot,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrConfigValid, "invalid root")
	}
	c.paths = p
	c.SourceRoot = p.SourceRoot()
	c.TargetRoot = p.TargetRoot()
	c.BackupRoot = p.BackupRoot()
	return nil
}

// Validate checks package names, ignore patterns and root layout. The roots
// must already be resolved.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Packages))
	for _, name := range c.Packages {
		if err := paths.ValidatePackageName(name); err != nil {
			return errors.Wrapf(err, errors.ErrConfigValid, "invalid package %q", name)
		}
		if seen[name] {
			return errors.Newf(errors.ErrConfigValid, "package %q listed twice", name).
				WithDetail("package", name)
		}
		seen[name] = true
	}

	for _, pattern := range c.Ignore {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return errors.Wrapf(err, errors.ErrConfigValid, "invalid ignore pattern %q", pattern)
		}
	}

	if c.paths == nil {
		if err := c.Resolve(); err != nil {
			return err
		}
	}
	source, target, backup := c.SourceRoot, c.TargetRoot, c.BackupRoot

	switch {
	case source == target:
		return errors.New(errors.ErrConfigValid, "source_root and target_root are the same directory").
			WithDetail("path", source)
	case paths.ContainsPath(source, target):
		return errors.New(errors.ErrConfigValid, "target_root is inside source_root").
			WithDetails(map[string]interface{}{"source_root": source, "target_root": target})
	case backup == target:
		return errors.New(errors.ErrConfigValid, "backup_root and target_root are the same directory").
			WithDetail("path", backup)
	case paths.ContainsPath(source, backup):
		return errors.New(errors.ErrConfigValid, "backup_root is inside source_root").
			WithDetails(map[string]interface{}{"source_root": source, "backup_root": backup})
	case paths.ContainsPath(backup, source):
		return errors.New(errors.ErrConfigValid, "source_root is inside backup_root").
			WithDetails(map[string]interface{}{"source_root": source, "backup_root": backup})
	}

	return nil
}

// Marshal renders the configuration as TOML
func Marshal(cfg *Config) ([]byte, error) {
	out, err := toml.Marshal(cfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to render configuration")
	}
	return out, nil
}
