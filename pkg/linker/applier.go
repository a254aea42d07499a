package linker

import (
	"context"
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/dotstow/pkg/backup"
	"github.com/arthur-debert/dotstow/pkg/errors"
	"github.com/arthur-debert/dotstow/pkg/filesystem"
	"github.com/arthur-debert/dotstow/pkg/logging"
	"github.com/arthur-debert/dotstow/pkg/scanner"
	"github.com/arthur-debert/dotstow/pkg/types"
	"github.com/rs/zerolog"
)

// Applier realizes stow, restow and unstow on one package at a time
type Applier struct {
	fs      types.FS
	scanner *scanner.Scanner
	backups *backup.Store
	dryRun  bool
	logger  zerolog.Logger
}

// New creates an applier. The backup store is used for adopted conflicts.
func New(fsys types.FS, sc *scanner.Scanner, backups *backup.Store, dryRun bool) *Applier {
	return &Applier{
		fs:      fsys,
		scanner: sc,
		backups: backups,
		dryRun:  dryRun,
		logger:  logging.GetLogger("linker"),
	}
}

// DryRun reports whether mutations are only logged
func (a *Applier) DryRun() bool {
	return a.dryRun
}

// Apply plans the package and executes mode against it
func (a *Applier) Apply(ctx context.Context, pkg types.Package, mode types.Mode, resolution types.ConflictResolution) *types.PackageResult {
	result := a.newResult(pkg, mode)
	if err := ctx.Err(); err != nil {
		result.Err = errors.Wrap(err, errors.ErrCancelled, "cancelled before start")
		return result
	}

	plan, err := a.scanner.Plan(pkg)
	if err != nil {
		result.Err = err
		return result
	}
	return a.execute(plan, mode, resolution, result)
}

// ApplyPlan executes mode against a plan the caller already has. The plan
// must be fresh; targets changed since scanning are not re-checked except
// for the symlink test before any removal.
func (a *Applier) ApplyPlan(ctx context.Context, plan *types.Plan, mode types.Mode, resolution types.ConflictResolution) *types.PackageResult {
	result := a.newResult(plan.Package, mode)
	if err := ctx.Err(); err != nil {
		result.Err = errors.Wrap(err, errors.ErrCancelled, "cancelled before start")
		return result
	}
	return a.execute(plan, mode, resolution, result)
}

func (a *Applier) newResult(pkg types.Package, mode types.Mode) *types.PackageResult {
	return &types.PackageResult{Package: pkg.Name, Mode: mode, DryRun: a.dryRun}
}

func (a *Applier) execute(plan *types.Plan, mode types.Mode, resolution types.ConflictResolution, result *types.PackageResult) *types.PackageResult {
	logger := a.logger.With().
		Str("package", plan.Package.Name).
		Str("mode", mode.String()).
		Bool("dryRun", a.dryRun).
		Logger()
	done := logging.LogOperationStart(logger, "apply")
	defer done()

	switch mode {
	case types.ModeStow:
		a.stow(logger, plan, resolution, result)
	case types.ModeUnstow:
		a.unstow(logger, plan, result)
	case types.ModeRestow:
		a.unstow(logger, plan, result)
		if result.Err == nil {
			a.stow(logger, afterUnstow(plan, result.Unlinked), resolution, result)
		}
	default:
		result.Err = errors.Newf(errors.ErrInvalidInput, "unknown mode %d", int(mode))
	}

	event := logger.Info()
	if !result.Succeeded() {
		event = logger.Warn()
	}
	event.
		Int("linked", len(result.Linked)).
		Int("unlinked", len(result.Unlinked)).
		Int("alreadyLinked", len(result.AlreadyLinked)).
		Int("backedUp", len(result.BackedUp)).
		Int("conflicts", len(result.Conflicts)).
		Int("failed", len(result.Failed)).
		AnErr("error", result.Err).
		Msg("Package applied")
	return result
}

// afterUnstow returns a copy of plan in which the unlinked entries are absent
func afterUnstow(plan *types.Plan, unlinked []string) *types.Plan {
	gone := make(map[string]bool, len(unlinked))
	for _, rel := range unlinked {
		gone[rel] = true
	}
	next := &types.Plan{Package: plan.Package, Entries: make([]types.PlanEntry, len(plan.Entries))}
	for i, e := range plan.Entries {
		if gone[e.RelativePath] {
			e.State = types.Absent
			e.LinkDest = ""
		}
		next.Entries[i] = e
	}
	return next
}

func (a *Applier) stow(logger zerolog.Logger, plan *types.Plan, resolution types.ConflictResolution, result *types.PackageResult) {
	// Ancestors already moved aside; several entries can share one
	movedBlockers := make(map[string]bool)

	for _, entry := range plan.Entries {
		switch {
		case entry.State == types.LinkedToThisSource:
			logger.Trace().Str("path", entry.RelativePath).Msg("Already linked")
			result.AlreadyLinked = append(result.AlreadyLinked, entry.RelativePath)
			continue

		case entry.State.IsConflict():
			conflict := entry.Conflict(plan.Package.Name)
			if resolution != types.ResolutionAdopt {
				logger.Warn().
					Str("path", entry.RelativePath).
					Str("kind", entry.State.String()).
					Msg("Conflict left in place")
				result.Conflicts = append(result.Conflicts, conflict)
				continue
			}
			if conflict.BlockedBy != "" && movedBlockers[conflict.BlockedBy] {
				logger.Trace().Str("path", entry.RelativePath).Str("blockedBy", conflict.BlockedBy).Msg("Blocker already moved")
				break
			}
			record, err := a.backups.BackupOne(conflict)
			if err != nil {
				if a.fatal(logger, entry, err, result) {
					return
				}
				continue
			}
			if conflict.BlockedBy != "" {
				movedBlockers[conflict.BlockedBy] = true
			}
			result.BackedUp = append(result.BackedUp, record)
		}

		if err := a.link(logger, entry); err != nil {
			if a.fatal(logger, entry, err, result) {
				return
			}
			continue
		}
		result.Linked = append(result.Linked, entry.RelativePath)
	}
}

func (a *Applier) link(logger zerolog.Logger, entry types.PlanEntry) error {
	parent := filepath.Dir(entry.TargetAbsolute)

	if a.dryRun {
		if exists, _ := filesystem.Exists(a.fs, parent); !exists {
			logger.Info().Str("dir", parent).Msg("Would create directory")
		}
		logger.Info().
			Str("target", entry.TargetAbsolute).
			Str("source", entry.SourceAbsolute).
			Msg("Would link")
		return nil
	}

	if err := a.fs.MkdirAll(parent, 0755); err != nil {
		return errors.FromFS(err, errors.ErrDirCreate, "cannot create target directory").
			WithDetail("path", parent)
	}
	if err := a.fs.Symlink(entry.SourceAbsolute, entry.TargetAbsolute); err != nil {
		return errors.FromFS(err, errors.ErrSymlinkCreate, "cannot create symlink").
			WithDetail("target", entry.TargetAbsolute).
			WithDetail("source", entry.SourceAbsolute)
	}
	logger.Debug().
		Str("target", entry.TargetAbsolute).
		Str("source", entry.SourceAbsolute).
		Msg("Linked")
	return nil
}

func (a *Applier) unstow(logger zerolog.Logger, plan *types.Plan, result *types.PackageResult) {
	for _, entry := range plan.Entries {
		if entry.State != types.LinkedToThisSource {
			logger.Trace().
				Str("path", entry.RelativePath).
				Str("state", entry.State.String()).
				Msg("Not linked to this package, leaving alone")
			continue
		}

		// Files reached through a folded parent directory are the source
		// files themselves; only a link at the target itself may go.
		info, err := a.fs.Lstat(entry.TargetAbsolute)
		if err != nil || info.Mode()&fs.ModeSymlink == 0 {
			logger.Debug().Str("path", entry.RelativePath).Msg("Target is not a symlink, leaving alone")
			continue
		}

		if a.dryRun {
			logger.Info().Str("target", entry.TargetAbsolute).Msg("Would unlink")
			result.Unlinked = append(result.Unlinked, entry.RelativePath)
			continue
		}

		if err := a.fs.Remove(entry.TargetAbsolute); err != nil {
			err = errors.FromFS(err, errors.ErrSymlinkRemove, "cannot remove symlink").
				WithDetail("target", entry.TargetAbsolute)
			if a.fatal(logger, entry, err, result) {
				return
			}
			continue
		}
		logger.Debug().Str("target", entry.TargetAbsolute).Msg("Unlinked")
		result.Unlinked = append(result.Unlinked, entry.RelativePath)
	}
}

// fatal records err for entry. Permission failures stop the package and
// return true; anything else is a per-file failure.
func (a *Applier) fatal(logger zerolog.Logger, entry types.PlanEntry, err error, result *types.PackageResult) bool {
	if errors.IsPermission(err) {
		logger.Error().Err(err).Str("path", entry.RelativePath).Msg("Permission denied, stopping package")
		result.Err = err
		return true
	}
	logger.Error().Err(err).Str("path", entry.RelativePath).Msg("File failed")
	result.Failed = append(result.Failed, types.FileError{RelativePath: entry.RelativePath, Err: err})
	return false
}
