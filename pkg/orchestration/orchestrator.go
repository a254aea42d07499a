package orchestration

import (
	"context"
	"fmt"
	"strings"

	"github.com/arthur-debert/dotstow/pkg/backup"
	"github.com/arthur-debert/dotstow/pkg/errors"
	"github.com/arthur-debert/dotstow/pkg/filesystem"
	"github.com/arthur-debert/dotstow/pkg/linker"
	"github.com/arthur-debert/dotstow/pkg/logging"
	"github.com/arthur-debert/dotstow/pkg/paths"
	"github.com/arthur-debert/dotstow/pkg/scanner"
	"github.com/arthur-debert/dotstow/pkg/status"
	"github.com/arthur-debert/dotstow/pkg/types"
	"github.com/rs/zerolog"
)

// Orchestrator runs stow operations over packages
type Orchestrator struct {
	opts      Options
	fs        types.FS
	paths     *paths.Paths
	scanner   *scanner.Scanner
	backups   *backup.Store
	applier   *linker.Applier
	inspector *status.Inspector
	logger    zerolog.Logger
}

// New wires the engine components for one invocation
func New(opts Options) (*Orchestrator, error) {
	if opts.Config == nil {
		return nil, errors.New(errors.ErrInvalidInput, "orchestrator needs a configuration")
	}
	if opts.Config.Paths() == nil {
		if err := opts.Config.Resolve(); err != nil {
			return nil, err
		}
	}
	if opts.FileSystem == nil {
		opts.FileSystem = filesystem.NewOS()
	}
	if opts.Confirm == nil {
		opts.Confirm = types.NeverConfirm
	}

	p := opts.Config.Paths()
	fsys := opts.FileSystem
	sc := scanner.New(fsys, p.TargetRoot(), opts.Config.Ignore)
	store := backup.New(fsys, p.BackupRoot(), opts.DryRun)

	return &Orchestrator{
		opts:      opts,
		fs:        fsys,
		paths:     p,
		scanner:   sc,
		backups:   store,
		applier:   linker.New(fsys, sc, store, opts.DryRun),
		inspector: status.New(sc),
		logger:    logging.GetLogger("orchestration"),
	}, nil
}

// Available lists the package directories found under the source root
func (o *Orchestrator) Available() ([]string, error) {
	return scanner.ListAvailable(o.fs, o.paths.SourceRoot(), o.opts.Config.Ignore)
}

// Configured returns the packages named in the configuration
func (o *Orchestrator) Configured() []string {
	return o.opts.Config.Packages
}

// expand turns the requested names into the list to process. No names, or
// any name equal to AllPackages, means the configured packages, or every
// available package when none are configured. Duplicates are dropped.
func (o *Orchestrator) expand(names []string) ([]string, error) {
	all := len(names) == 0
	for _, name := range names {
		if name == AllPackages {
			all = true
		}
	}

	if all {
		names = o.opts.Config.Packages
		if len(names) == 0 {
			available, err := o.Available()
			if err != nil {
				return nil, err
			}
			names = available
		}
	}

	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out, nil
}

func (o *Orchestrator) pkg(name string) types.Package {
	return types.Package{Name: name, SourceRoot: o.paths.PackagePath(name)}
}

// Run applies mode to each package in order. Failures are recorded and the
// batch continues; cancellation stops before the next package and records
// the remaining ones as cancelled.
func (o *Orchestrator) Run(ctx context.Context, names []string, mode types.Mode) *types.BatchReport {
	report := &types.BatchReport{Mode: mode, DryRun: o.opts.DryRun}

	selected, err := o.expand(names)
	if err != nil {
		o.logger.Error().Err(err).Msg("Failed to resolve packages")
		report.Add(types.NewPackageReport(&types.PackageResult{
			Package: AllPackages,
			Mode:    mode,
			DryRun:  o.opts.DryRun,
			Err:     err,
		}))
		return report
	}

	o.logger.Info().
		Str("mode", mode.String()).
		Strs("packages", selected).
		Bool("dryRun", o.opts.DryRun).
		Bool("force", o.opts.Force).
		Msg("Starting run")

	for i, name := range selected {
		if err := ctx.Err(); err != nil {
			for _, rest := range selected[i:] {
				report.Add(types.NewPackageReport(&types.PackageResult{
					Package: rest,
					Mode:    mode,
					DryRun:  o.opts.DryRun,
					Err:     errors.Wrap(err, errors.ErrCancelled, "cancelled before processing").WithDetail("package", rest),
				}))
			}
			o.logger.Warn().Int("skipped", len(selected)-i).Msg("Run cancelled")
			break
		}

		result := o.runOne(ctx, name, mode)
		report.Add(types.NewPackageReport(result))
	}

	o.logger.Info().
		Str("mode", mode.String()).
		Int("packages", len(report.Packages)).
		Strs("failed", report.FailedPackages()).
		Msg("Run completed")
	return report
}

func (o *Orchestrator) runOne(ctx context.Context, name string, mode types.Mode) *types.PackageResult {
	logger := o.logger.With().Str("package", name).Logger()
	result := &types.PackageResult{Package: name, Mode: mode, DryRun: o.opts.DryRun}

	if err := paths.ValidatePackageName(name); err != nil {
		result.Err = err
		return result
	}
	pkg := o.pkg(name)

	plan, err := o.scanner.Plan(pkg)
	if err != nil {
		if mode == types.ModeUnstow && errors.IsErrorCode(err, errors.ErrPackageNotFound) {
			// Nothing of a missing package can be linked
			logger.Warn().Msg("Package directory missing, nothing to unstow")
			return result
		}
		logger.Error().Err(err).Msg("Failed to scan package")
		result.Err = err
		return result
	}

	resolution := types.ResolutionAbort
	if conflicts := plan.Conflicts(); mode != types.ModeUnstow && len(conflicts) > 0 {
		resolution = o.resolve(logger, pkg, conflicts)
	}

	return o.applier.ApplyPlan(ctx, plan, mode, resolution)
}

// resolve decides whether conflicts are adopted. Force and dry-run adopt
// without asking; otherwise the user is asked once per package.
func (o *Orchestrator) resolve(logger zerolog.Logger, pkg types.Package, conflicts []types.ConflictRecord) types.ConflictResolution {
	switch {
	case o.opts.Force:
		logger.Info().Int("conflicts", len(conflicts)).Msg("Adopting conflicts (forced)")
		return types.ResolutionAdopt
	case o.opts.DryRun:
		logger.Info().Int("conflicts", len(conflicts)).Msg("Dry run, showing what adoption would do")
		return types.ResolutionAdopt
	case o.opts.Confirm(ConflictPrompt(pkg.Name, conflicts, o.paths.BackupRoot())):
		logger.Info().Int("conflicts", len(conflicts)).Msg("Adoption confirmed")
		return types.ResolutionAdopt
	default:
		logger.Warn().Int("conflicts", len(conflicts)).Msg("Adoption declined, conflicts left in place")
		return types.ResolutionAbort
	}
}

// ConflictPrompt builds the confirmation question for a package's
// conflicts, listing at most MaxPromptConflicts of them.
func ConflictPrompt(pkgName string, conflicts []types.ConflictRecord, backupRoot string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Package %s has %d conflicting file(s):\n", pkgName, len(conflicts))
	for i, c := range conflicts {
		if i == MaxPromptConflicts {
			fmt.Fprintf(&b, "  ... and %d more\n", len(conflicts)-MaxPromptConflicts)
			break
		}
		if c.BlockedBy != "" {
			fmt.Fprintf(&b, "  %s (%s, blocked by %s)\n", c.RelativePath, c.Kind, c.BlockedBy)
			continue
		}
		fmt.Fprintf(&b, "  %s (%s)\n", c.RelativePath, c.Kind)
	}
	fmt.Fprintf(&b, "Move them to %s and link in their place?", backupRoot)
	return b.String()
}

// Restore moves every backed up file back into the target root
func (o *Orchestrator) Restore(ctx context.Context) *types.RestoreResult {
	if err := ctx.Err(); err != nil {
		return &types.RestoreResult{
			DryRun:   o.opts.DryRun,
			Restored: []string{},
			Error:    errors.Wrap(err, errors.ErrCancelled, "restore cancelled").Error(),
		}
	}

	result, err := o.backups.Restore(o.paths.TargetRoot())
	if err != nil {
		o.logger.Error().Err(err).Msg("Restore failed")
		result.Error = err.Error()
	}
	return result
}

// Status reports on each package without changing anything
func (o *Orchestrator) Status(names []string) *types.StatusReport {
	report := &types.StatusReport{
		SourceRoot: o.paths.SourceRoot(),
		Packages:   []types.PackageStatus{},
	}
	report.SourceRootExists, _ = filesystem.Exists(o.fs, o.paths.SourceRoot())

	selected, err := o.expand(names)
	if err != nil {
		o.logger.Warn().Err(err).Msg("Failed to resolve packages")
		report.Packages = append(report.Packages, types.PackageStatus{
			Package:   AllPackages,
			Conflicts: []string{},
			Error:     err.Error(),
		})
		return report
	}

	for _, name := range selected {
		if err := paths.ValidatePackageName(name); err != nil {
			report.Packages = append(report.Packages, types.PackageStatus{
				Package:   name,
				Conflicts: []string{},
				Error:     err.Error(),
			})
			continue
		}
		st, err := o.inspector.Status(o.pkg(name))
		if err != nil {
			o.logger.Warn().Err(err).Str("package", name).Msg("Status check failed")
		}
		report.Packages = append(report.Packages, st)
	}
	return report
}
