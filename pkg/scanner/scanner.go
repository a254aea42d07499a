package scanner

import (
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/arthur-debert/dotstow/pkg/errors"
	"github.com/arthur-debert/dotstow/pkg/filesystem"
	"github.com/arthur-debert/dotstow/pkg/logging"
	"github.com/arthur-debert/dotstow/pkg/types"
	"github.com/rs/zerolog"
)

// Scanner classifies package files against a target root. It never mutates
// the filesystem.
type Scanner struct {
	fs         types.FS
	targetRoot string
	ignore     []string
	logger     zerolog.Logger
}

// New creates a scanner. A nil ignore list means DefaultIgnorePatterns; pass
// an empty non-nil slice to ignore nothing.
func New(fsys types.FS, targetRoot string, ignore []string) *Scanner {
	if ignore == nil {
		ignore = DefaultIgnorePatterns
	}
	return &Scanner{
		fs:         fsys,
		targetRoot: filepath.Clean(targetRoot),
		ignore:     ignore,
		logger:     logging.GetLogger("scanner"),
	}
}

// TargetRoot returns the root target paths are computed under
func (s *Scanner) TargetRoot() string {
	return s.targetRoot
}

// Enumerate lists every file under the package source tree in lexicographic
// order of relative path. Directories are not returned; symlinks inside the
// package are returned as files and not followed.
func (s *Scanner) Enumerate(pkg types.Package) ([]types.FileEntry, error) {
	info, err := s.fs.Stat(pkg.SourceRoot)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(err, errors.ErrPackageNotFound, "package directory does not exist").
				WithDetail("package", pkg.Name).
				WithDetail("path", pkg.SourceRoot)
		}
		return nil, errors.FromFS(err, errors.ErrPackageScan, "cannot access package directory").
			WithDetail("package", pkg.Name).
			WithDetail("path", pkg.SourceRoot)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrPackageNotFound, "package path is not a directory").
			WithDetail("package", pkg.Name).
			WithDetail("path", pkg.SourceRoot)
	}

	root := filepath.Clean(pkg.SourceRoot)
	walkRoot := root
	if linfo, err := s.fs.Lstat(root); err == nil && linfo.Mode()&fs.ModeSymlink != 0 {
		// Walk does not descend into links; walk the real directory and
		// report paths under the package's own name.
		if walkRoot, err = filesystem.Resolve(s.fs, root); err != nil {
			return nil, errors.FromFS(err, errors.ErrPackageScan, "cannot resolve package directory").
				WithDetail("package", pkg.Name)
		}
	}
	var entries []types.FileEntry

	err = filesystem.Walk(s.fs, walkRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return errors.FromFS(walkErr, errors.ErrPackageScan, "failed to read package tree").
				WithDetail("package", pkg.Name).
				WithDetail("path", path)
		}
		if path == walkRoot {
			return nil
		}

		rel, err := filepath.Rel(walkRoot, path)
		if err != nil {
			return errors.Wrap(err, errors.ErrInternal, "walked outside package")
		}

		if d.Name() == IgnoreFileName || MatchesIgnore(d.Name(), s.ignore) {
			s.logger.Trace().Str("package", pkg.Name).Str("path", rel).Msg("Skipping ignored entry")
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		switch {
		case d.IsDir():
			if hasIgnoreFile(s.fs, path) {
				s.logger.Debug().Str("package", pkg.Name).Str("dir", rel).Msg("Skipping directory with ignore file")
				return filepath.SkipDir
			}
		case d.Type().IsRegular() || d.Type()&fs.ModeSymlink != 0:
			entries = append(entries, types.FileEntry{
				RelativePath:   rel,
				SourceAbsolute: filepath.Join(root, rel),
			})
		default:
			s.logger.Debug().Str("package", pkg.Name).Str("path", rel).Msg("Skipping special file")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Walk order puts "a/b" before "a.txt"; plans are ordered by path string
	sort.Slice(entries, func(i, j int) bool { return entries[i].RelativePath < entries[j].RelativePath })

	s.logger.Trace().Str("package", pkg.Name).Int("files", len(entries)).Msg("Enumerated package")
	return entries, nil
}

// Classify determines what occupies the target path of one entry
func (s *Scanner) Classify(entry types.FileEntry) (types.PlanEntry, error) {
	planned := types.PlanEntry{
		FileEntry:      entry,
		TargetAbsolute: filepath.Join(s.targetRoot, entry.RelativePath),
	}

	info, err := s.fs.Lstat(planned.TargetAbsolute)
	switch {
	case err == nil:
	case stderrors.Is(err, fs.ErrNotExist):
		planned.State = types.Absent
		return planned, nil
	case stderrors.Is(err, syscall.ENOTDIR):
		// A parent of the target is a file, which blocks the link as much as
		// a file at the target itself would.
		planned.State = types.ConflictFile
		if rel, ok := s.blocker(entry.RelativePath); ok {
			planned.BlockedBy = rel
			planned.BlockedByAbsolute = filepath.Join(s.targetRoot, rel)
		}
		return planned, nil
	default:
		return planned, errors.FromFS(err, errors.ErrFileAccess, "cannot inspect target").
			WithDetail("path", planned.TargetAbsolute)
	}

	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		return s.classifyLink(planned)
	case info.IsDir():
		planned.State = types.ConflictDir
	case s.isSourceItself(planned):
		// Reached through a parent directory that links into the package
		planned.State = types.LinkedToThisSource
	default:
		planned.State = types.ConflictFile
	}
	return planned, nil
}

// blocker returns the first ancestor of rel, relative to the target root,
// that does not resolve to a directory.
func (s *Scanner) blocker(rel string) (string, bool) {
	current := ""
	for _, part := range strings.Split(filepath.Dir(rel), string(filepath.Separator)) {
		current = filepath.Join(current, part)
		info, err := s.fs.Stat(filepath.Join(s.targetRoot, current))
		if err != nil {
			return "", false
		}
		if !info.IsDir() {
			return current, true
		}
	}
	return "", false
}

func (s *Scanner) isSourceItself(planned types.PlanEntry) bool {
	same, err := filesystem.SameFile(s.fs, planned.TargetAbsolute, planned.SourceAbsolute)
	return err == nil && same
}

func (s *Scanner) classifyLink(planned types.PlanEntry) (types.PlanEntry, error) {
	dest, err := filesystem.LinkDest(s.fs, planned.TargetAbsolute)
	if err != nil {
		return planned, errors.FromFS(err, errors.ErrFileAccess, "cannot read target link").
			WithDetail("path", planned.TargetAbsolute)
	}
	if dest == filepath.Clean(planned.SourceAbsolute) {
		planned.State = types.LinkedToThisSource
		return planned, nil
	}

	resolvedTarget, err := filesystem.Resolve(s.fs, planned.TargetAbsolute)
	if err != nil {
		// A link loop can't point at our source
		s.logger.Debug().Err(err).Str("path", planned.TargetAbsolute).Msg("Target link does not resolve")
		planned.State = types.LinkedElsewhere
		planned.LinkDest = dest
		return planned, nil
	}
	resolvedSource, err := filesystem.Resolve(s.fs, planned.SourceAbsolute)
	if err != nil {
		return planned, errors.FromFS(err, errors.ErrFileAccess, "cannot resolve source").
			WithDetail("path", planned.SourceAbsolute)
	}

	if resolvedTarget == resolvedSource {
		planned.State = types.LinkedToThisSource
		return planned, nil
	}
	planned.State = types.LinkedElsewhere
	planned.LinkDest = resolvedTarget
	return planned, nil
}

// Plan enumerates the package and classifies every entry
func (s *Scanner) Plan(pkg types.Package) (*types.Plan, error) {
	entries, err := s.Enumerate(pkg)
	if err != nil {
		return nil, err
	}

	plan := &types.Plan{Package: pkg, Entries: make([]types.PlanEntry, 0, len(entries))}
	for _, entry := range entries {
		planned, err := s.Classify(entry)
		if err != nil {
			if se, ok := err.(*errors.StowError); ok {
				se.WithDetail("package", pkg.Name)
			}
			return nil, err
		}
		plan.Entries = append(plan.Entries, planned)
	}

	s.logger.Debug().
		Str("package", pkg.Name).
		Int("files", len(plan.Entries)).
		Int("linked", plan.Count(types.LinkedToThisSource)).
		Int("absent", plan.Count(types.Absent)).
		Int("conflicts", len(plan.Conflicts())).
		Msg("Planned package")

	return plan, nil
}

// Scan returns only the conflicts of a package, in plan order
func (s *Scanner) Scan(pkg types.Package) ([]types.ConflictRecord, error) {
	plan, err := s.Plan(pkg)
	if err != nil {
		return nil, err
	}
	return plan.Conflicts(), nil
}
