package backup

import (
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/dotstow/pkg/errors"
	"github.com/arthur-debert/dotstow/pkg/filesystem"
	"github.com/arthur-debert/dotstow/pkg/logging"
	"github.com/arthur-debert/dotstow/pkg/types"
	"github.com/rs/zerolog"
)

// Store relocates conflicting targets into a backup root
type Store struct {
	fs     types.FS
	root   string
	dryRun bool
	logger zerolog.Logger
}

// New creates a store rooted at backupRoot. In dry-run mode nothing is
// moved; the intended moves are logged and reported.
func New(fsys types.FS, backupRoot string, dryRun bool) *Store {
	return &Store{
		fs:     fsys,
		root:   filepath.Clean(backupRoot),
		dryRun: dryRun,
		logger: logging.GetLogger("backup"),
	}
}

// Root returns the backup root
func (s *Store) Root() string {
	return s.root
}

// Path returns where a target-relative path is backed up to
func (s *Store) Path(relPath string) string {
	return filepath.Join(s.root, relPath)
}

// BackupOne moves a single conflicting target into the backup root. When a
// file at an ancestor blocks the target, that file is moved instead. A
// previous backup at the same relative path is replaced.
func (s *Store) BackupOne(conflict types.ConflictRecord) (types.BackupRecord, error) {
	rel, from := conflict.Occupant()
	record := types.BackupRecord{
		RelativePath:   rel,
		BackupAbsolute: s.Path(rel),
	}

	if !conflict.Kind.IsConflict() {
		return record, errors.Newf(errors.ErrInvalidInput, "refusing to back up %s target", conflict.Kind).
			WithDetail("path", from)
	}

	exists, err := filesystem.Exists(s.fs, record.BackupAbsolute)
	if err != nil {
		return record, s.ioError(err, "cannot inspect backup path", conflict)
	}
	if exists {
		record.Replaced = true
		s.logger.Warn().
			Str("path", rel).
			Str("backup", record.BackupAbsolute).
			Msg("Replacing an existing backup; the older copy will be lost")
	}

	if s.dryRun {
		s.logger.Info().
			Str("package", conflict.Package).
			Str("from", from).
			Str("to", record.BackupAbsolute).
			Str("kind", conflict.Kind.String()).
			Msg("Would back up conflicting target")
		return record, nil
	}

	if exists {
		if err := filesystem.RemoveAll(s.fs, record.BackupAbsolute); err != nil {
			return record, s.ioError(err, "cannot remove previous backup", conflict)
		}
	}
	if err := s.fs.MkdirAll(filepath.Dir(record.BackupAbsolute), 0755); err != nil {
		return record, s.ioError(err, "cannot create backup directory", conflict)
	}
	if err := s.fs.Rename(from, record.BackupAbsolute); err != nil {
		return record, s.ioError(err, "cannot move target into backup", conflict)
	}

	event := s.logger.Info()
	if conflict.BlockedBy != "" {
		event = event.Str("blocks", conflict.RelativePath)
	}
	event.
		Str("package", conflict.Package).
		Str("from", from).
		Str("to", record.BackupAbsolute).
		Msg("Backed up conflicting target")
	return record, nil
}

// Backup moves every conflict into the backup root. Each failure is scoped
// to its own file; the rest are still attempted.
func (s *Store) Backup(conflicts []types.ConflictRecord) (int, []types.FileError) {
	count := 0
	var failed []types.FileError
	for _, conflict := range conflicts {
		if _, err := s.BackupOne(conflict); err != nil {
			s.logger.Error().Err(err).Str("path", conflict.RelativePath).Msg("Backup failed")
			failed = append(failed, types.FileError{RelativePath: conflict.RelativePath, Err: err})
			continue
		}
		count++
	}
	return count, failed
}

func (s *Store) ioError(err error, msg string, conflict types.ConflictRecord) error {
	rel, from := conflict.Occupant()
	return errors.FromFS(err, errors.ErrBackupIO, msg).
		WithDetail("package", conflict.Package).
		WithDetail("path", from).
		WithDetail("backup", s.Path(rel))
}

// Restore moves every backed up file back to targetRoot, then removes the
// directories left empty under the backup root, the root included. A backed
// up directory is merged into a real directory at its restore path and is
// otherwise moved back whole, replacing any file or symlink there. Restore
// never writes through a symlink in the target tree. A missing backup root
// restores nothing.
func (s *Store) Restore(targetRoot string) (*types.RestoreResult, error) {
	result := &types.RestoreResult{DryRun: s.dryRun, Restored: []string{}}
	targetRoot = filepath.Clean(targetRoot)

	exists, err := filesystem.Exists(s.fs, s.root)
	if err != nil {
		return result, errors.FromFS(err, errors.ErrBackupIO, "cannot access backup root").
			WithDetail("path", s.root)
	}
	if !exists {
		s.logger.Info().Str("path", s.root).Msg("No backup directory, nothing to restore")
		return result, nil
	}

	if !s.dryRun {
		if err := s.fs.MkdirAll(targetRoot, 0755); err != nil {
			return result, errors.FromFS(err, errors.ErrBackupIO, "cannot create target root").
				WithDetail("path", targetRoot)
		}
	}

	var dirs []string
	if err := s.restoreDir(targetRoot, "", result, &dirs); err != nil {
		return result, errors.FromFS(err, errors.ErrBackupIO, "cannot read backup root").
			WithDetail("path", s.root)
	}

	// Deepest first, so parents see their children already gone
	for i := len(dirs) - 1; i >= 0; i-- {
		dir := dirs[i]
		if s.dryRun {
			if len(result.Failed) == 0 {
				result.PrunedDirs = append(result.PrunedDirs, dir)
			}
			continue
		}
		empty, err := filesystem.IsEmptyDir(s.fs, dir)
		if err != nil || !empty {
			continue
		}
		if err := s.fs.Remove(dir); err != nil {
			s.logger.Warn().Err(err).Str("dir", dir).Msg("Could not remove empty backup directory")
			continue
		}
		result.PrunedDirs = append(result.PrunedDirs, dir)
	}

	s.logger.Info().
		Int("restored", len(result.Restored)).
		Int("failed", len(result.Failed)).
		Bool("dryRun", s.dryRun).
		Msg("Restore finished")
	return result, nil
}

// restoreDir restores the entries of the backup directory at rel. Its restore
// path is targetRoot or a real directory already checked by the caller.
func (s *Store) restoreDir(targetRoot, rel string, result *types.RestoreResult, dirs *[]string) error {
	dir := filepath.Join(s.root, rel)
	entries, err := s.fs.ReadDir(dir)
	if err != nil {
		return err
	}
	*dirs = append(*dirs, dir)

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		s.restoreEntry(targetRoot, filepath.Join(rel, entry.Name()), entry.IsDir(), result, dirs)
	}
	return nil
}

func (s *Store) restoreEntry(targetRoot, rel string, isDir bool, result *types.RestoreResult, dirs *[]string) {
	src := filepath.Join(s.root, rel)
	dest := filepath.Join(targetRoot, rel)

	info, err := s.fs.Lstat(dest)
	occupied := err == nil
	switch {
	case occupied && info.IsDir() && isDir:
		if err := s.restoreDir(targetRoot, rel, result, dirs); err != nil {
			s.restoreFailed(result, rel, errors.FromFS(err, errors.ErrBackupIO, "cannot read backup directory").
				WithDetail("path", src))
		}
		return
	case occupied && info.IsDir():
		s.restoreFailed(result, rel, errors.New(errors.ErrBackupIO, "a directory occupies the restore path").
			WithDetail("path", dest))
		return
	case err != nil && !stderrors.Is(err, fs.ErrNotExist):
		s.restoreFailed(result, rel, errors.FromFS(err, errors.ErrBackupIO, "cannot inspect restore path").
			WithDetail("path", dest))
		return
	}

	files, err := s.filesUnder(rel, isDir)
	if err != nil {
		s.restoreFailed(result, rel, errors.FromFS(err, errors.ErrBackupIO, "cannot read backup directory").
			WithDetail("path", src))
		return
	}

	if s.dryRun {
		event := s.logger.Info().Str("from", src).Str("to", dest)
		if occupied {
			event = event.Str("replaces", info.Mode().Type().String())
		}
		event.Msg("Would restore backup")
		result.Restored = append(result.Restored, files...)
		return
	}

	// The occupant, usually a link made by a later stow, is removed and not
	// followed.
	if occupied {
		if err := s.fs.Remove(dest); err != nil {
			s.restoreFailed(result, rel, errors.FromFS(err, errors.ErrBackupIO, "cannot clear restore path").
				WithDetail("path", dest))
			return
		}
	}
	if err := s.fs.Rename(src, dest); err != nil {
		s.restoreFailed(result, rel, errors.FromFS(err, errors.ErrBackupIO, "cannot move backup into place").
			WithDetail("from", src).
			WithDetail("to", dest))
		return
	}

	s.logger.Info().Str("from", src).Str("to", dest).Int("files", len(files)).Msg("Restored backup")
	result.Restored = append(result.Restored, files...)
}

// filesUnder lists the backup-relative paths of the non-directories at rel
func (s *Store) filesUnder(rel string, isDir bool) ([]string, error) {
	if !isDir {
		return []string{rel}, nil
	}
	var files []string
	err := filesystem.Walk(s.fs, filepath.Join(s.root, rel), func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		fileRel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		files = append(files, fileRel)
		return nil
	})
	return files, err
}

func (s *Store) restoreFailed(result *types.RestoreResult, rel string, err error) {
	s.logger.Error().Err(err).Str("path", rel).Msg("Restore failed")
	result.Failed = append(result.Failed, types.FileError{RelativePath: rel, Err: err})
}
