package scanner

import (
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/dotstow/pkg/errors"
	"github.com/arthur-debert/dotstow/pkg/logging"
	"github.com/arthur-debert/dotstow/pkg/types"
)

// ListAvailable returns the names of the package directories under
// sourceRoot, sorted. Hidden directories, ignored names and directories
// carrying an ignore file are skipped. Symlinks to directories count.
func ListAvailable(fsys types.FS, sourceRoot string, ignore []string) ([]string, error) {
	logger := logging.GetLogger("scanner.discovery")
	logger.Trace().Str("root", sourceRoot).Msg("Listing available packages")

	info, err := fsys.Stat(sourceRoot)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(err, errors.ErrPackageNotFound, "source root does not exist").
				WithDetail("path", sourceRoot)
		}
		return nil, errors.FromFS(err, errors.ErrFileAccess, "cannot access source root").
			WithDetail("path", sourceRoot)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrInvalidInput, "source root is not a directory").
			WithDetail("path", sourceRoot)
	}

	entries, err := fsys.ReadDir(sourceRoot)
	if err != nil {
		return nil, errors.FromFS(err, errors.ErrFileAccess, "cannot read source root").
			WithDetail("path", sourceRoot)
	}

	if ignore == nil {
		ignore = DefaultIgnorePatterns
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || MatchesIgnore(name, ignore) {
			logger.Trace().Str("name", name).Msg("Skipping hidden or ignored entry")
			continue
		}

		path := filepath.Join(sourceRoot, name)
		isDir := entry.IsDir()
		if entry.Type()&fs.ModeSymlink != 0 {
			if target, err := fsys.Stat(path); err == nil {
				isDir = target.IsDir()
			}
		}
		if !isDir {
			continue
		}
		if hasIgnoreFile(fsys, path) {
			logger.Debug().Str("name", name).Msg("Package ignored due to ignore file")
			continue
		}
		names = append(names, name)
	}

	sort.Strings(names)
	logger.Debug().Int("count", len(names)).Msg("Found packages")
	return names, nil
}
