// Package status reports the live link state of packages. It re-derives
// everything from the filesystem on each call and never mutates it.
package status

import (
	"github.com/arthur-debert/dotstow/pkg/errors"
	"github.com/arthur-debert/dotstow/pkg/logging"
	"github.com/arthur-debert/dotstow/pkg/scanner"
	"github.com/arthur-debert/dotstow/pkg/types"
	"github.com/rs/zerolog"
)

// Inspector computes PackageStatus values
type Inspector struct {
	scanner *scanner.Scanner
	logger  zerolog.Logger
}

// New creates an inspector that plans with sc
func New(sc *scanner.Scanner) *Inspector {
	return &Inspector{
		scanner: sc,
		logger:  logging.GetLogger("status"),
	}
}

// Status reports whether pkg is stowed. A package counts as stowed only
// when it has files and every one of them is linked to its source. Every
// relative path that keeps it from being stowed, absent or conflicting, is
// listed in Conflicts. A missing package directory is not an error; it
// yields Exists=false.
func (i *Inspector) Status(pkg types.Package) (types.PackageStatus, error) {
	status := types.PackageStatus{
		Package:   pkg.Name,
		Conflicts: []string{},
	}

	plan, err := i.scanner.Plan(pkg)
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrPackageNotFound) {
			i.logger.Debug().Str("package", pkg.Name).Msg("Package directory missing")
			return status, nil
		}
		status.Exists = true
		status.Error = err.Error()
		return status, err
	}

	status.Exists = true
	status.Entries = plan.Entries

	linked := 0
	for _, entry := range plan.Entries {
		if entry.State == types.LinkedToThisSource {
			linked++
			continue
		}
		status.Conflicts = append(status.Conflicts, entry.RelativePath)
	}
	status.Stowed = len(plan.Entries) > 0 && linked == len(plan.Entries)

	i.logger.Debug().
		Str("package", pkg.Name).
		Bool("stowed", status.Stowed).
		Int("linked", linked).
		Int("files", len(plan.Entries)).
		Msg("Package status")
	return status, nil
}
