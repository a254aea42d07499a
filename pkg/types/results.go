package types

import (
	"encoding/json"
)

// FileError is a failure scoped to a single file of a package
type FileError struct {
	RelativePath string
	Err          error
}

func (e FileError) Error() string {
	return e.RelativePath + ": " + e.Err.Error()
}

func (e FileError) Unwrap() error { return e.Err }

// MarshalJSON renders the wrapped error as a string
func (e FileError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		RelativePath string `json:"relativePath"`
		Error        string `json:"error"`
	}{e.RelativePath, errString(e.Err)})
}

// PackageResult is the outcome of applying a mode to one package
type PackageResult struct {
	Package string `json:"package"`
	Mode    Mode   `json:"mode"`
	DryRun  bool   `json:"dryRun"`

	// Linked are relative paths that got a new symlink
	Linked []string `json:"linked,omitempty"`

	// Unlinked are relative paths whose symlink was removed
	Unlinked []string `json:"unlinked,omitempty"`

	// AlreadyLinked were correct before the operation and left alone
	AlreadyLinked []string `json:"alreadyLinked,omitempty"`

	// BackedUp lists conflicts that were moved into the backup root
	BackedUp []BackupRecord `json:"backedUp,omitempty"`

	// Conflicts lists conflicts that were left in place
	Conflicts []ConflictRecord `json:"conflicts,omitempty"`

	// Failed lists per-file failures
	Failed []FileError `json:"failed,omitempty"`

	// Err is a package-level failure (missing package, permission denied,
	// scan failure) that stopped processing of the package.
	Err error `json:"-"`
}

// Succeeded is true when the package ended with no error, no unresolved
// conflicts and no failed files.
func (r *PackageResult) Succeeded() bool {
	return r.Err == nil && len(r.Conflicts) == 0 && len(r.Failed) == 0
}

// PackageReport is one row of a BatchReport
type PackageReport struct {
	PackageName string
	Succeeded   bool
	Conflicts   []ConflictRecord
	Error       error
	Result      *PackageResult
}

// MarshalJSON renders the error as a string
func (r PackageReport) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		PackageName string           `json:"package"`
		Succeeded   bool             `json:"succeeded"`
		Conflicts   []ConflictRecord `json:"conflicts,omitempty"`
		Error       string           `json:"error,omitempty"`
		Result      *PackageResult   `json:"result,omitempty"`
	}{r.PackageName, r.Succeeded, r.Conflicts, errString(r.Error), r.Result})
}

// NewPackageReport builds a report row from a result
func NewPackageReport(result *PackageResult) PackageReport {
	report := PackageReport{
		PackageName: result.Package,
		Succeeded:   result.Succeeded(),
		Conflicts:   result.Conflicts,
		Error:       result.Err,
		Result:      result,
	}
	if report.Error == nil && len(result.Failed) > 0 {
		report.Error = result.Failed[0].Err
	}
	return report
}

// BatchReport aggregates the per-package outcomes of one run, in processing order
type BatchReport struct {
	Mode     Mode            `json:"mode"`
	DryRun   bool            `json:"dryRun"`
	Packages []PackageReport `json:"packages"`
}

// Add appends a package report
func (b *BatchReport) Add(report PackageReport) {
	b.Packages = append(b.Packages, report)
}

// Succeeded is true iff every package succeeded
func (b *BatchReport) Succeeded() bool {
	for _, p := range b.Packages {
		if !p.Succeeded {
			return false
		}
	}
	return true
}

// FailedPackages returns the names of packages that did not succeed
func (b *BatchReport) FailedPackages() []string {
	var names []string
	for _, p := range b.Packages {
		if !p.Succeeded {
			names = append(names, p.PackageName)
		}
	}
	return names
}

// Find returns the report for a package by name
func (b *BatchReport) Find(name string) (PackageReport, bool) {
	for _, p := range b.Packages {
		if p.PackageName == name {
			return p, true
		}
	}
	return PackageReport{}, false
}

// RestoreResult is the outcome of moving backups back into the target root
type RestoreResult struct {
	DryRun     bool        `json:"dryRun"`
	Restored   []string    `json:"restored"`
	Failed     []FileError `json:"failed,omitempty"`
	PrunedDirs []string    `json:"prunedDirs,omitempty"`

	// Error is set when the backup root itself could not be processed
	Error string `json:"error,omitempty"`
}

// Succeeded is true when every backed up file was restored
func (r *RestoreResult) Succeeded() bool {
	return r.Error == "" && len(r.Failed) == 0
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
