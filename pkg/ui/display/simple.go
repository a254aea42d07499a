// Package display writes engine results as aligned lines. The same layout
// serves the plain text and the styled terminal renderers; only the Painter
// differs.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/dotstow/pkg/types"
)

// Semantic style names understood by painters
const (
	StyleHeader  = "Header"
	StyleSuccess = "Success"
	StyleWarning = "Warning"
	StyleError   = "Error"
	StyleMuted   = "Muted"
	StylePath    = "FilePath"
	StylePackage = "Package"
)

// Painter decorates a piece of text with a named style
type Painter interface {
	Paint(style, text string) string
}

// Plain is a Painter that leaves text untouched
type Plain struct{}

// Paint returns text unchanged
func (Plain) Paint(_, text string) string { return text }

// Writer renders results line by line
type Writer struct {
	w       io.Writer
	painter Painter
	err     error
}

// NewWriter creates a Writer. A nil painter writes plain text.
func NewWriter(w io.Writer, painter Painter) *Writer {
	if painter == nil {
		painter = Plain{}
	}
	return &Writer{w: w, painter: painter}
}

func (d *Writer) line(format string, args ...interface{}) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, format+"\n", args...)
}

func (d *Writer) paint(style, text string) string {
	return d.painter.Paint(style, text)
}

// label pads before painting so escape codes do not break alignment
func (d *Writer) label(style, text string) string {
	return d.paint(style, fmt.Sprintf("%-12s", text))
}

// Batch writes a stow, restow or unstow report
func (d *Writer) Batch(report *types.BatchReport) error {
	header := report.Mode.String()
	if report.DryRun {
		header += " (dry run)"
	}
	d.line("%s", d.paint(StyleHeader, header))

	if len(report.Packages) == 0 {
		d.line("No packages to process")
		return d.err
	}

	for _, pkg := range report.Packages {
		d.pkgResult(pkg)
	}

	failed := report.FailedPackages()
	d.line("")
	if len(failed) == 0 {
		d.line("%s", d.paint(StyleSuccess, fmt.Sprintf("%d package(s) processed", len(report.Packages))))
	} else {
		d.line("%s", d.paint(StyleError, fmt.Sprintf("%d of %d package(s) failed: %s",
			len(failed), len(report.Packages), strings.Join(failed, ", "))))
	}
	return d.err
}

func (d *Writer) pkgResult(pkg types.PackageReport) {
	status := d.paint(StyleSuccess, "ok")
	if !pkg.Succeeded {
		status = d.paint(StyleError, "failed")
	}
	d.line("")
	d.line("%s [%s]", d.paint(StylePackage, pkg.PackageName), status)

	r := pkg.Result
	if r == nil {
		if pkg.Error != nil {
			d.line("    %s %s", d.label(StyleError, "error"), Message(pkg.Error))
		}
		return
	}

	would := ""
	if r.DryRun {
		would = "would "
	}
	for _, rel := range r.Unlinked {
		d.line("    %s %s", d.label(StyleMuted, would+"unlink"), d.paint(StylePath, rel))
	}
	for _, b := range r.BackedUp {
		suffix := ""
		if b.Replaced {
			suffix = d.paint(StyleWarning, " (replaced older backup)")
		}
		d.line("    %s %s -> %s%s", d.label(StyleWarning, would+"back up"),
			d.paint(StylePath, b.RelativePath), b.BackupAbsolute, suffix)
	}
	for _, rel := range r.Linked {
		d.line("    %s %s", d.label(StyleSuccess, would+"link"), d.paint(StylePath, rel))
	}
	for _, rel := range r.AlreadyLinked {
		d.line("    %s %s", d.label(StyleMuted, "unchanged"), d.paint(StylePath, rel))
	}
	for _, c := range r.Conflicts {
		detail := c.Kind.String()
		if c.LinkDest != "" {
			detail += " -> " + c.LinkDest
		}
		d.line("    %s %s (%s)", d.label(StyleWarning, "conflict"), d.paint(StylePath, c.RelativePath), detail)
	}
	for _, f := range r.Failed {
		d.line("    %s %s: %s", d.label(StyleError, "failed"), d.paint(StylePath, f.RelativePath), Message(f.Err))
	}
	if r.Err != nil {
		d.line("    %s %s", d.label(StyleError, "error"), Message(r.Err))
	}
}

// Status writes a status report
func (d *Writer) Status(report *types.StatusReport) error {
	d.line("%s %s", d.paint(StyleHeader, "Source root:"), d.paint(StylePath, report.SourceRoot))
	if !report.SourceRootExists {
		d.line("%s", d.paint(StyleWarning, "Source root does not exist"))
	}
	if len(report.Packages) == 0 {
		d.line("No packages")
		return d.err
	}

	for _, pkg := range report.Packages {
		d.pkgStatus(pkg)
	}
	return d.err
}

func (d *Writer) pkgStatus(pkg types.PackageStatus) {
	name := d.paint(StylePackage, fmt.Sprintf("%-16s", pkg.Package))
	switch {
	case pkg.Error != "":
		d.line("%s %s %s", name, d.label(StyleError, "error"), pkg.Error)
		return
	case !pkg.Exists:
		d.line("%s %s", name, d.label(StyleError, "missing"))
		return
	case pkg.Stowed:
		d.line("%s %s (%d/%d linked)", name, d.label(StyleSuccess, "stowed"), pkg.Linked(), len(pkg.Entries))
		return
	case len(pkg.Entries) == 0:
		d.line("%s %s (no files)", name, d.label(StyleMuted, "empty"))
		return
	case pkg.Partial():
		d.line("%s %s (%d/%d linked)", name, d.label(StyleWarning, "partial"), pkg.Linked(), len(pkg.Entries))
	default:
		d.line("%s %s (0/%d linked)", name, d.label(StyleMuted, "not stowed"), len(pkg.Entries))
	}

	for _, e := range pkg.Entries {
		if e.State == types.LinkedToThisSource {
			continue
		}
		detail := ""
		if e.LinkDest != "" {
			detail = " -> " + e.LinkDest
		}
		style := StyleWarning
		if e.State == types.Absent {
			style = StyleMuted
		}
		d.line("    %s %s%s", d.label(style, e.State.String()), d.paint(StylePath, e.RelativePath), detail)
	}
}

// Restore writes the outcome of a restore
func (d *Writer) Restore(result *types.RestoreResult) error {
	header := "restore"
	if result.DryRun {
		header += " (dry run)"
	}
	d.line("%s", d.paint(StyleHeader, header))

	if len(result.Restored) == 0 && len(result.Failed) == 0 && result.Error == "" {
		d.line("Nothing to restore")
		return d.err
	}

	would := ""
	if result.DryRun {
		would = "would "
	}
	for _, rel := range result.Restored {
		d.line("    %s %s", d.label(StyleSuccess, would+"restore"), d.paint(StylePath, rel))
	}
	for _, f := range result.Failed {
		d.line("    %s %s: %s", d.label(StyleError, "failed"), d.paint(StylePath, f.RelativePath), Message(f.Err))
	}
	if len(result.PrunedDirs) > 0 {
		d.line("    %s %d empty backup director(ies)", d.label(StyleMuted, would+"remove"), len(result.PrunedDirs))
	}
	if result.Error != "" {
		d.line("    %s %s", d.label(StyleError, "error"), result.Error)
	}
	return d.err
}

// Packages writes a list of package names, marking the configured ones
func (d *Writer) Packages(available, configured []string) error {
	if len(available) == 0 {
		d.line("No packages found")
		return d.err
	}
	marked := make(map[string]bool, len(configured))
	for _, name := range configured {
		marked[name] = true
	}
	for _, name := range available {
		if marked[name] {
			d.line("%s %s", d.paint(StylePackage, name), d.paint(StyleMuted, "(configured)"))
			continue
		}
		d.line("%s", d.paint(StylePackage, name))
	}
	return d.err
}

// Message writes a single informational line
func (d *Writer) Message(msg string) error {
	d.line("%s", msg)
	return d.err
}

// Error writes an error line
func (d *Writer) Error(err error) error {
	d.line("%s %s", d.paint(StyleError, "Error:"), Message(err))
	return d.err
}

// Message renders an error for display, empty for nil
func Message(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
