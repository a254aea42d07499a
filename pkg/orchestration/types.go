// Package orchestration drives the engine over a batch of packages. It owns
// the outer loop: resolve package names, scan, confirm conflicts, apply and
// aggregate results. Nothing below it ever reaches the caller as an error;
// every failure lands in the report.
package orchestration

import (
	"github.com/arthur-debert/dotstow/pkg/config"
	"github.com/arthur-debert/dotstow/pkg/types"
)

// AllPackages selects every configured package
const AllPackages = "all"

// MaxPromptConflicts caps how many conflicts a confirmation prompt lists
const MaxPromptConflicts = 10

// Options contains everything an Orchestrator needs
type Options struct {
	// Config supplies the roots, the configured packages and ignore patterns.
	// It must have been loaded (or resolved) so its roots are absolute.
	Config *config.Config

	// FileSystem to use (optional, defaults to the OS filesystem)
	FileSystem types.FS

	// DryRun logs mutations instead of performing them
	DryRun bool

	// Force adopts every conflict without asking
	Force bool

	// Confirm is asked before conflicts are adopted. Nil declines.
	Confirm types.ConfirmFunc
}
