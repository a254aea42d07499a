package cli

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	MsgRootShort = "Symlink dotfile packages into your home directory"
	MsgRootLong  = `dotstow mirrors each package directory of your dotfiles repository into
a target directory (your home by default) as symlinks, one link per file.

Files already sitting where a link should go are conflicts. They are left
alone unless you confirm, or pass --force, in which case they are moved
into the backup directory first. 'dotstow restore' moves them back.`

	MsgStowShort   = "Link packages into the target directory"
	MsgUnstowShort = "Remove the links of packages"
	MsgRestowShort = "Remove and recreate the links of packages"
	MsgStowLong    = `Link every file of the given packages into the target directory.
With no packages, or with 'all', the configured packages are used; when none
are configured, every package directory under the source root is.`
	MsgUnstowLong = `Remove links that point into the given packages. Only symlinks to the
package's own files are removed; anything else is left untouched.`
	MsgRestowLong = `Remove the links of the given packages, then link them again. Useful after
files were added to or removed from a package.`
	MsgStowExample = `  # Link all configured packages
  dotstow stow

  # Link two packages, moving conflicting files to the backup directory
  dotstow stow --force vim zsh

  # See what would happen
  dotstow stow --dry-run vim`

	MsgStatusShort   = "Show whether packages are linked"
	MsgStatusLong    = "Status re-checks every file of the given packages and never changes anything."
	MsgRestoreShort  = "Move backed up files back into the target directory"
	MsgListShort     = "List the packages found under the source root"
	MsgConfigShort   = "Print the effective configuration"
	MsgVersionShort  = "Print version information"
	MsgManShort      = "Generate man pages"
	MsgCompleteShort = "Generate shell completion script"
	MsgCompleteLong  = `To load completions:

Bash:
  $ source <(dotstow completion bash)

Zsh:
  $ dotstow completion zsh > "${fpath[1]}/_dotstow"

Fish:
  $ dotstow completion fish | source

PowerShell:
  PS> dotstow completion powershell | Out-String | Invoke-Expression`

	// Flag descriptions
	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun  = "Preview changes without executing them"
	MsgFlagForce   = "Move conflicting files to the backup directory without asking"
	MsgFlagConfig  = "Config file (default $XDG_CONFIG_HOME/dotstow/config.toml)"
	MsgFlagFormat  = "Output format: auto, term, text or json"
	MsgFlagSource  = "Source root holding the packages (default $DOTFILES_ROOT or ~/dotfiles)"
	MsgFlagTarget  = "Target root the links are created in (default $HOME)"
	MsgFlagBackup  = "Backup root for conflicting files (default <target>/.dotfiles-backup)"
	MsgFlagLogFile = "Log file (default $XDG_STATE_HOME/dotstow/dotstow.log)"
	MsgFlagInit    = "Print a commented starter config file instead"
	MsgFlagManDir  = "Directory to write man pages to"

	// Error messages
	MsgErrLoadConfig  = "failed to load configuration: %w"
	MsgErrBatchFailed = "%d of %d package(s) failed"
	MsgErrRestore     = "restore did not complete"
	MsgNoCommand      = "no command specified"
)

var (
	//go:embed msgs/usage.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw) + "\n"
)
