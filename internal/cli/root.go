// Package cli wires the dotstow commands onto the engine
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/arthur-debert/dotstow/internal/version"
	"github.com/arthur-debert/dotstow/pkg/config"
	"github.com/arthur-debert/dotstow/pkg/logging"
	"github.com/arthur-debert/dotstow/pkg/orchestration"
	"github.com/arthur-debert/dotstow/pkg/types"
	"github.com/arthur-debert/dotstow/pkg/ui"
	"github.com/arthur-debert/dotstow/pkg/ui/confirmations"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// globalOptions holds the persistent flags of one root command
type globalOptions struct {
	verbosity  int
	dryRun     bool
	force      bool
	configFile string
	format     ui.Format
	sourceRoot string
	targetRoot string
	backupRoot string
	logFile    string

	// fs replaces the OS filesystem in tests
	fs types.FS
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&globalOptions{})
}

func newRootCmd(opts *globalOptions) *cobra.Command {
	initTemplateFormatting()

	rootCmd := &cobra.Command{
		Use:     "dotstow",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(logging.Options{
				Verbosity: opts.verbosity,
				Console:   cmd.ErrOrStderr(),
				LogFile:   opts.logFile,
			})
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(MsgNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	flags.BoolVarP(&opts.dryRun, "dry-run", "n", false, MsgFlagDryRun)
	flags.BoolVarP(&opts.force, "force", "f", false, MsgFlagForce)
	flags.StringVarP(&opts.configFile, "config", "c", "", MsgFlagConfig)
	flags.Var(&opts.format, "format", MsgFlagFormat)
	flags.StringVarP(&opts.sourceRoot, "dir", "d", "", MsgFlagSource)
	flags.StringVarP(&opts.targetRoot, "target", "t", "", MsgFlagTarget)
	flags.StringVar(&opts.backupRoot, "backup-dir", "", MsgFlagBackup)
	flags.StringVar(&opts.logFile, "log-file", "", MsgFlagLogFile)
	_ = rootCmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return ui.FormatNames, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)
	initTopics(rootCmd)
	rootCmd.SetHelpCommandGroupID("misc")

	rootCmd.AddCommand(newModeCmd(opts, types.ModeStow))
	rootCmd.AddCommand(newModeCmd(opts, types.ModeUnstow))
	rootCmd.AddCommand(newModeCmd(opts, types.ModeRestow))
	rootCmd.AddCommand(newStatusCmd(opts))
	rootCmd.AddCommand(newRestoreCmd(opts))
	rootCmd.AddCommand(newListCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())

	return rootCmd
}

// loadConfig layers the root flags over the config file and environment
func (opts *globalOptions) loadConfig() (*config.Config, error) {
	overrides := map[string]interface{}{}
	if opts.sourceRoot != "" {
		overrides["source_root"] = opts.sourceRoot
	}
	if opts.targetRoot != "" {
		overrides["target_root"] = opts.targetRoot
	}
	if opts.backupRoot != "" {
		overrides["backup_root"] = opts.backupRoot
	}

	cfg, err := config.Load(config.Options{File: opts.configFile, Overrides: overrides})
	if err != nil {
		return nil, fmt.Errorf(MsgErrLoadConfig, err)
	}
	return cfg, nil
}

// orchestrator builds the engine for one command run
func (opts *globalOptions) orchestrator(cmd *cobra.Command) (*orchestration.Orchestrator, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("source_root", cfg.SourceRoot).
		Str("target_root", cfg.TargetRoot).
		Str("backup_root", cfg.BackupRoot).
		Bool("dry_run", opts.dryRun).
		Msg("Configuration loaded")

	return orchestration.New(orchestration.Options{
		Config:     cfg,
		FileSystem: opts.fs,
		DryRun:     opts.dryRun,
		Force:      opts.force,
		Confirm:    confirmFor(cmd),
	})
}

// confirmFor asks on the real console, or reads lines when the command's
// input was redirected (tests, scripts).
func confirmFor(cmd *cobra.Command) types.ConfirmFunc {
	if in := cmd.InOrStdin(); in != os.Stdin {
		return confirmations.NewLineConsole(in, cmd.ErrOrStderr()).ConfirmFunc()
	}
	return confirmations.NewConsole().ConfirmFunc()
}

func (opts *globalOptions) renderer(cmd *cobra.Command) (ui.Renderer, error) {
	return ui.NewRenderer(opts.format, cmd.OutOrStdout())
}

// packageNamesCompletion completes the names of available packages not yet
// on the command line.
func (opts *globalOptions) packageNamesCompletion(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	o, err := opts.orchestrator(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	available, err := o.Available()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	given := make(map[string]bool, len(args))
	for _, arg := range args {
		given[arg] = true
	}
	names := []string{orchestration.AllPackages}
	for _, name := range available {
		if !given[name] {
			names = append(names, name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
