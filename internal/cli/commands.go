package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/arthur-debert/dotstow/internal/version"
	"github.com/arthur-debert/dotstow/pkg/config"
	"github.com/arthur-debert/dotstow/pkg/logging"
	"github.com/arthur-debert/dotstow/pkg/types"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

func newModeCmd(opts *globalOptions, mode types.Mode) *cobra.Command {
	short, long := MsgStowShort, MsgStowLong
	switch mode {
	case types.ModeUnstow:
		short, long = MsgUnstowShort, MsgUnstowLong
	case types.ModeRestow:
		short, long = MsgRestowShort, MsgRestowLong
	}

	cmd := &cobra.Command{
		Use:               mode.String() + " [packages...]",
		Short:             short,
		Long:              long,
		GroupID:           "core",
		ValidArgsFunction: opts.packageNamesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := opts.orchestrator(cmd)
			if err != nil {
				return err
			}
			renderer, err := opts.renderer(cmd)
			if err != nil {
				return err
			}

			done := logging.LogOperationStart(log.Logger, mode.String())
			report := o.Run(cmd.Context(), args, mode)
			done()

			if err := renderer.RenderBatch(report); err != nil {
				return err
			}
			if !report.Succeeded() {
				return Silent(fmt.Errorf(MsgErrBatchFailed, len(report.FailedPackages()), len(report.Packages)))
			}
			return nil
		},
	}
	if mode == types.ModeStow {
		cmd.Example = MsgStowExample
	}
	return cmd
}

func newStatusCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:               "status [packages...]",
		Short:             MsgStatusShort,
		Long:              MsgStatusLong,
		GroupID:           "core",
		ValidArgsFunction: opts.packageNamesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := opts.orchestrator(cmd)
			if err != nil {
				return err
			}
			renderer, err := opts.renderer(cmd)
			if err != nil {
				return err
			}
			return renderer.RenderStatus(o.Status(args))
		},
	}
}

func newRestoreCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "restore",
		Short:   MsgRestoreShort,
		Args:    cobra.NoArgs,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := opts.orchestrator(cmd)
			if err != nil {
				return err
			}
			renderer, err := opts.renderer(cmd)
			if err != nil {
				return err
			}

			result := o.Restore(cmd.Context())
			if err := renderer.RenderRestore(result); err != nil {
				return err
			}
			if !result.Succeeded() {
				return Silent(errors.New(MsgErrRestore))
			}
			return nil
		},
	}
}

func newListCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   MsgListShort,
		Args:    cobra.NoArgs,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := opts.orchestrator(cmd)
			if err != nil {
				return err
			}
			renderer, err := opts.renderer(cmd)
			if err != nil {
				return err
			}
			available, err := o.Available()
			if err != nil {
				return err
			}
			return renderer.RenderPackages(available, o.Configured())
		},
	}
}

func newConfigCmd(opts *globalOptions) *cobra.Command {
	var starter bool
	cmd := &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		Args:    cobra.NoArgs,
		GroupID: "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			if starter {
				_, err := fmt.Fprint(cmd.OutOrStdout(), config.GenerateConfigContent())
				return err
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			renderer, err := opts.renderer(cmd)
			if err != nil {
				return err
			}
			return renderer.RenderConfig(cfg)
		},
	}
	cmd.Flags().BoolVar(&starter, "init", false, MsgFlagInit)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		Args:    cobra.NoArgs,
		GroupID: "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), version.String())
			return err
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompleteShort,
		Long:                  MsgCompleteLong,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

func newManCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:     "man",
		Short:   MsgManShort,
		Args:    cobra.NoArgs,
		GroupID: "misc",
		Hidden:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
			return doc.GenManTree(cmd.Root(), ManHeader(), dir)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "man", MsgFlagManDir)
	return cmd
}

// ManHeader is the header shared by every generated man page
func ManHeader() *doc.GenManHeader {
	return &doc.GenManHeader{
		Title:   "DOTSTOW",
		Section: "1",
		Source:  "dotstow " + version.Version,
		Manual:  "dotstow manual",
	}
}
