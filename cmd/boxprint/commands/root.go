package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/boxprint/boxprint/cmd/boxprint/internal/format"
	"github.com/boxprint/boxprint/pkg/appctx"
	"github.com/boxprint/boxprint/pkg/config"
	"github.com/boxprint/boxprint/pkg/logging"
	"github.com/boxprint/boxprint/pkg/taxonomy"
	"github.com/boxprint/boxprint/pkg/workspace"
)

const cliExecutable = "boxprint"

// NewCommand constructs the top-level boxprint CLI command, wiring global flags,
// configuration, logging, the taxonomy and shared workspace preparation.
func NewCommand() *cobra.Command {
	var (
		configFile        string
		workspaceDisabled bool
		verbosityCount    int
	)

	cmd := &cobra.Command{
		Use:   cliExecutable,
		Short: "Boxprint identifies video provenance from MP4 container structure",
		Long: `Boxprint turns the box trees of MP4 files into symbol sets, scores symbols
by how well they separate capture platforms and editing tools, and evaluates
classifiers with leave-one-device-out cross-validation.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := format.ValidateCommand(cmd); err != nil {
				return WithErrorCode(err, format.CodeInvalidArgument)
			}

			mgr := config.NewManager()
			if err := mgr.Load(cmd.Flags(), configFile); err != nil {
				return WithErrorCode(fmt.Errorf("load configuration: %w", err), format.CodeInvalidConfig)
			}
			cfg := mgr.Get()

			level := logging.LevelFromVerbosity(cfg.Log.Level, verbosityCount, false)
			if err := logging.ConfigureGlobalLogging(level, cfg.Log.Format); err != nil {
				return err
			}

			tax := taxonomy.Default()
			if cfg.Taxonomy.File != "" {
				loaded, err := taxonomy.Load(cfg.Taxonomy.File)
				if err != nil {
					return WithErrorCode(err, format.CodeInvalidConfig)
				}
				tax = loaded
			}

			ctx := appctx.WithConfig(cmd.Context(), mgr)
			ctx = appctx.WithTaxonomy(ctx, tax)

			if !workspaceDisabled {
				prepared, err := workspace.Prepare(cfg.Workspace.Dir)
				if err != nil {
					return fmt.Errorf("prepare workspace: %w", err)
				}
				ctx = workspace.WithContext(ctx, prepared)
				log.Debug().Str("workspace", prepared).Msg("workspace ready")
			} else {
				log.Debug().Msg("workspace disabled for this run")
			}

			cmd.SetContext(ctx)
			if root := cmd.Root(); root != nil && root != cmd {
				root.SetContext(ctx)
			}
			return nil
		},
	}

	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file path")
	cmd.PersistentFlags().BoolVar(&workspaceDisabled, "no-workspace", false, "Disable workspace defaults for this run")
	cmd.PersistentFlags().CountVarP(&verbosityCount, "verbosity", "v", "Increase logging verbosity (repeatable)")
	format.BindFlags(cmd.PersistentFlags())

	config.BindFlags(cmd.PersistentFlags())

	cmd.AddGroup(&cobra.Group{ID: "data", Title: "Data Commands"})
	cmd.AddGroup(&cobra.Group{ID: "model", Title: "Model Commands"})
	cmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands"})

	cmd.AddCommand(NewCorpusCommand())
	cmd.AddCommand(NewRatiosCommand())
	cmd.AddCommand(NewTrainCommand())
	cmd.AddCommand(NewEvaluateCommand())
	cmd.AddCommand(NewConfigCommand())
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// Execute runs the CLI with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	cmd, err := root.ExecuteContextC(ctx)
	if err == nil {
		return 0
	}

	if cmd == nil {
		cmd = root
	}
	operation := "run " + strings.TrimPrefix(cmd.CommandPath(), cliExecutable+" ")
	_ = format.FromCommand(cmd).PrintTotalFailureSummary(operation, err, ErrorCode(err))
	return ExitCode(err)
}
