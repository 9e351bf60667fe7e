package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boxprint/boxprint/cmd/boxprint/internal/format"
	"github.com/boxprint/boxprint/pkg/version"
)

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:     "version",
		Short:   "Print version information",
		GroupID: "core",
		RunE: func(cmd *cobra.Command, _ []string) error {
			formatter := format.FromCommand(cmd)
			info := version.Get()
			if formatter.Mode() == format.ModeJSON {
				return formatter.PrintJSON(info)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s version: %s\n", cliExecutable, info.Version)
			if short {
				return nil
			}
			fmt.Fprintf(out, "Commit: %s\n", info.Commit)
			fmt.Fprintf(out, "Build Date: %s\n", info.BuildDate)
			fmt.Fprintf(out, "Go Version: %s\n", info.GoVersion)
			fmt.Fprintf(out, "Artifact Schema: %s\n", info.ArtifactSchema)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only the version number")

	return cmd
}
