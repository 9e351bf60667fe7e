package commands

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/boxprint/boxprint/cmd/boxprint/internal/format"
	"github.com/boxprint/boxprint/pkg/appctx"
	"github.com/boxprint/boxprint/pkg/config"
)

// NewConfigCommand creates the command printing the merged configuration.
func NewConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "config",
		Short:   "Show the effective configuration after defaults, file, env and flags",
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			formatter := format.FromCommand(cmd)
			mgr, ok := appctx.Config(cmd.Context())
			if !ok {
				return fmt.Errorf("configuration not loaded")
			}
			k := mgr.Koanf()

			keys := slices.Sorted(maps.Keys(config.DefaultConfigAsMap()))
			rows := make([][]string, 0, len(keys))
			for _, key := range keys {
				rows = append(rows, []string{key, fmt.Sprint(k.Get(key))})
			}
			return formatter.PrintTable([]string{"key", "value"}, rows)
		},
	}
}
