package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/boxprint/boxprint/cmd/boxprint/internal/bind"
	"github.com/boxprint/boxprint/cmd/boxprint/internal/format"
	"github.com/boxprint/boxprint/pkg/appctx"
	"github.com/boxprint/boxprint/pkg/corpus"
	"github.com/boxprint/boxprint/pkg/logging"
	"github.com/boxprint/boxprint/pkg/workspace"
)

// NewCorpusCommand creates and returns the 'boxprint corpus' command.
//
// Example usage:
//
//	boxprint corpus build ./dataset --whitelist ids.json --name vision
//	boxprint corpus check ./dataset --whitelist ids.json
//	boxprint corpus stats vision
func NewCorpusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "corpus",
		Short:   "Build and inspect symbol corpora",
		GroupID: "data",
	}

	cmd.AddCommand(newCorpusBuildCommand())
	cmd.AddCommand(newCorpusCheckCommand())
	cmd.AddCommand(newCorpusStatsCommand())

	return cmd
}

func newCorpusBuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <dataset-root>",
		Short: "Parse <root>/<platform>/<class>/*.xml box trees into a corpus",
		Args:  cobra.ExactArgs(1),
		RunE:  runCorpusBuild,
	}

	cmd.Flags().String("whitelist", "", "JSON list of video ids to include (required)")
	cmd.Flags().String("only-device", "", "Keep only videos of this device")
	cmd.Flags().String("name", "", "Corpus name inside the workspace")
	cmd.Flags().String("out", "", "Explicit corpus file path")
	cmd.Flags().Bool("extract.keep_final_number", false, "Keep trailing -<digits> suffixes on box keys")

	return cmd
}

func runCorpusBuild(cmd *cobra.Command, args []string) error {
	formatter := format.FromCommand(cmd)
	ctx := cmd.Context()

	opts, err := bind.BindBuildOptions(cmd, args)
	if err != nil {
		return err
	}
	cfg := settings(ctx)

	out := opts.Output
	if out == "" {
		if out, err = workspaceDir(ctx, "--out", workspace.Corpora, opts.Name+".json"); err != nil {
			return err
		}
	}

	wl, err := corpus.LoadWhitelist(opts.Whitelist)
	if err != nil {
		return err
	}

	builder := corpus.NewBuilder(opts.Root, wl, appctx.Taxonomy(ctx), logging.Component("corpus"))
	builder.Options.KeepFinalNumber = cfg.Extract.KeepFinalNumber
	builder.OnlyDevice = opts.OnlyDevice

	c, warnings, err := builder.Build(ctx)
	if err != nil {
		return err
	}
	if err := corpus.Save(out, c); err != nil {
		return err
	}

	if err := formatter.PrintWarnings("Consistency warnings", warningStrings(warnings)); err != nil {
		return err
	}

	st := c.Stats()
	if formatter.Mode() == format.ModeJSON {
		return formatter.PrintJSON(map[string]any{
			"path":     out,
			"stats":    st,
			"warnings": len(warnings),
		})
	}
	return formatter.PrintSummary(fmt.Sprintf("✓ Built corpus %s: %d videos, %d devices, %d symbols", out, st.Videos, len(c.DeviceIDs()), st.Alphabet))
}

func newCorpusCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <dataset-root>",
		Short: "Report whitelisted videos missing from dataset cells without parsing",
		Args:  cobra.ExactArgs(1),
		RunE:  runCorpusCheck,
	}
	cmd.Flags().String("whitelist", "", "JSON list of video ids (required)")
	_ = cmd.MarkFlagRequired("whitelist")
	return cmd
}

func runCorpusCheck(cmd *cobra.Command, args []string) error {
	formatter := format.FromCommand(cmd)
	path, _ := cmd.Flags().GetString("whitelist")

	wl, err := corpus.LoadWhitelist(path)
	if err != nil {
		return err
	}

	warnings := corpus.Check(args[0], wl, appctx.Taxonomy(cmd.Context()))
	rows := make([][]string, 0, len(warnings))
	for _, w := range warnings {
		rows = append(rows, []string{w.Platform, w.Class, w.VideoID, w.Reason})
	}
	if len(rows) > 0 || formatter.Mode() == format.ModeJSON {
		if err := formatter.PrintTable([]string{"platform", "class", "video", "reason"}, rows); err != nil {
			return err
		}
	}
	return formatter.PrintSummary(fmt.Sprintf("%d whitelisted videos, %d warnings", wl.Len(), len(warnings)))
}

func newCorpusStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <corpus>",
		Short: "Show per-cell video, device and symbol counts",
		Args:  cobra.ExactArgs(1),
		RunE:  runCorpusStats,
	}
}

func runCorpusStats(cmd *cobra.Command, args []string) error {
	formatter := format.FromCommand(cmd)

	c, err := corpus.Load(resolveCorpus(cmd.Context(), args[0]))
	if err != nil {
		return err
	}
	st := c.Stats()
	if formatter.Mode() == format.ModeJSON {
		return formatter.PrintJSON(st)
	}

	rows := make([][]string, 0, len(st.Cells))
	for _, cs := range st.Cells {
		rows = append(rows, []string{
			cs.Platform,
			cs.Class,
			strconv.Itoa(cs.Videos),
			strconv.Itoa(cs.Devices),
			strconv.Itoa(cs.Symbols),
		})
	}
	if err := formatter.PrintTable([]string{"platform", "class", "videos", "devices", "symbols"}, rows); err != nil {
		return err
	}
	return formatter.PrintSummary(fmt.Sprintf("%d videos over %d devices, alphabet of %d symbols", st.Videos, len(c.DeviceIDs()), st.Alphabet))
}

func warningStrings(warnings []corpus.ConsistencyWarning) []string {
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = w.String()
	}
	return out
}
