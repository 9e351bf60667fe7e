package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boxprint/boxprint/cmd/boxprint/internal/format"
	"github.com/boxprint/boxprint/pkg/appctx"
	"github.com/boxprint/boxprint/pkg/corpus"
	"github.com/boxprint/boxprint/pkg/likelihood"
	"github.com/boxprint/boxprint/pkg/logging"
	"github.com/boxprint/boxprint/pkg/report"
	"github.com/boxprint/boxprint/pkg/workspace"
)

// NewRatiosCommand creates and returns the 'boxprint ratios' command.
//
// Example usage:
//
//	boxprint ratios compute vision --os
//	boxprint ratios report ~/.local/share/boxprint/ratios/vision/D01-lr.json
func NewRatiosCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ratios",
		Short:   "Compute and report likelihood-ratio tables",
		GroupID: "data",
	}

	cmd.AddCommand(newRatiosComputeCommand())
	cmd.AddCommand(newRatiosReportCommand())

	return cmd
}

func newRatiosComputeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compute <corpus>",
		Short: "Write one ratio table per held-out device",
		Args:  cobra.ExactArgs(1),
		RunE:  runRatiosCompute,
	}

	cmd.Flags().Bool("os", false, "Cross every cell with the OS split")
	cmd.Flags().String("device", "", "Compute only the table holding out this device")
	cmd.Flags().Bool("all-devices", false, "With --device unset, also write the table over every device")
	cmd.Flags().String("out", "", "Output directory (default: workspace ratios/<corpus>)")

	return cmd
}

func runRatiosCompute(cmd *cobra.Command, args []string) error {
	formatter := format.FromCommand(cmd)
	ctx := cmd.Context()
	cfg := settings(ctx)

	useOS, _ := cmd.Flags().GetBool("os")
	device, _ := cmd.Flags().GetString("device")
	allDevices, _ := cmd.Flags().GetBool("all-devices")
	out, _ := cmd.Flags().GetString("out")

	path := resolveCorpus(ctx, args[0])
	c, err := corpus.Load(path)
	if err != nil {
		return err
	}
	if out == "" {
		if out, err = workspaceDir(ctx, "--out", workspace.Ratios, artifactName(path)); err != nil {
			return err
		}
	}

	engine := likelihood.NewEngine(appctx.Taxonomy(ctx), logging.Component("likelihood"))
	engine.OSSplit = cfg.Likelihood.OSSplit

	var paths []string
	if device != "" || allDevices {
		t, err := engine.Compute(c, likelihood.Options{ExcludeDevice: device, UseOS: useOS})
		if err != nil {
			return err
		}
		p, err := likelihood.Save(out, t)
		if err != nil {
			return err
		}
		paths = append(paths, p)
	}
	if device == "" {
		written, err := engine.ComputeAll(ctx, c, useOS, out)
		if err != nil {
			return err
		}
		paths = append(paths, written...)
	}

	if formatter.Mode() == format.ModeJSON {
		return formatter.PrintJSON(map[string]any{"dir": out, "tables": paths})
	}
	return formatter.PrintSummary(fmt.Sprintf("✓ Wrote %d ratio tables to %s", len(paths), out))
}

func newRatiosReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <table>...",
		Short: "Write per-pair saliency files of ratio tables",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runRatiosReport,
	}

	cmd.Flags().String("out", "", "Report directory (default: workspace reports)")
	cmd.Flags().Float64("likelihood.saliency_threshold", 1, "Minimum |log10 ratio| listed in reports")

	return cmd
}

func runRatiosReport(cmd *cobra.Command, args []string) error {
	formatter := format.FromCommand(cmd)
	ctx := cmd.Context()
	cfg := settings(ctx)

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		var err error
		if out, err = workspaceDir(ctx, "--out", workspace.Reports); err != nil {
			return err
		}
	}

	var (
		files    int
		warnings []string
	)
	for _, path := range args {
		t, err := likelihood.LoadTable(path)
		if err != nil {
			return err
		}
		written, warns, err := report.WriteSaliency(report.SaliencyDir(out, t), t, cfg.Likelihood.SaliencyThreshold)
		if err != nil {
			return err
		}
		files += len(written)
		for _, w := range warns {
			warnings = append(warnings, w.Error())
		}
	}

	if err := formatter.PrintWarnings("Skipped class pairs", warnings); err != nil {
		return err
	}
	if formatter.Mode() == format.ModeJSON {
		return formatter.PrintJSON(map[string]any{"dir": out, "files": files, "skipped": len(warnings)})
	}
	return formatter.PrintSummary(fmt.Sprintf("✓ Wrote %d saliency files to %s", files, out))
}
