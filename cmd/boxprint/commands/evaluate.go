package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boxprint/boxprint/cmd/boxprint/internal/format"
	"github.com/boxprint/boxprint/pkg/appctx"
	"github.com/boxprint/boxprint/pkg/experiment"
	"github.com/boxprint/boxprint/pkg/report"
)

// NewEvaluateCommand creates the command scoring a saved cross-validation result.
func NewEvaluateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "evaluate <result>",
		Short:   "Score a saved cross-validation result per device and overall",
		GroupID: "model",
		Args:    cobra.ExactArgs(1),
		RunE:    runEvaluate,
	}
	cmd.Flags().Bool("confusion", true, "Print the row-normalised confusion matrix")
	return cmd
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	formatter := format.FromCommand(cmd)
	ctx := cmd.Context()
	showConfusion, _ := cmd.Flags().GetBool("confusion")

	res, err := experiment.LoadResult(resolveResult(ctx, args[0]))
	if err != nil {
		return err
	}
	summary := res.Summary()

	if formatter.Mode() == format.ModeJSON {
		return formatter.PrintJSON(map[string]any{
			"id":         res.ID,
			"rule":       res.Rule,
			"vocabulary": res.Vocabulary,
			"backend":    res.Backend,
			"summary":    summary,
		})
	}

	headers, rows := report.Table(report.AccuracyByDevice(summary, appctx.Taxonomy(ctx)))
	if err := formatter.PrintTable(headers, rows); err != nil {
		return err
	}
	if showConfusion {
		if _, err := fmt.Fprintln(cmd.OutOrStdout()); err != nil {
			return err
		}
		if err := report.WriteConfusion(cmd.OutOrStdout(), summary); err != nil {
			return err
		}
	}
	return formatter.PrintSummary(fmt.Sprintf("%s (%s, os=%t, %s vocabulary, %s): accuracy %.4f, balanced accuracy %.4f over %d videos",
		res.ID, res.Rule.Kind, res.Rule.UseOS, res.Vocabulary, res.Backend, summary.Accuracy, summary.BalancedAccuracy, summary.Videos))
}
