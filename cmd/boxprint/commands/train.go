package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boxprint/boxprint/cmd/boxprint/internal/bind"
	"github.com/boxprint/boxprint/cmd/boxprint/internal/format"
	"github.com/boxprint/boxprint/pkg/appctx"
	"github.com/boxprint/boxprint/pkg/classifier"
	"github.com/boxprint/boxprint/pkg/config"
	"github.com/boxprint/boxprint/pkg/corpus"
	"github.com/boxprint/boxprint/pkg/experiment"
	"github.com/boxprint/boxprint/pkg/likelihood"
	"github.com/boxprint/boxprint/pkg/logging"
	"github.com/boxprint/boxprint/pkg/report"
	"github.com/boxprint/boxprint/pkg/workspace"
)

// NewTrainCommand creates the leave-one-device-out cross-validation command.
//
// Example usage:
//
//	boxprint train vision --rule tamper
//	boxprint train vision --rule blind --os --vocabulary ratio
//	boxprint train vision --rule manipulation --platforms Before-YouTube --classifier.backend bayes
func NewTrainCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "train <corpus>",
		Short:   "Run leave-one-device-out cross-validation and save the fold results",
		GroupID: "model",
		Args:    cobra.ExactArgs(1),
		RunE:    runTrain,
	}

	defaults := config.DefaultConfig()

	cmd.Flags().String("rule", string(experiment.KindTamper), fmt.Sprintf("Label rule: %v", experiment.Kinds()))
	cmd.Flags().Bool("os", false, "Prefix labels with the device operating system")
	cmd.Flags().StringSlice("platforms", nil, "Restrict the corpus to these platforms")
	cmd.Flags().String("vocabulary", bind.VocabularyFull, "Vocabulary source: full | ratio | stored")
	cmd.Flags().String("ratios", "", "Directory of stored ratio tables (default: workspace ratios/<corpus>)")
	cmd.Flags().String("out", "", "Result file (default: workspace results/<run-id>.json)")

	cmd.Flags().Float64("likelihood.selection_threshold", defaults.Likelihood.SelectionThreshold, "Minimum |log10 ratio| for vocabulary selection")
	cmd.Flags().String("classifier.backend", defaults.Classifier.Backend, fmt.Sprintf("Classifier backend: %v", classifier.Backends()))
	cmd.Flags().Int("classifier.min_samples_leaf", defaults.Classifier.MinSamplesLeaf, "Tree: minimum rows per leaf")
	cmd.Flags().Int("classifier.max_depth", defaults.Classifier.MaxDepth, "Tree: maximum depth (0: unlimited)")
	cmd.Flags().Int("experiment.concurrency", defaults.Experiment.Concurrency, "Folds evaluated in parallel")
	cmd.Flags().String("experiment.telemetry", defaults.Experiment.Telemetry, "JSONL file receiving one event per fold")

	return cmd
}

func runTrain(cmd *cobra.Command, args []string) error {
	formatter := format.FromCommand(cmd)
	ctx := cmd.Context()
	cfg := settings(ctx)
	tax := appctx.Taxonomy(ctx)

	opts, err := bind.BindTrainOptions(cmd, args)
	if err != nil {
		return err
	}

	path := resolveCorpus(ctx, opts.Corpus)
	c, err := corpus.Load(path)
	if err != nil {
		return err
	}

	trainer, err := classifier.NewTrainer(cfg.ClassifierConfig())
	if err != nil {
		return err
	}

	source, err := vocabularySource(cmd, cfg, opts, artifactName(path))
	if err != nil {
		return err
	}

	telemetry, err := experiment.NewTelemetryWriter(cfg.Experiment.Telemetry)
	if err != nil {
		return err
	}
	defer telemetry.Close()

	h := &experiment.Harness{
		Taxonomy:    tax,
		Rule:        opts.Rule,
		Vocabulary:  source,
		Trainer:     trainer,
		Backend:     cfg.Classifier.Backend,
		Concurrency: cfg.Experiment.Concurrency,
		Telemetry:   telemetry,
		Logger:      logging.Component("experiment"),
	}
	res, err := h.Run(ctx, c)
	if err != nil {
		return err
	}

	out := opts.Output
	if out == "" {
		if out, err = workspaceDir(ctx, "--out", workspace.Results, res.ID+".json"); err != nil {
			return err
		}
	}
	if err := experiment.SaveResult(out, res); err != nil {
		return err
	}

	summary := res.Summary()
	if formatter.Mode() == format.ModeJSON {
		return formatter.PrintJSON(map[string]any{
			"id":      res.ID,
			"path":    out,
			"summary": summary,
		})
	}

	headers, rows := report.Table(report.AccuracyByDevice(summary, tax))
	if err := formatter.PrintTable(headers, rows); err != nil {
		return err
	}
	return formatter.PrintSummary(fmt.Sprintf("✓ %s: accuracy %.4f, balanced accuracy %.4f over %d videos (%s)",
		res.ID, summary.Accuracy, summary.BalancedAccuracy, summary.Videos, out))
}

func vocabularySource(cmd *cobra.Command, cfg config.Config, opts bind.TrainOptions, corpusName string) (experiment.VocabularySource, error) {
	ctx := cmd.Context()
	threshold := cfg.Likelihood.SelectionThreshold

	switch opts.Vocabulary {
	case bind.VocabularyRatio:
		engine := likelihood.NewEngine(appctx.Taxonomy(ctx), logging.Component("likelihood"))
		engine.OSSplit = cfg.Likelihood.OSSplit
		return &experiment.RatioSelection{Engine: engine, UseOS: opts.Rule.UseOS, Threshold: threshold}, nil
	case bind.VocabularyStored:
		dir := opts.RatioDir
		if dir == "" {
			var err error
			if dir, err = workspaceDir(ctx, "--ratios", workspace.Ratios, corpusName); err != nil {
				return nil, err
			}
		}
		return &experiment.StoredRatios{Dir: dir, UseOS: opts.Rule.UseOS, Threshold: threshold}, nil
	default:
		return experiment.FullAlphabet{}, nil
	}
}
