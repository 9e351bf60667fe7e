package experiment

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/boxprint/boxprint/pkg/classifier"
	"github.com/boxprint/boxprint/pkg/corpus"
	"github.com/boxprint/boxprint/pkg/features"
	"github.com/boxprint/boxprint/pkg/metrics"
	"github.com/boxprint/boxprint/pkg/symbol"
	"github.com/boxprint/boxprint/pkg/taxonomy"
)

// Harness runs leave-one-device-out cross-validation.
type Harness struct {
	Taxonomy   *taxonomy.Taxonomy
	Rule       LabelRule
	Vocabulary VocabularySource
	Trainer    classifier.Trainer
	// Backend is recorded in the result.
	Backend string
	// Concurrency bounds parallel folds; values below 1 run folds one by one.
	Concurrency int
	Telemetry   *TelemetryWriter
	Logger      zerolog.Logger
}

// Split is one side of a fold.
type Split struct {
	X       [][]uint8
	Y       []int
	Devices []string
}

// Len returns the number of rows.
func (s Split) Len() int { return len(s.Y) }

// Run evaluates every observed device. Any degenerate fold aborts the run.
func (h *Harness) Run(ctx context.Context, c *corpus.Corpus) (*Result, error) {
	if h.Trainer == nil {
		return nil, fmt.Errorf("harness: trainer is required")
	}
	if h.Vocabulary == nil {
		h.Vocabulary = FullAlphabet{}
	}

	labeler, err := NewLabeler(h.Rule, c, h.Taxonomy)
	if err != nil {
		return nil, err
	}

	devices := h.devices(c, labeler)
	if len(devices) == 0 {
		return nil, &FoldDegenerateError{Device: "*", Reason: "corpus has no sequences for the selected platforms"}
	}

	res := &Result{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
		Rule:       h.Rule,
		Vocabulary: h.Vocabulary.Name(),
		Backend:    h.Backend,
		Classes:    labeler.Classes(),
		Folds:      make([]Fold, len(devices)),
	}
	h.Logger.Info().
		Str("run_id", res.ID).
		Str("rule", string(h.Rule.Kind)).
		Bool("use_os", h.Rule.UseOS).
		Str("vocabulary", res.Vocabulary).
		Int("devices", len(devices)).
		Int("classes", len(res.Classes)).
		Msg("Starting cross-validation")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(h.Concurrency, 1))
	for i, device := range devices {
		g.Go(func() error {
			fold, err := h.fold(gctx, c, labeler, device)
			h.record(res.ID, device, fold, err)
			if err != nil {
				return err
			}
			res.Folds[i] = fold
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	yTrue, yPred := res.Aggregate()
	h.Logger.Info().
		Str("run_id", res.ID).
		Float64("accuracy", metrics.Accuracy(yTrue, yPred)).
		Float64("balanced_accuracy", metrics.BalancedAccuracy(yTrue, yPred)).
		Msg("Cross-validation finished")
	return res, nil
}

// devices lists observed devices of the included platforms in sorted order.
func (h *Harness) devices(c *corpus.Corpus, l *Labeler) []string {
	seen := map[string]struct{}{}
	c.Visit(func(p, _, d string, seqs []symbol.Sequence) {
		if l.Includes(p) && len(seqs) > 0 {
			seen[d] = struct{}{}
		}
	})
	out := make([]string, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	slices.Sort(out)
	return out
}

func (h *Harness) fold(ctx context.Context, c *corpus.Corpus, l *Labeler, device string) (Fold, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return Fold{}, err
	}

	vocab, err := h.Vocabulary.Vocabulary(ctx, c, device)
	if err != nil {
		return Fold{}, fmt.Errorf("fold %s vocabulary: %w", device, err)
	}

	train, test, err := SplitFold(c, l, device, vocab)
	if err != nil {
		return Fold{}, err
	}
	if err := checkFold(device, l.classes, train, test); err != nil {
		return Fold{}, err
	}

	model, err := h.Trainer.Fit(train.X, train.Y, len(l.classes))
	if err != nil {
		return Fold{}, fmt.Errorf("fold %s fit: %w", device, err)
	}
	pred, err := model.Predict(test.X)
	if err != nil {
		return Fold{}, fmt.Errorf("fold %s predict: %w", device, err)
	}

	fold := Fold{
		Device:     device,
		Vocabulary: vocab,
		Model:      model,
		YTrue:      test.Y,
		YPred:      pred,
		TrainSize:  train.Len(),
		Duration:   time.Since(start),
	}
	h.Logger.Debug().
		Str("device", device).
		Int("vocabulary", len(vocab)).
		Int("train", train.Len()).
		Int("test", test.Len()).
		Float64("accuracy", metrics.Accuracy(test.Y, pred)).
		Dur("duration", fold.Duration).
		Msg("Fold done")
	return fold, nil
}

func (h *Harness) record(runID, device string, f Fold, err error) {
	ev := FoldEvent{
		Timestamp:  time.Now().UTC(),
		RunID:      runID,
		Device:     device,
		Status:     "success",
		Vocabulary: len(f.Vocabulary),
		Train:      f.TrainSize,
		Test:       len(f.YTrue),
		Accuracy:   metrics.Accuracy(f.YTrue, f.YPred),
		DurationMs: f.Duration.Milliseconds(),
	}
	if err != nil {
		ev.Status = "failed"
		ev.Error = err.Error()
	}
	if werr := h.Telemetry.Write(ev); werr != nil {
		h.Logger.Warn().Err(werr).Str("device", device).Msg("Telemetry write failed")
	}
}

// SplitFold vectorises the corpus against vocab. Sequences of device form the
// test split and all other sequences the train split.
func SplitFold(c *corpus.Corpus, l *Labeler, device string, vocab features.Vocabulary) (train, test Split, err error) {
	c.Visit(func(p, cl, d string, seqs []symbol.Sequence) {
		if err != nil || len(seqs) == 0 || !l.Includes(p) {
			return
		}
		label, lerr := l.Label(p, cl, d)
		if lerr != nil {
			err = &FoldDegenerateError{Device: device, Reason: lerr.Error()}
			return
		}
		dst := &train
		if d == device {
			dst = &test
		}
		for _, seq := range seqs {
			dst.X = append(dst.X, features.Vectorize(seq, vocab))
			dst.Y = append(dst.Y, label)
			dst.Devices = append(dst.Devices, d)
		}
	})
	return train, test, err
}

func checkFold(device string, classes []string, train, test Split) error {
	if test.Len() == 0 {
		return &FoldDegenerateError{Device: device, Reason: "empty test split"}
	}
	if train.Len() == 0 {
		return &FoldDegenerateError{Device: device, Reason: "empty train split"}
	}
	seen := make(map[int]struct{})
	for _, y := range train.Y {
		seen[y] = struct{}{}
	}
	for _, y := range test.Y {
		if _, ok := seen[y]; !ok {
			return &FoldDegenerateError{Device: device, Reason: fmt.Sprintf("test label %q never appears in training data", classes[y])}
		}
	}
	return nil
}
