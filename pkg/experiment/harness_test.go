package experiment

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxprint/boxprint/pkg/classifier"
	"github.com/boxprint/boxprint/pkg/corpus"
	"github.com/boxprint/boxprint/pkg/features"
	"github.com/boxprint/boxprint/pkg/likelihood"
	"github.com/boxprint/boxprint/pkg/symbol"
	"github.com/boxprint/boxprint/pkg/taxonomy"
)

// threeDevices has one native and one tampered video per device. Native
// videos carry "n", tampered ones "t", and every video carries "c".
func threeDevices(t *testing.T) *corpus.Corpus {
	t.Helper()
	c := corpus.New([]string{"non-SN"}, []string{"ffmpeg", "native"}, []string{"D01", "D02", "D03"})
	for _, d := range []string{"D01", "D02", "D03"} {
		require.NoError(t, c.Append("non-SN", "native", d, symbol.Of("c", "n")))
		require.NoError(t, c.Append("non-SN", "ffmpeg", d, symbol.Of("c", "t")))
	}
	return c
}

func newHarness(rule LabelRule, vocab VocabularySource) *Harness {
	return &Harness{
		Taxonomy:   taxonomy.Default(),
		Rule:       rule,
		Vocabulary: vocab,
		Trainer:    &classifier.TreeTrainer{MinSamplesLeaf: 1, Balanced: true},
		Backend:    classifier.BackendTree,
		Logger:     zerolog.Nop(),
	}
}

func TestSplitFold_HoldsOutDevice(t *testing.T) {
	c := threeDevices(t)
	l, err := NewLabeler(LabelRule{Kind: KindTamper}, c, taxonomy.Default())
	require.NoError(t, err)

	vocab, err := FullAlphabet{}.Vocabulary(context.Background(), c, "D01")
	require.NoError(t, err)
	assert.Equal(t, features.Vocabulary{"c", "n", "t"}, vocab)

	train, test, err := SplitFold(c, l, "D01", vocab)
	require.NoError(t, err)

	assert.Equal(t, 4, train.Len())
	assert.Equal(t, 2, test.Len())
	assert.NotContains(t, train.Devices, "D01")
	assert.Equal(t, []string{"D01", "D01"}, test.Devices)
	for _, row := range append(train.X, test.X...) {
		assert.Len(t, row, 3)
	}

	// Visit order is class-major: ffmpeg before native.
	assert.Equal(t, []int{1, 0}, test.Y)
	assert.Equal(t, [][]uint8{{1, 0, 1}, {1, 1, 0}}, test.X)
	assert.NoError(t, checkFold("D01", l.Classes(), train, test))
}

func TestCheckFold_EmptyTestSplit(t *testing.T) {
	c := threeDevices(t)
	l, err := NewLabeler(LabelRule{Kind: KindTamper}, c, taxonomy.Default())
	require.NoError(t, err)

	train, test, err := SplitFold(c, l, "D09", features.Vocabulary{"c"})
	require.NoError(t, err)
	assert.Equal(t, 6, train.Len())

	err = checkFold("D09", l.Classes(), train, test)
	require.Error(t, err)
	assert.True(t, IsFoldDegenerate(err))
	assert.Contains(t, err.Error(), "empty test split")
}

func TestRun_FullAlphabet(t *testing.T) {
	c := threeDevices(t)
	h := newHarness(LabelRule{Kind: KindTamper}, FullAlphabet{})

	res, err := h.Run(context.Background(), c)
	require.NoError(t, err)

	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "full", res.Vocabulary)
	assert.Equal(t, []string{"Native", "Tampered"}, res.Classes)
	require.Len(t, res.Folds, 3)
	for i, d := range []string{"D01", "D02", "D03"} {
		f := res.Folds[i]
		assert.Equal(t, d, f.Device)
		assert.Equal(t, 4, f.TrainSize)
		assert.Equal(t, f.YTrue, f.YPred)
		assert.Equal(t, classifier.BackendTree, f.Model.Backend())
	}

	yTrue, yPred := res.Aggregate()
	assert.Equal(t, []int{1, 0, 1, 0, 1, 0}, yTrue)
	assert.Equal(t, yTrue, yPred)
	assert.InDelta(t, 1.0, res.Summary().Accuracy, 1e-9)
}

func TestRun_Concurrent(t *testing.T) {
	c := threeDevices(t)
	h := newHarness(LabelRule{Kind: KindTamper}, FullAlphabet{})
	h.Concurrency = 3

	res, err := h.Run(context.Background(), c)
	require.NoError(t, err)
	require.Len(t, res.Folds, 3)
	assert.Equal(t, "D01", res.Folds[0].Device)
	assert.Equal(t, "D03", res.Folds[2].Device)
}

func TestRun_RatioSelection(t *testing.T) {
	c := threeDevices(t)
	src := &RatioSelection{
		Engine:    likelihood.NewEngine(taxonomy.Default(), zerolog.Nop()),
		Threshold: likelihood.DefaultSelectionThreshold,
	}
	h := newHarness(LabelRule{Kind: KindTamper}, src)

	res, err := h.Run(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, "ratio", res.Vocabulary)
	for _, f := range res.Folds {
		// "c" occurs everywhere and never separates the cells.
		assert.Equal(t, features.Vocabulary{"n", "t"}, f.Vocabulary)
		assert.Equal(t, f.YTrue, f.YPred)
	}
}

func TestRun_StoredRatios(t *testing.T) {
	c := threeDevices(t)
	dir := t.TempDir()

	engine := likelihood.NewEngine(taxonomy.Default(), zerolog.Nop())
	paths, err := engine.ComputeAll(context.Background(), c, false, dir)
	require.NoError(t, err)
	require.Len(t, paths, 3)

	src := &StoredRatios{Dir: dir, Threshold: likelihood.DefaultSelectionThreshold}
	h := newHarness(LabelRule{Kind: KindTamper}, src)

	res, err := h.Run(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, "stored", res.Vocabulary)
	for _, f := range res.Folds {
		assert.Equal(t, features.Vocabulary{"n", "t"}, f.Vocabulary)
	}
}

func TestRun_StoredRatiosMissing(t *testing.T) {
	c := threeDevices(t)
	h := newHarness(LabelRule{Kind: KindTamper}, &StoredRatios{Dir: t.TempDir()})

	_, err := h.Run(context.Background(), c)
	assert.Error(t, err)
}

func TestRun_LabelMissingFromTraining(t *testing.T) {
	// D02 is the only iOS device, so its fold never trains on iOS labels.
	c := threeDevices(t)
	h := newHarness(LabelRule{Kind: KindTamper, UseOS: true}, FullAlphabet{})

	_, err := h.Run(context.Background(), c)
	require.Error(t, err)
	assert.True(t, IsFoldDegenerate(err))

	var fe *FoldDegenerateError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "D02", fe.Device)
}

func TestRun_RequiresTrainer(t *testing.T) {
	h := &Harness{Rule: LabelRule{Kind: KindTamper}}
	_, err := h.Run(context.Background(), threeDevices(t))
	assert.Error(t, err)
}

func TestRun_EmptyCorpus(t *testing.T) {
	c := corpus.New([]string{"non-SN"}, []string{"native"}, []string{"D01"})
	_, err := newHarness(LabelRule{Kind: KindTamper}, nil).Run(context.Background(), c)
	assert.True(t, IsFoldDegenerate(err))
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newHarness(LabelRule{Kind: KindTamper}, FullAlphabet{}).Run(ctx, threeDevices(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_Telemetry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folds.jsonl")
	tw, err := NewTelemetryWriter(path)
	require.NoError(t, err)
	require.True(t, tw.IsEnabled())

	h := newHarness(LabelRule{Kind: KindTamper}, FullAlphabet{})
	h.Telemetry = tw
	res, err := h.Run(context.Background(), threeDevices(t))
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	assert.False(t, tw.IsEnabled())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var events []FoldEvent
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var ev FoldEvent
		require.NoError(t, json.Unmarshal(sc.Bytes(), &ev))
		events = append(events, ev)
	}
	require.NoError(t, sc.Err())
	require.Len(t, events, 3)
	for _, ev := range events {
		assert.Equal(t, res.ID, ev.RunID)
		assert.Equal(t, "success", ev.Status)
		assert.Equal(t, 2, ev.Test)
		assert.Equal(t, 3, ev.Vocabulary)
	}
}

func TestTelemetryWriter_Disabled(t *testing.T) {
	tw, err := NewTelemetryWriter("")
	require.NoError(t, err)
	assert.False(t, tw.IsEnabled())
	assert.NoError(t, tw.Write(FoldEvent{Device: "D01"}))
	assert.NoError(t, tw.Close())

	var nilWriter *TelemetryWriter
	assert.NoError(t, nilWriter.Write(FoldEvent{}))
}

func TestResult_SaveLoad(t *testing.T) {
	h := newHarness(LabelRule{Kind: KindTamper}, FullAlphabet{})
	res, err := h.Run(context.Background(), threeDevices(t))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "results", res.ID+".json")
	require.NoError(t, SaveResult(path, res))

	got, err := LoadResult(path)
	require.NoError(t, err)
	assert.Equal(t, res.ID, got.ID)
	assert.Equal(t, res.Rule, got.Rule)
	assert.Equal(t, res.Classes, got.Classes)
	require.Len(t, got.Folds, 3)

	f, ok := got.Fold("D02")
	require.True(t, ok)
	want, _ := res.Fold("D02")
	assert.Equal(t, want.Vocabulary, f.Vocabulary)
	assert.Equal(t, want.YTrue, f.YTrue)
	require.NotNil(t, f.Model)
	assert.Equal(t, classifier.BackendTree, f.Model.Backend())

	// The restored model predicts like the original.
	x := [][]uint8{{1, 1, 0}, {1, 0, 1}}
	p1, err := want.Model.Predict(x)
	require.NoError(t, err)
	p2, err := f.Model.Predict(x)
	require.NoError(t, err)
	assert.Equal(t, p1, p2)

	_, ok = got.Fold("D09")
	assert.False(t, ok)
}

func TestResult_AggregateSortsByDevice(t *testing.T) {
	res := &Result{
		Classes: []string{"ffmpeg", "native"},
		Folds: []Fold{
			{Device: "D03", YTrue: []int{1}, YPred: []int{0}},
			{Device: "D01", YTrue: []int{0, 1}, YPred: []int{0, 1}},
			{Device: "D02", YTrue: []int{1}, YPred: []int{1}},
		},
	}

	yTrue, yPred := res.Aggregate()
	assert.Equal(t, []int{0, 1, 1, 1}, yTrue)
	assert.Equal(t, []int{0, 1, 1, 0}, yPred)
	assert.Equal(t, "D03", res.Folds[0].Device, "folds are left in place")
}
