package experiment

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/boxprint/boxprint/pkg/artifact"
	"github.com/boxprint/boxprint/pkg/classifier"
	"github.com/boxprint/boxprint/pkg/features"
	"github.com/boxprint/boxprint/pkg/metrics"
)

// Fold is the outcome of one held-out device. The vocabulary and model are
// owned by the fold and never shared.
type Fold struct {
	Device     string
	Vocabulary features.Vocabulary
	Model      classifier.Model
	YTrue      []int
	YPred      []int
	TrainSize  int
	Duration   time.Duration
}

type foldJSON struct {
	Device     string              `json:"device"`
	Vocabulary features.Vocabulary `json:"vocabulary"`
	Model      classifier.Encoded  `json:"model"`
	YTrue      []int               `json:"y_true"`
	YPred      []int               `json:"y_pred"`
	TrainSize  int                 `json:"train_size"`
	Duration   time.Duration       `json:"duration_ns"`
}

// MarshalJSON encodes the model with its backend name.
func (f Fold) MarshalJSON() ([]byte, error) {
	var enc classifier.Encoded
	if f.Model != nil {
		var err error
		if enc, err = classifier.Encode(f.Model); err != nil {
			return nil, err
		}
	}
	return json.Marshal(foldJSON{
		Device:     f.Device,
		Vocabulary: f.Vocabulary,
		Model:      enc,
		YTrue:      f.YTrue,
		YPred:      f.YPred,
		TrainSize:  f.TrainSize,
		Duration:   f.Duration,
	})
}

// UnmarshalJSON restores the model through its backend.
func (f *Fold) UnmarshalJSON(data []byte) error {
	var raw foldJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var m classifier.Model
	if raw.Model.Backend != "" {
		var err error
		if m, err = classifier.Decode(raw.Model); err != nil {
			return fmt.Errorf("fold %s: %w", raw.Device, err)
		}
	}
	*f = Fold{
		Device:     raw.Device,
		Vocabulary: raw.Vocabulary,
		Model:      m,
		YTrue:      raw.YTrue,
		YPred:      raw.YPred,
		TrainSize:  raw.TrainSize,
		Duration:   raw.Duration,
	}
	return nil
}

// Result holds the label list and every fold of a run, sorted by device.
type Result struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Rule       LabelRule `json:"rule"`
	Vocabulary string    `json:"vocabulary"`
	Backend    string    `json:"backend"`
	Classes    []string  `json:"classes"`
	Folds      []Fold    `json:"folds"`
}

// Fold returns the fold of device.
func (r *Result) Fold(device string) (Fold, bool) {
	for _, f := range r.Folds {
		if f.Device == device {
			return f, true
		}
	}
	return Fold{}, false
}

// Aggregate concatenates the labels of every fold in device order,
// whatever the order of Folds.
func (r *Result) Aggregate() (yTrue, yPred []int) {
	folds := slices.Clone(r.Folds)
	slices.SortStableFunc(folds, func(a, b Fold) int { return cmp.Compare(a.Device, b.Device) })
	for _, f := range folds {
		yTrue = append(yTrue, f.YTrue...)
		yPred = append(yPred, f.YPred...)
	}
	return yTrue, yPred
}

// Summary scores the result.
func (r *Result) Summary() metrics.Summary {
	byDevice := make(map[string]metrics.Labels, len(r.Folds))
	for _, f := range r.Folds {
		byDevice[f.Device] = metrics.Labels{True: f.YTrue, Pred: f.YPred}
	}
	return metrics.Summarize(r.Classes, byDevice)
}

// SaveResult writes r to path.
func SaveResult(path string, r *Result) error {
	return artifact.Write(path, artifact.KindResult, r)
}

// LoadResult reads a result written by SaveResult.
func LoadResult(path string) (*Result, error) {
	var r Result
	if err := artifact.Read(path, artifact.KindResult, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
