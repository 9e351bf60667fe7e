package classifier

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/lytics/multibayes"
)

// BackendBayes is a multi-label naive Bayes model over present features.
const BackendBayes = "bayes"

// emptyDocument stands for a row without any present feature.
const emptyDocument = "featureless"

func init() {
	Register(Backend{
		Name: BackendBayes,
		New: func(cfg Config) Trainer {
			return &BayesTrainer{MinClassSize: cfg.MinClassSize}
		},
		Decode: decodeBayes,
	})
}

// BayesTrainer trains a lytics/multibayes classifier. Each row becomes a
// document whose tokens name the present features.
type BayesTrainer struct {
	MinClassSize int
}

// BayesModel wraps a trained multibayes classifier. Rows for which the
// classifier has no opinion get the training majority label.
type BayesModel struct {
	clf      *multibayes.Classifier
	features int
	classes  int
	fallback int
}

type bayesState struct {
	Classifier json.RawMessage `json:"classifier"`
	Features   int             `json:"features"`
	Classes    int             `json:"classes"`
	Fallback   int             `json:"fallback"`
}

// Fit implements Trainer.
func (bt *BayesTrainer) Fit(x [][]uint8, y []int, classes int) (Model, error) {
	width, err := validateFit(x, y, classes)
	if err != nil {
		return nil, err
	}

	clf := multibayes.NewClassifier()
	clf.MinClassSize = bt.MinClassSize
	for i, row := range x {
		clf.Add(document(row), []string{strconv.Itoa(y[i])})
	}

	return &BayesModel{
		clf:      clf,
		features: width,
		classes:  classes,
		fallback: majority(y, classes),
	}, nil
}

// Backend implements Model.
func (m *BayesModel) Backend() string { return BackendBayes }

// Predict implements Model. The label with the highest posterior wins; ties
// go to the lowest label.
func (m *BayesModel) Predict(x [][]uint8) ([]int, error) {
	out := make([]int, len(x))
	for i, row := range x {
		if len(row) != m.features {
			return nil, fmt.Errorf("%w: row %d has %d features, model expects %d", ErrDimensionMismatch, i, len(row), m.features)
		}
		out[i] = m.fallback
		best := -1.0
		for label, p := range m.clf.Posterior(document(row)) {
			c, err := strconv.Atoi(label)
			if err != nil || c < 0 || c >= m.classes {
				continue
			}
			if p > best || (p == best && c < out[i]) {
				best, out[i] = p, c
			}
		}
	}
	return out, nil
}

// MarshalJSON persists the classifier state.
func (m *BayesModel) MarshalJSON() ([]byte, error) {
	raw, err := m.clf.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return json.Marshal(bayesState{
		Classifier: raw,
		Features:   m.features,
		Classes:    m.classes,
		Fallback:   m.fallback,
	})
}

func decodeBayes(raw json.RawMessage) (Model, error) {
	var st bayesState
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, err
	}
	clf, err := multibayes.NewClassifierFromJSON(st.Classifier)
	if err != nil {
		return nil, err
	}
	return &BayesModel{clf: clf, features: st.Features, classes: st.Classes, fallback: st.Fallback}, nil
}

// document renders present features as tokens ending in a digit, which the
// multibayes tokenizer leaves unstemmed.
func document(row []uint8) string {
	var b strings.Builder
	for i, v := range row {
		if v == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString("feature")
		b.WriteString(strconv.Itoa(i))
	}
	if b.Len() == 0 {
		return emptyDocument
	}
	return b.String()
}
