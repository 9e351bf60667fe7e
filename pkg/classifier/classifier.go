// Package classifier provides the fit/predict capability consumed by the
// cross-validation harness. Backends are selected by name at runtime.
package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrUnknownBackend is returned for backend names nobody registered.
	ErrUnknownBackend = errors.New("unknown classifier backend")
	// ErrEmptyTrainingSet is returned when Fit gets no rows.
	ErrEmptyTrainingSet = errors.New("empty training set")
	// ErrDimensionMismatch is returned for rows of inconsistent width or
	// label vectors of the wrong length.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrLabelRange is returned for labels outside [0, classes).
	ErrLabelRange = errors.New("label out of range")
)

// Trainer fits a model on binary feature rows and integer labels.
type Trainer interface {
	Fit(x [][]uint8, y []int, classes int) (Model, error)
}

// Model predicts labels. Predictions are deterministic for a fixed model.
type Model interface {
	Backend() string
	Predict(x [][]uint8) ([]int, error)
}

// Config selects and tunes a backend.
type Config struct {
	Backend        string `json:"backend" koanf:"backend"`
	MinSamplesLeaf int    `json:"min_samples_leaf" koanf:"min_samples_leaf"`
	MaxDepth       int    `json:"max_depth" koanf:"max_depth"`
	Balanced       bool   `json:"balanced" koanf:"balanced"`
	MinClassSize   int    `json:"min_class_size" koanf:"min_class_size"`
}

// DefaultConfig is a balanced tree with at least 12 samples per leaf.
func DefaultConfig() Config {
	return Config{
		Backend:        BackendTree,
		MinSamplesLeaf: 12,
		Balanced:       true,
		MinClassSize:   1,
	}
}

// Backend registers a trainer constructor and a model decoder.
type Backend struct {
	Name   string
	New    func(Config) Trainer
	Decode func(json.RawMessage) (Model, error)
}

var (
	backendMu sync.RWMutex
	backends  = map[string]Backend{}
)

// Register adds or replaces a backend.
func Register(b Backend) {
	backendMu.Lock()
	defer backendMu.Unlock()
	backends[b.Name] = b
}

// Backends lists registered backend names.
func Backends() []string {
	backendMu.RLock()
	defer backendMu.RUnlock()
	out := make([]string, 0, len(backends))
	for name := range backends {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func lookup(name string) (Backend, error) {
	backendMu.RLock()
	defer backendMu.RUnlock()
	b, ok := backends[name]
	if !ok {
		return Backend{}, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	return b, nil
}

// NewTrainer returns the trainer of cfg.Backend.
func NewTrainer(cfg Config) (Trainer, error) {
	b, err := lookup(cfg.Backend)
	if err != nil {
		return nil, err
	}
	return b.New(cfg), nil
}

// Encoded is the persisted form of a model.
type Encoded struct {
	Backend string          `json:"backend"`
	Model   json.RawMessage `json:"model"`
}

// Encode serialises a model together with its backend name.
func Encode(m Model) (Encoded, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return Encoded{}, fmt.Errorf("encode %s model: %w", m.Backend(), err)
	}
	return Encoded{Backend: m.Backend(), Model: raw}, nil
}

// Decode restores a model written by Encode.
func Decode(e Encoded) (Model, error) {
	b, err := lookup(e.Backend)
	if err != nil {
		return nil, err
	}
	m, err := b.Decode(e.Model)
	if err != nil {
		return nil, fmt.Errorf("decode %s model: %w", e.Backend, err)
	}
	return m, nil
}

func validateFit(x [][]uint8, y []int, classes int) (int, error) {
	if len(x) == 0 {
		return 0, ErrEmptyTrainingSet
	}
	if len(x) != len(y) {
		return 0, fmt.Errorf("%w: %d rows, %d labels", ErrDimensionMismatch, len(x), len(y))
	}
	width := len(x[0])
	for i, row := range x {
		if len(row) != width {
			return 0, fmt.Errorf("%w: row %d has %d features, want %d", ErrDimensionMismatch, i, len(row), width)
		}
	}
	for i, label := range y {
		if label < 0 || label >= classes {
			return 0, fmt.Errorf("%w: label %d at row %d, classes %d", ErrLabelRange, label, i, classes)
		}
	}
	return width, nil
}

func majority(y []int, classes int) int {
	counts := make([]int, classes)
	for _, label := range y {
		counts[label]++
	}
	best := 0
	for c := 1; c < classes; c++ {
		if counts[c] > counts[best] {
			best = c
		}
	}
	return best
}
