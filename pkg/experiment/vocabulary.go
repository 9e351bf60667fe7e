package experiment

import (
	"context"
	"fmt"

	"github.com/boxprint/boxprint/pkg/corpus"
	"github.com/boxprint/boxprint/pkg/features"
	"github.com/boxprint/boxprint/pkg/likelihood"
)

// VocabularySource chooses the vocabulary of the fold holding out device.
type VocabularySource interface {
	Name() string
	Vocabulary(ctx context.Context, c *corpus.Corpus, device string) (features.Vocabulary, error)
}

// FullAlphabet uses every symbol seen on the other devices.
type FullAlphabet struct{}

// Name implements VocabularySource.
func (FullAlphabet) Name() string { return "full" }

// Vocabulary implements VocabularySource.
func (FullAlphabet) Vocabulary(_ context.Context, c *corpus.Corpus, device string) (features.Vocabulary, error) {
	return features.NewVocabulary(c.AllSymbols(corpus.ExcludeDevice(device))), nil
}

// RatioSelection computes the fold's ratio table inline and keeps symbols
// over Threshold.
type RatioSelection struct {
	Engine    *likelihood.Engine
	UseOS     bool
	Threshold float64
}

// Name implements VocabularySource.
func (s *RatioSelection) Name() string {
	if s.UseOS {
		return "ratio-os"
	}
	return "ratio"
}

// Vocabulary implements VocabularySource.
func (s *RatioSelection) Vocabulary(_ context.Context, c *corpus.Corpus, device string) (features.Vocabulary, error) {
	syms, err := s.Engine.Vocabulary(c, likelihood.Options{ExcludeDevice: device, UseOS: s.UseOS}, s.Threshold)
	if err != nil {
		return nil, err
	}
	return features.NewVocabulary(syms), nil
}

// StoredRatios reads ratio tables written by likelihood.Engine.ComputeAll.
type StoredRatios struct {
	Dir       string
	UseOS     bool
	Threshold float64
}

// Name implements VocabularySource.
func (s *StoredRatios) Name() string {
	if s.UseOS {
		return "stored-os"
	}
	return "stored"
}

// Vocabulary implements VocabularySource.
func (s *StoredRatios) Vocabulary(_ context.Context, _ *corpus.Corpus, device string) (features.Vocabulary, error) {
	t, err := likelihood.LoadFor(s.Dir, device, s.UseOS)
	if err != nil {
		return nil, err
	}
	if t.Device != device {
		return nil, fmt.Errorf("ratio table in %s holds out %q, want %q", s.Dir, t.Device, device)
	}
	return features.NewVocabulary(likelihood.Select(t, s.Threshold)), nil
}
