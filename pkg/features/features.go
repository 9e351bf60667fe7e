// Package features maps symbol sequences onto binary presence vectors over a
// fold vocabulary.
package features

import (
	"slices"

	"github.com/boxprint/boxprint/pkg/symbol"
)

// Vocabulary is the sorted, duplicate-free symbol list of one fold. Its
// length fixes the feature dimension of that fold only.
type Vocabulary []string

// NewVocabulary sorts and de-duplicates symbols into a Vocabulary.
func NewVocabulary(symbols []string) Vocabulary {
	v := slices.Clone(symbols)
	slices.Sort(v)
	v = slices.Compact(v)
	if v == nil {
		return Vocabulary{}
	}
	return Vocabulary(v)
}

// Index returns the position of sym in the vocabulary.
func (v Vocabulary) Index(sym string) (int, bool) {
	return slices.BinarySearch(v, sym)
}

// Vectorize returns a len(vocab) vector whose i-th entry is 1 iff vocab[i]
// occurs in seq.
func Vectorize(seq symbol.Sequence, vocab Vocabulary) []uint8 {
	out := make([]uint8, len(vocab))
	if len(seq) == 0 || len(vocab) == 0 {
		return out
	}
	present := make(map[string]struct{}, len(seq))
	for _, s := range seq {
		present[s] = struct{}{}
	}
	for i, s := range vocab {
		if _, ok := present[s]; ok {
			out[i] = 1
		}
	}
	return out
}

// Matrix vectorises every sequence against the same vocabulary.
func Matrix(seqs []symbol.Sequence, vocab Vocabulary) [][]uint8 {
	out := make([][]uint8, len(seqs))
	for i, seq := range seqs {
		out[i] = Vectorize(seq, vocab)
	}
	return out
}
