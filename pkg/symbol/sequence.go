package symbol

import (
	"iter"
	"slices"
)

// Sequence is the sorted set of distinct symbols observed for one video.
type Sequence []string

// NewSequence collects symbols into a sorted, de-duplicated Sequence.
func NewSequence(symbols iter.Seq[string]) Sequence {
	out := slices.Collect(symbols)
	slices.Sort(out)
	out = slices.Compact(out)
	if out == nil {
		return Sequence{}
	}
	return Sequence(out)
}

// Of builds a Sequence from literal symbols.
func Of(symbols ...string) Sequence {
	return NewSequence(slices.Values(symbols))
}

// FromTree extracts the symbol set of a metadata tree.
func FromTree(t *Tree, opts Options) Sequence {
	return NewSequence(Symbols(t, opts))
}

// Contains reports whether sym is part of the sequence.
func (s Sequence) Contains(sym string) bool {
	_, ok := slices.BinarySearch(s, sym)
	return ok
}

// Set returns the symbols as a membership map.
func (s Sequence) Set() map[string]struct{} {
	out := make(map[string]struct{}, len(s))
	for _, sym := range s {
		out[sym] = struct{}{}
	}
	return out
}
