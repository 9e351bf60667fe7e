// Package likelihood computes Laplace-smoothed symbol frequencies per taxonomy
// cell and the pairwise log10 likelihood ratios used to pick a discriminative
// vocabulary.
package likelihood

import (
	"cmp"
	"math"
	"slices"

	"github.com/boxprint/boxprint/pkg/corpus"
)

// Frequencies maps a symbol to its smoothed occurrence frequency.
type Frequencies map[string]float64

// Frequency estimates (1 + videos containing s) / (1 + videos) for every
// alphabet symbol over the devices accepted by keep. A nil keep accepts all
// devices. Symbols outside the alphabet are ignored.
func Frequency(cell corpus.DeviceSequences, alphabet []string, keep func(device string) bool) Frequencies {
	counts := make(map[string]int, len(alphabet))
	for _, s := range alphabet {
		counts[s] = 1
	}
	total := 1

	for device, seqs := range cell {
		if keep != nil && !keep(device) {
			continue
		}
		for _, seq := range seqs {
			total++
			for _, s := range seq {
				if _, ok := counts[s]; ok {
					counts[s]++
				}
			}
		}
	}

	freqs := make(Frequencies, len(alphabet))
	for s, n := range counts {
		freqs[s] = float64(n) / float64(total)
	}
	return freqs
}

// Entry is the log ratio of one symbol for a class pair.
type Entry struct {
	Symbol string  `json:"symbol"`
	Ratio  float64 `json:"ratio"`
}

// Ratios returns log10(fa(s)) - log10(fb(s)) for every alphabet symbol,
// sorted by ratio descending and then by symbol ascending.
func Ratios(fa, fb Frequencies, alphabet []string) []Entry {
	out := make([]Entry, 0, len(alphabet))
	for _, s := range alphabet {
		out = append(out, Entry{Symbol: s, Ratio: math.Log10(fa[s]) - math.Log10(fb[s])})
	}
	sortEntries(out)
	return out
}

func sortEntries(entries []Entry) {
	slices.SortFunc(entries, func(a, b Entry) int {
		if c := cmp.Compare(b.Ratio, a.Ratio); c != 0 {
			return c
		}
		return cmp.Compare(a.Symbol, b.Symbol)
	})
}
