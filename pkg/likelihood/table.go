package likelihood

import (
	"cmp"
	"fmt"
	"math"
	"path/filepath"
	"slices"

	"github.com/boxprint/boxprint/pkg/artifact"
)

// Default thresholds. Selection keeps symbols whose frequency differs at least
// twofold between two cells; saliency reporting asks for tenfold.
var (
	DefaultSelectionThreshold = math.Log10(2)
	DefaultSaliencyThreshold  = math.Log10(10)
)

// Cell identifies a taxonomy cell, optionally restricted to one OS.
type Cell struct {
	OS       string `json:"os,omitempty"`
	Platform string `json:"platform"`
	Class    string `json:"class"`
}

// String joins the non-empty parts with '-'.
func (c Cell) String() string {
	if c.OS == "" {
		return c.Platform + "-" + c.Class
	}
	return c.OS + "-" + c.Platform + "-" + c.Class
}

// Pair holds the sorted ratios of cell A against cell B, with A < B.
type Pair struct {
	A       int     `json:"a"`
	B       int     `json:"b"`
	Entries []Entry `json:"entries"`
}

// Table is the ratio table of one fold.
type Table struct {
	Device   string   `json:"device,omitempty"`
	UseOS    bool     `json:"use_os"`
	Alphabet []string `json:"alphabet"`
	Cells    []Cell   `json:"cells"`
	Pairs    []Pair   `json:"pairs"`
}

// Lookup returns the ratios of cell a against cell b. Asking for b against a
// negates the stored values and restores the descending order.
func (t *Table) Lookup(a, b int) ([]Entry, bool) {
	if a == b {
		return nil, false
	}
	lo, hi := min(a, b), max(a, b)
	for _, p := range t.Pairs {
		if p.A != lo || p.B != hi {
			continue
		}
		if a == lo {
			return p.Entries, true
		}
		out := make([]Entry, len(p.Entries))
		for i, e := range p.Entries {
			out[i] = Entry{Symbol: e.Symbol, Ratio: -e.Ratio}
		}
		sortEntries(out)
		return out, true
	}
	return nil, false
}

// Select returns the sorted symbols whose ratio magnitude reaches threshold for
// any pair. Lowering the threshold never drops a symbol.
func Select(t *Table, threshold float64) []string {
	set := make(map[string]struct{})
	for _, p := range t.Pairs {
		for _, e := range p.Entries {
			if math.Abs(e.Ratio) >= threshold {
				set[e.Symbol] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

// Salience lists the symbols of one pair that pass the saliency threshold,
// sorted by ratio ascending.
type Salience struct {
	A       Cell    `json:"a"`
	B       Cell    `json:"b"`
	Entries []Entry `json:"entries"`
}

// Name returns "<A>_vs_<B>".
func (s Salience) Name() string {
	return s.A.String() + "_vs_" + s.B.String()
}

// Salient returns the reporting lists of every pair. Pairs with no symbol over
// threshold are skipped and reported as VocabularyEmptyError warnings.
func Salient(t *Table, threshold float64) ([]Salience, []error) {
	var (
		out      []Salience
		warnings []error
	)
	for _, p := range t.Pairs {
		var entries []Entry
		for _, e := range p.Entries {
			if math.Abs(e.Ratio) >= threshold {
				entries = append(entries, e)
			}
		}
		if len(entries) == 0 {
			warnings = append(warnings, &VocabularyEmptyError{
				Device: t.Device,
				A:      t.Cells[p.A],
				B:      t.Cells[p.B],
			})
			continue
		}
		slices.SortFunc(entries, func(a, b Entry) int {
			if c := cmp.Compare(a.Ratio, b.Ratio); c != 0 {
				return c
			}
			return cmp.Compare(a.Symbol, b.Symbol)
		})
		out = append(out, Salience{A: t.Cells[p.A], B: t.Cells[p.B], Entries: entries})
	}
	return out, warnings
}

// FileName returns the per-device table file name. The table over every
// device is named "all".
func FileName(device string, useOS bool) string {
	if device == "" {
		device = "all"
	}
	if useOS {
		return fmt.Sprintf("%s-lr-os.json", device)
	}
	return fmt.Sprintf("%s-lr.json", device)
}

// Save writes t into dir and returns the file path.
func Save(dir string, t *Table) (string, error) {
	path := filepath.Join(dir, FileName(t.Device, t.UseOS))
	if err := artifact.Write(path, artifact.KindRatioTable, t); err != nil {
		return "", err
	}
	return path, nil
}

// LoadTable reads a table written by Save.
func LoadTable(path string) (*Table, error) {
	var t Table
	if err := artifact.Read(path, artifact.KindRatioTable, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadFor reads the stored table of a held-out device from dir.
func LoadFor(dir, device string, useOS bool) (*Table, error) {
	t, err := LoadTable(filepath.Join(dir, FileName(device, useOS)))
	if err != nil {
		return nil, err
	}
	if t.UseOS != useOS {
		return nil, fmt.Errorf("ratio table for %s: use_os=%t, want %t", device, t.UseOS, useOS)
	}
	return t, nil
}
